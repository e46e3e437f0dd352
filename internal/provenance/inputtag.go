// Package provenance implements the engine's provenance-semiring
// capability (spec §3 "Provenance capabilities" / §6 "Input tag kinds"),
// plus the four concrete semirings this repo ships to exercise it
// (spec §1 marks individual provenance implementations out of scope beyond
// the minimal set needed by §8's testable properties).
//
// Grounded on spec §3's operator table directly, and on
// scallop/core/src/runtime/provenance/common/* for the shape of the
// capability set. Tag is kept as a plain `any` rather than threading a
// generic type parameter through every downstream package: the engine
// runs one stratum at a time against a single chosen semiring, so the
// extra type-state Go generics would buy (catching a Tag-type mismatch at
// compile time) is not worth forcing every caller in internal/dynamic,
// internal/edb, and internal/idb to carry a type parameter they never
// vary within one run. This mirrors mangle's ast.Constant / engine
// convention of a dynamically-typed payload threaded through the
// evaluator (other_examples/*mangle*) rather than Rust's associated-type
// generics.
package provenance

import "datalogengine/internal/value"

// InputTagKind discriminates the ten input-tag variants named in spec §6.
type InputTagKind int

const (
	TagNone InputTagKind = iota
	TagNewVariable
	TagExclusive
	TagBool
	TagNatural
	TagFloat
	TagExclusiveFloat
	TagFloatWithID
	TagExclusiveFloatWithID
	TagTensor
)

func (k InputTagKind) String() string {
	switch k {
	case TagNone:
		return "None"
	case TagNewVariable:
		return "NewVariable"
	case TagExclusive:
		return "Exclusive"
	case TagBool:
		return "Bool"
	case TagNatural:
		return "Natural"
	case TagFloat:
		return "Float"
	case TagExclusiveFloat:
		return "ExclusiveFloat"
	case TagFloatWithID:
		return "FloatWithID"
	case TagExclusiveFloatWithID:
		return "ExclusiveFloatWithID"
	case TagTensor:
		return "Tensor"
	}
	return "Unknown"
}

// InputTag is the tagged-union carried alongside a fact at the moment it is
// inserted into the extensional database, before tagging_optional_fn maps
// it to a concrete provenance Tag (spec §3/§6).
type InputTag struct {
	Kind   InputTagKind
	Bool   bool
	Nat    uint64
	Prob   float64
	ID     uint64
	Group  uint64
	Tensor *value.Tensor
}

func None() *InputTag                       { return &InputTag{Kind: TagNone} }
func NewVariable() *InputTag                { return &InputTag{Kind: TagNewVariable} }
func Exclusive(id uint64) *InputTag         { return &InputTag{Kind: TagExclusive, ID: id} }
func Bool(b bool) *InputTag                 { return &InputTag{Kind: TagBool, Bool: b} }
func Natural(n uint64) *InputTag            { return &InputTag{Kind: TagNatural, Nat: n} }
func Float(p float64) *InputTag             { return &InputTag{Kind: TagFloat, Prob: p} }
func ExclusiveFloat(p float64, id uint64) *InputTag {
	return &InputTag{Kind: TagExclusiveFloat, Prob: p, ID: id}
}
func FloatWithID(id uint64, p float64) *InputTag {
	return &InputTag{Kind: TagFloatWithID, ID: id, Prob: p}
}
func ExclusiveFloatWithID(id uint64, p float64, group uint64) *InputTag {
	return &InputTag{Kind: TagExclusiveFloatWithID, ID: id, Prob: p, Group: group}
}
func TensorTag(t *value.Tensor) *InputTag { return &InputTag{Kind: TagTensor, Tensor: t} }

// IsFalse reports the spec §4.5 special case: facts tagged Bool(false) are
// dropped before internalization, never reaching any semiring.
func (t *InputTag) IsFalse() bool {
	return t != nil && t.Kind == TagBool && !t.Bool
}
