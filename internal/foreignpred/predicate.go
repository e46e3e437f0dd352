// Package foreignpred implements the foreign predicate interface (spec
// §4.8) and ships two demonstration predicates. The many real foreign
// predicate implementations (soft comparisons etc.) are out of scope per
// spec §1 — "only their interface is specified" — but SPEC_FULL.md §4.8
// calls for at least one working example of each integration shape to
// exercise Ground/Constraint/Join, grounded directly on
// scallop/core/src/common/foreign_predicates/soft_gt.rs's bounded-input /
// free-output / tagged-output-tuple contract.
package foreignpred

import (
	"datalogengine/internal/provenance"
	"datalogengine/internal/value"
)

// TaggedArgs is one row a predicate's Evaluate call returns: the free
// (unbound) output arguments plus the input tag describing how certain
// this row is (spec §4.8).
type TaggedArgs struct {
	Tag  *provenance.InputTag
	Args []value.Value
}

// Predicate is the foreign predicate capability (spec §4.8): a name, a
// generic type-parameter list, an arity, per-position argument types, a
// bounded-prefix length (the first NumBounded positions are inputs, the
// rest are outputs), and the evaluation function itself.
type Predicate interface {
	Name() string
	TypeParams() []string
	Arity() int
	ArgType(pos int) value.Kind
	NumBounded() int
	Evaluate(bounded []value.Value) []TaggedArgs
}

// Registry resolves foreign predicates by name, matching spec §6's
// registry contract (Get/Register/iteration) for the predicate kind.
type Registry struct {
	preds map[string]Predicate
}

func NewRegistry() *Registry {
	return &Registry{preds: make(map[string]Predicate)}
}

func (r *Registry) Register(p Predicate) {
	r.preds[p.Name()] = p
}

func (r *Registry) Get(name string) (Predicate, bool) {
	p, ok := r.preds[name]
	return p, ok
}

func (r *Registry) All() []Predicate {
	out := make([]Predicate, 0, len(r.preds))
	for _, p := range r.preds {
		out = append(out, p)
	}
	return out
}

// NewDefaultRegistry installs the repo's two demonstration predicates
// (SPEC_FULL.md §4.8).
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(StringContains{})
	r.Register(SoftEq{Tolerance: 1e-6})
	return r
}
