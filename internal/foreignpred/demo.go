package foreignpred

import (
	"strings"

	"datalogengine/internal/provenance"
	"datalogengine/internal/value"
)

// StringContains is string_contains/2: both positions are bound (the
// haystack and the needle); it is a pure ground-truth predicate with no
// free outputs, used as a Constraint-position example (spec §4.8).
type StringContains struct{}

func (StringContains) Name() string            { return "string_contains" }
func (StringContains) TypeParams() []string    { return nil }
func (StringContains) Arity() int              { return 2 }
func (StringContains) NumBounded() int         { return 2 }
func (StringContains) ArgType(pos int) value.Kind {
	return value.KindString
}

func (StringContains) Evaluate(bounded []value.Value) []TaggedArgs {
	if len(bounded) != 2 {
		return nil
	}
	haystack, needle := bounded[0].String(), bounded[1].String()
	if strings.Contains(haystack, needle) {
		return []TaggedArgs{{Tag: provenance.Bool(true), Args: nil}}
	}
	return nil
}

// SoftEq is soft_eq/3: the first two positions (two numbers to compare)
// are bound, and it produces a single free Bool-ish output tagged with a
// Float input tag that decays with the magnitude of the difference,
// adapted directly from soft_gt.rs's shape (bounded-input / free-output /
// tagged-output-tuple) from "soft greater-than" to "soft equal".
type SoftEq struct {
	Tolerance float64
}

func (SoftEq) Name() string         { return "soft_eq" }
func (SoftEq) TypeParams() []string { return nil }
func (SoftEq) Arity() int           { return 3 }
func (SoftEq) NumBounded() int      { return 2 }

func (s SoftEq) ArgType(pos int) value.Kind {
	if pos < 2 {
		return value.KindF64
	}
	return value.KindBool
}

func (s SoftEq) Evaluate(bounded []value.Value) []TaggedArgs {
	if len(bounded) != 2 {
		return nil
	}
	a, b := numeric(bounded[0]), numeric(bounded[1])
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	tol := s.Tolerance
	if tol <= 0 {
		tol = 1e-6
	}
	if diff > tol {
		return nil
	}
	// Confidence decays linearly from 1.0 at diff==0 to 0.0 at diff==tol,
	// giving the caller a soft probability rather than a hard boolean.
	confidence := 1.0 - diff/tol
	return []TaggedArgs{{Tag: provenance.Float(confidence), Args: []value.Value{value.Bool(true)}}}
}

func numeric(v value.Value) float64 {
	switch {
	case v.Kind.IsFloat():
		return v.F
	case v.Kind.IsSignedInt():
		return float64(v.I)
	case v.Kind.IsUnsignedInt():
		return float64(v.U)
	}
	return 0
}
