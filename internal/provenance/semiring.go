package provenance

// Tag is the per-tuple algebraic annotation a semiring produces and
// combines. Concrete semirings populate it with whatever concrete Go type
// fits (struct{}, bool, float64, a DNF formula, ...); see unit.go, boolean.go,
// minmaxprob.go, addmultprob.go.
type Tag = any

// Semiring is the provenance capability set, matching spec §3 verbatim:
// tagging_optional_fn, zero, one, add (⊕), mult (⊗), negate, discard,
// saturated, recover_fn.
type Semiring interface {
	// Name identifies the semiring, e.g. for config.EngineConfig.Provenance.
	Name() string

	// TaggingOptional maps an input tag (nil for a plain EDB fact with no
	// annotation) to this semiring's internal Tag.
	TaggingOptional(tag *InputTag) Tag

	Zero() Tag
	One() Tag

	// Add implements ⊕ (disjunction / union of justifications).
	Add(a, b Tag) Tag
	// Mult implements ⊗ (conjunction / join of justifications).
	Mult(a, b Tag) Tag

	// Negate implements stratified negation; ok=false means this semiring
	// does not support negation (spec §3).
	Negate(a Tag) (Tag, bool)

	// Discard reports whether a should be dropped early as a zero-weighted
	// tuple (spec §4.6's early_discard).
	Discard(a Tag) bool

	// Saturated reports whether the change from old to new is not
	// monotone-significant enough to require another semi-naive round
	// (spec §4.6 step 3).
	Saturated(old, new Tag) bool

	// Recover externalizes an internal Tag to the OutputTag a caller sees
	// (spec §4.9).
	Recover(t Tag) any

	// AcceptsInputTag reports whether this semiring's TaggingOptional
	// meaningfully interprets input tags of this kind (spec §6: "each
	// provenance defines which subset it accepts").
	AcceptsInputTag(kind InputTagKind) bool
}
