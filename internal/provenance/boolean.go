package provenance

// BoolTag is the boolean semiring's Tag: true means "derivable", and that
// is the whole of the information carried. Used by invariant #1/#2's
// idempotent-add, self-saturating case (spec §8).
type BoolTag bool

// Boolean is the classic two-element Boolean semiring: add is logical OR,
// mult is logical AND, negate is logical NOT (always supported — this is
// exactly the semiring ordinary stratified Datalog runs under).
type Boolean struct{}

func NewBoolean() Boolean { return Boolean{} }

func (Boolean) Name() string { return "bool" }

func (Boolean) TaggingOptional(tag *InputTag) Tag {
	if tag.IsFalse() {
		return nil
	}
	if tag != nil && tag.Kind == TagBool {
		return BoolTag(tag.Bool)
	}
	return BoolTag(true)
}

func (Boolean) Zero() Tag { return BoolTag(false) }
func (Boolean) One() Tag  { return BoolTag(true) }

func (Boolean) Add(a, b Tag) Tag { return BoolTag(asBool(a) || asBool(b)) }

func (Boolean) Mult(a, b Tag) Tag { return BoolTag(asBool(a) && asBool(b)) }

func (Boolean) Negate(a Tag) (Tag, bool) { return BoolTag(!asBool(a)), true }

func (Boolean) Discard(a Tag) bool { return !asBool(a) }

// Saturated is always true: OR is idempotent, so a repeated derivation of
// an already-true tuple carries no new information (spec §8 invariant #2).
func (Boolean) Saturated(old, new Tag) bool { return true }

func (Boolean) Recover(t Tag) any { return asBool(t) }

func (Boolean) AcceptsInputTag(kind InputTagKind) bool {
	return kind == TagNone || kind == TagNewVariable || kind == TagBool
}

func asBool(t Tag) bool {
	if t == nil {
		return false
	}
	b, ok := t.(BoolTag)
	return ok && bool(b)
}
