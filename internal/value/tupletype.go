package value

// TupleType mirrors a Tuple's shape and is used for type-checking inserts
// into the extensional database (spec §3).
type TupleType struct {
	// Leaf is non-nil for a scalar type; Elems is non-empty for a nested
	// tuple type. Exactly one is set, mirroring Tuple itself.
	Leaf  *Kind
	Elems []TupleType
}

func Leaf(k Kind) TupleType { return TupleType{Leaf: &k} }

func Nested(elems ...TupleType) TupleType { return TupleType{Elems: elems} }

func (tt TupleType) IsScalar() bool { return tt.Leaf != nil }

// Matches reports whether t conforms to this type's shape and, at the
// leaves, its declared kind.
func (tt TupleType) Matches(t Tuple) bool {
	if tt.IsScalar() {
		return t.IsScalar() && t.Scalar.Kind == *tt.Leaf
	}
	if t.IsScalar() || len(t.Elems) != len(tt.Elems) {
		return false
	}
	for i, et := range tt.Elems {
		if !et.Matches(t.Elems[i]) {
			return false
		}
	}
	return true
}

func (tt TupleType) String() string {
	if tt.IsScalar() {
		return tt.Leaf.String()
	}
	s := "("
	for i, e := range tt.Elems {
		if i > 0 {
			s += ", "
		}
		s += e.String()
	}
	return s + ")"
}
