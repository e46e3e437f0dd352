package value

import "testing"

func TestCompare_SameKind(t *testing.T) {
	cases := []struct {
		name string
		a, b Value
		want int
	}{
		{"i64 less", I64(1), I64(2), -1},
		{"i64 equal", I64(5), I64(5), 0},
		{"i64 greater", I64(9), I64(2), 1},
		{"string less", Str("a"), Str("b"), -1},
		{"bool false<true", Bool(false), Bool(true), -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Compare(tc.a, tc.b); got != tc.want {
				t.Errorf("Compare(%v,%v) = %d, want %d", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestCompare_DifferentKindOrdersByTag(t *testing.T) {
	i8 := Value{Kind: KindI8, I: 0}
	i64 := I64(0)
	if Compare(i8, i64) >= 0 {
		t.Errorf("expected lower-kind-tag value to sort first")
	}
}

func TestIsPostInternalization(t *testing.T) {
	if !I64(1).IsPostInternalization() {
		t.Error("plain i64 should be legal post-internalization")
	}
	if SymbolString("x").IsPostInternalization() {
		t.Error("SymbolString must not survive internalization")
	}
	if EntityString("x").IsPostInternalization() {
		t.Error("EntityString must not survive internalization")
	}
}

func TestEqual(t *testing.T) {
	if !Equal(I64(3), I64(3)) {
		t.Error("expected equal i64 values")
	}
	if Equal(I64(3), I64(4)) {
		t.Error("expected unequal i64 values")
	}
}
