package value

import "testing"

func TestTupleAt(t *testing.T) {
	tup := Seq(Scalar(I64(1)), Seq(Scalar(Str("a")), Scalar(Str("b"))))

	got, ok := tup.At(1, 0)
	if !ok || got.Scalar.S != "a" {
		t.Fatalf("expected nested element 'a', got %+v ok=%v", got, ok)
	}

	if _, ok := tup.At(5); ok {
		t.Error("expected out-of-range index to fail")
	}
}

func TestTupleFlatten(t *testing.T) {
	tup := Seq(Scalar(I64(1)), Seq(Scalar(I64(2)), Scalar(I64(3))))
	flat := tup.Flatten()
	if len(flat) != 3 {
		t.Fatalf("expected 3 leaves, got %d", len(flat))
	}
	for i, want := range []int64{1, 2, 3} {
		if flat[i].I != want {
			t.Errorf("leaf %d = %d, want %d", i, flat[i].I, want)
		}
	}
}

func TestCompareTuples(t *testing.T) {
	a := Seq(Scalar(I64(0)), Scalar(I64(1)))
	b := Seq(Scalar(I64(0)), Scalar(I64(2)))
	if CompareTuples(a, b) >= 0 {
		t.Error("expected a < b lexicographically")
	}
	if !TupleEqual(a, a) {
		t.Error("expected tuple equal to itself")
	}
}

func TestTupleTypeMatches(t *testing.T) {
	tt := Nested(Leaf(KindI64), Leaf(KindStr))
	good := Seq(Scalar(I64(1)), Scalar(Str("x")))
	bad := Seq(Scalar(Str("x")), Scalar(I64(1)))

	if !tt.Matches(good) {
		t.Error("expected matching tuple shape/kinds to match")
	}
	if tt.Matches(bad) {
		t.Error("expected mismatched kinds to fail")
	}
}
