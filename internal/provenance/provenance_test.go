package provenance

import "testing"

func TestUnitSaturatesImmediately(t *testing.T) {
	u := NewUnit()
	if !u.Saturated(u.One(), u.Add(u.One(), u.One())) {
		t.Fatal("unit semiring must saturate on first add")
	}
	if v, _ := (Unit{}).Negate(u.One()); v != (UnitTag{}) {
		t.Fatalf("unit negate should return UnitTag{}, got %v", v)
	}
}

func TestBooleanAlgebra(t *testing.T) {
	b := NewBoolean()
	cases := []struct {
		name   string
		got    Tag
		want   bool
	}{
		{"or-true-false", b.Add(BoolTag(true), BoolTag(false)), true},
		{"or-false-false", b.Add(BoolTag(false), BoolTag(false)), false},
		{"and-true-true", b.Mult(BoolTag(true), BoolTag(true)), true},
		{"and-true-false", b.Mult(BoolTag(true), BoolTag(false)), false},
	}
	for _, c := range cases {
		if got := bool(c.got.(BoolTag)); got != c.want {
			t.Errorf("%s: got %v want %v", c.name, got, c.want)
		}
	}
	if neg, ok := b.Negate(BoolTag(true)); !ok || bool(neg.(BoolTag)) {
		t.Fatalf("negate(true) should be false, got %v ok=%v", neg, ok)
	}
}

func TestMinMaxProb(t *testing.T) {
	m := NewMinMaxProb()
	if got := m.Add(MinMaxProbTag(0.3), MinMaxProbTag(0.7)); got != MinMaxProbTag(0.7) {
		t.Errorf("add should take max, got %v", got)
	}
	if got := m.Mult(MinMaxProbTag(0.3), MinMaxProbTag(0.7)); got != MinMaxProbTag(0.3) {
		t.Errorf("mult should take min, got %v", got)
	}
	if _, ok := m.Negate(MinMaxProbTag(0.5)); ok {
		t.Error("minmaxprob must not support negate")
	}
}

// TestAddMultProbDigitScenario checks, at the semiring-algebra level, the
// arithmetic behind spec §8's probabilistic-disjunction example (digit
// facts with probabilities 0.91/0.01/0.01/0.01): three 0.01 tags added
// together give 0.03, and the epsilon-based Saturated treats tiny float
// drift as saturated but a real 0.1 change as not.
func TestAddMultProbDigitScenario(t *testing.T) {
	p := NewAddMultProb()
	sum := p.Add(p.Add(AddMultProbTag(0.01), AddMultProbTag(0.01)), AddMultProbTag(0.01))
	if got := float64(sum.(AddMultProbTag)); got < 0.029 || got > 0.031 {
		t.Errorf("expected ~0.03, got %v", got)
	}
	if !p.Saturated(AddMultProbTag(0.5), AddMultProbTag(0.5+1e-10)) {
		t.Error("tiny float drift within epsilon should saturate")
	}
	if p.Saturated(AddMultProbTag(0.5), AddMultProbTag(0.6)) {
		t.Error("a real 0.1 change must not saturate")
	}
}
