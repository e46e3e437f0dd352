package expr

import (
	"testing"

	"datalogengine/internal/value"
)

func eval(t *testing.T, e Expression, vars map[string]value.Tuple) value.Value {
	t.Helper()
	env := NewEnv()
	for k, v := range vars {
		env.Vars[k] = v
	}
	got, ok := Eval(e, env)
	if !ok {
		t.Fatalf("expected ok=true evaluating %#v", e)
	}
	return got.Scalar
}

func TestEval_SaturatingAdd(t *testing.T) {
	e := Binary{Op: Add, Left: Constant{value.Value{Kind: value.KindI8, I: 120}}, Right: Constant{value.Value{Kind: value.KindI8, I: 100}}}
	got := eval(t, e, nil)
	if got.I != 127 {
		t.Errorf("expected saturated at 127, got %d", got.I)
	}
}

func TestEval_FloatDivByZeroYieldsNone(t *testing.T) {
	e := Binary{Op: Div, Left: Constant{value.F64(1)}, Right: Constant{value.F64(0)}}
	env := NewEnv()
	_, ok := Eval(e, env)
	if ok {
		t.Error("expected float division by zero to yield ok=false")
	}
}

func TestEval_StringConcat(t *testing.T) {
	e := Binary{Op: Add, Left: Constant{value.Str("foo")}, Right: Constant{value.Str("bar")}}
	got := eval(t, e, nil)
	if got.S != "foobar" {
		t.Errorf("expected foobar, got %q", got.S)
	}
}

func TestEval_CrossTypeComparisonPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on cross-type comparison")
		}
		if _, ok := r.(RuntimeBug); !ok {
			t.Fatalf("expected RuntimeBug panic, got %T", r)
		}
	}()
	e := Binary{Op: Eq, Left: Constant{value.I64(1)}, Right: Constant{value.Str("1")}}
	_, _ = Eval(e, NewEnv())
}

func TestEval_IfThenElse(t *testing.T) {
	e := IfThenElse{
		Cond: Constant{value.Bool(true)},
		Then: Constant{value.I64(1)},
		Else: Constant{value.I64(2)},
	}
	got := eval(t, e, nil)
	if got.I != 1 {
		t.Errorf("expected then-branch 1, got %d", got.I)
	}
}

func TestEval_Variable(t *testing.T) {
	e := Variable{Name: "x"}
	got := eval(t, e, map[string]value.Tuple{"x": value.Scalar(value.I64(42))})
	if got.I != 42 {
		t.Errorf("expected 42, got %d", got.I)
	}
}

func TestEval_Cast(t *testing.T) {
	e := Cast{Target: value.KindF64, Operand: Constant{value.I64(3)}}
	got := eval(t, e, nil)
	if got.F != 3.0 {
		t.Errorf("expected 3.0, got %v", got.F)
	}

	e2 := Cast{Target: value.KindI32, Operand: Constant{value.Str("41")}}
	got2 := eval(t, e2, nil)
	if got2.I != 41 {
		t.Errorf("expected 41, got %d", got2.I)
	}
}

func TestEval_CharToIntParsesDecimalDigit(t *testing.T) {
	e := Cast{Target: value.KindI64, Operand: Constant{value.Char('5')}}
	got := eval(t, e, nil)
	if got.I != 5 {
		t.Errorf("expected 5, got %d", got.I)
	}
}

func TestEval_CharToIntNonDigitFails(t *testing.T) {
	e := Cast{Target: value.KindI64, Operand: Constant{value.Char('x')}}
	_, ok := Eval(e, NewEnv())
	if ok {
		t.Error("expected non-digit char to fail cast")
	}
}

func TestEval_IntToCharRoundTrips(t *testing.T) {
	e := Cast{Target: value.KindChar, Operand: Constant{value.I64(int64('a'))}}
	got := eval(t, e, nil)
	if got.Ch != 'a' {
		t.Errorf("expected 'a', got %q", got.Ch)
	}
}

func TestEval_IntToCharRejectsSurrogateAndOutOfRange(t *testing.T) {
	for _, n := range []int64{0xD800, -1, 0x110000} {
		e := Cast{Target: value.KindChar, Operand: Constant{value.I64(n)}}
		if _, ok := Eval(e, NewEnv()); ok {
			t.Errorf("expected %#x to fail int->char cast", n)
		}
	}
}

func TestEval_UnsignedSubSaturatesAtZero(t *testing.T) {
	e := Binary{Op: Sub, Left: Constant{value.Value{Kind: value.KindU8, U: 1}}, Right: Constant{value.Value{Kind: value.KindU8, U: 5}}}
	got := eval(t, e, nil)
	if got.U != 0 {
		t.Errorf("expected saturate at 0, got %d", got.U)
	}
}
