package mcp

import (
	"fmt"

	"datalogengine/internal/expr"
	"datalogengine/internal/idb"
	"datalogengine/internal/provenance"
	"datalogengine/internal/value"
)

// jsonValue is the wire shape of one value.Value leaf: {"kind":"i64","v":3}.
// kind names mirror value.Kind.String() except where that string collides
// with a JSON-awkward spelling (symbol_string/entity_string stay as-is).
type jsonValue struct {
	Kind string      `json:"kind"`
	V    interface{} `json:"v"`
}

func decodeValue(jv jsonValue) (value.Value, error) {
	switch jv.Kind {
	case "i8", "i16", "i32", "i64", "isize":
		n, err := asInt64(jv.V)
		return value.I64(n), err
	case "u8", "u16", "u32", "u64", "usize":
		n, err := asInt64(jv.V)
		return value.U64(uint64(n)), err
	case "f32", "f64":
		f, err := asFloat64(jv.V)
		return value.F64(f), err
	case "bool":
		b, ok := jv.V.(bool)
		if !ok {
			return value.Value{}, fmt.Errorf("mcp: bool value expected, got %T", jv.V)
		}
		return value.Bool(b), nil
	case "str", "string":
		s, ok := jv.V.(string)
		if !ok {
			return value.Value{}, fmt.Errorf("mcp: string value expected, got %T", jv.V)
		}
		return value.String(s), nil
	case "symbol", "symbol_string":
		s, ok := jv.V.(string)
		if !ok {
			return value.Value{}, fmt.Errorf("mcp: symbol value expected, got %T", jv.V)
		}
		return value.SymbolString(s), nil
	case "entity", "entity_string":
		s, ok := jv.V.(string)
		if !ok {
			return value.Value{}, fmt.Errorf("mcp: entity value expected, got %T", jv.V)
		}
		return value.EntityString(s), nil
	default:
		return value.Value{}, fmt.Errorf("mcp: unsupported value kind %q", jv.Kind)
	}
}

func decodeKind(name string) (value.Kind, error) {
	switch name {
	case "i8":
		return value.KindI8, nil
	case "i16":
		return value.KindI16, nil
	case "i32":
		return value.KindI32, nil
	case "i64":
		return value.KindI64, nil
	case "isize":
		return value.KindISize, nil
	case "u8":
		return value.KindU8, nil
	case "u16":
		return value.KindU16, nil
	case "u32":
		return value.KindU32, nil
	case "u64":
		return value.KindU64, nil
	case "usize":
		return value.KindUSize, nil
	case "f32":
		return value.KindF32, nil
	case "f64":
		return value.KindF64, nil
	case "bool":
		return value.KindBool, nil
	case "str":
		return value.KindStr, nil
	case "string":
		return value.KindString, nil
	case "symbol", "symbol_string":
		return value.KindSymbolString, nil
	case "entity", "entity_string":
		return value.KindEntityString, nil
	default:
		return 0, fmt.Errorf("mcp: unsupported relation argument kind %q", name)
	}
}

func asInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case float64:
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	default:
		return 0, fmt.Errorf("mcp: integer value expected, got %T", v)
	}
}

func asFloat64(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("mcp: numeric value expected, got %T", v)
	}
}

// jsonTerm is one rule/fact argument position: exactly one of Var or Const
// is set. A bare JSON string under "var" names a rule-local variable; a
// jsonValue under "const" is a literal.
type jsonTerm struct {
	Var   string     `json:"var,omitempty"`
	Const *jsonValue `json:"const,omitempty"`
}

func decodeTerm(t jsonTerm) (expr.Expression, error) {
	if t.Var != "" {
		return expr.Variable{Name: t.Var}, nil
	}
	if t.Const == nil {
		return nil, fmt.Errorf("mcp: term has neither var nor const")
	}
	v, err := decodeValue(*t.Const)
	if err != nil {
		return nil, err
	}
	return expr.Constant{Value: v}, nil
}

// jsonInputTag mirrors nine of provenance.InputTag's ten variants (all but
// Tensor) for fact assertion over the wire (spec §6). A nil *jsonInputTag means
// provenance.None().
type jsonInputTag struct {
	Kind  string  `json:"kind"`
	Bool  bool    `json:"bool,omitempty"`
	Nat   uint64  `json:"nat,omitempty"`
	Prob  float64 `json:"prob,omitempty"`
	ID    uint64  `json:"id,omitempty"`
	Group uint64  `json:"group,omitempty"`
}

func decodeInputTag(t *jsonInputTag) (*provenance.InputTag, error) {
	if t == nil {
		return provenance.None(), nil
	}
	switch t.Kind {
	case "", "none":
		return provenance.None(), nil
	case "new_variable":
		return provenance.NewVariable(), nil
	case "exclusive":
		return provenance.Exclusive(t.ID), nil
	case "bool":
		return provenance.Bool(t.Bool), nil
	case "natural":
		return provenance.Natural(t.Nat), nil
	case "float":
		return provenance.Float(t.Prob), nil
	case "exclusive_float":
		return provenance.ExclusiveFloat(t.Prob, t.ID), nil
	case "float_with_id":
		return provenance.FloatWithID(t.ID, t.Prob), nil
	case "exclusive_float_with_id":
		return provenance.ExclusiveFloatWithID(t.ID, t.Prob, t.Group), nil
	default:
		return nil, fmt.Errorf("mcp: unsupported input tag kind %q", t.Kind)
	}
}

// encodeValue is jsonValue's inverse, used to render recovered facts back
// out of the engine (post-recovery values are never SymbolID — internal/idb
// already turned those into strings). Numeric, bool and string kinds mirror
// a decodeValue branch; any other kind, EntityID included, is rendered as
// its kind name and String() form, which decodeValue does not accept back.
func encodeValue(v value.Value) jsonValue {
	switch {
	case v.Kind.IsSignedInt():
		return jsonValue{Kind: v.Kind.String(), V: v.I}
	case v.Kind.IsUnsignedInt():
		return jsonValue{Kind: v.Kind.String(), V: v.U}
	case v.Kind.IsFloat():
		return jsonValue{Kind: v.Kind.String(), V: v.F}
	case v.Kind == value.KindBool:
		return jsonValue{Kind: "bool", V: v.B}
	default:
		return jsonValue{Kind: v.Kind.String(), V: v.String()}
	}
}

func encodeTuple(t value.Tuple) interface{} {
	if t.IsScalar() {
		return encodeValue(t.Scalar)
	}
	out := make([]interface{}, len(t.Elems))
	for i, e := range t.Elems {
		out[i] = encodeTuple(e)
	}
	return out
}

// jsonFactOut is one recovered fact rendered for a tool response: its
// externalized tuple and the semiring's externalized OutputTag.
type jsonFactOut struct {
	Args interface{} `json:"args"`
	Tag  interface{} `json:"tag"`
}

func encodeFacts(facts []idb.Fact) []jsonFactOut {
	out := make([]jsonFactOut, len(facts))
	for i, f := range facts {
		out[i] = jsonFactOut{Args: encodeTuple(f.Tuple), Tag: f.OutputTag}
	}
	return out
}

func encodeFactMap(results map[string][]idb.Fact) map[string][]jsonFactOut {
	out := make(map[string][]jsonFactOut, len(results))
	for name, facts := range results {
		out[name] = encodeFacts(facts)
	}
	return out
}
