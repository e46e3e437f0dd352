// Package idb implements post-stratum recovery (spec §4.9): mapping a
// frozen stratum's internal tuples back through the runtime environment's
// interning tables (the inverse of internal/edb's internalization step)
// and externalizing each tuple's provenance Tag via the semiring's
// Recover function. Grounded on spec §4.9's externalize_tuple/recover_fn
// pairing and scallop/core/src/runtime/provenance/*'s Recover-trait shape.
package idb

import (
	"datalogengine/internal/dynamic"
	"datalogengine/internal/provenance"
	"datalogengine/internal/runtimeenv"
	"datalogengine/internal/value"
)

// Fact is one recovered intentional-relation tuple, ready for a host (the
// MCP surface, or a test) to read: its externalized tuple and the
// semiring's externalized OutputTag (spec §4.9).
type Fact struct {
	Tuple     value.Tuple
	OutputTag any
}

// Recover externalizes every element of a frozen relation's complete
// collection. It is idempotent and non-draining: it reads the relation's
// stable/recent state without mutating it, so a host may call it more than
// once (e.g. once per MCP `query` call) after a stratum's fixpoint loop
// has completed (spec §4.9 "idempotent/optionally-draining recovery").
func Recover(rel *dynamic.Relation, env *runtimeenv.Environment, prov provenance.Semiring) []Fact {
	coll := rel.All(prov)
	out := make([]Fact, len(coll))
	for i, e := range coll {
		out[i] = Fact{
			Tuple:     externalizeTuple(e.Tuple, env),
			OutputTag: prov.Recover(e.Tag),
		}
	}
	return out
}

// RecoverAll externalizes every relation a stratum froze, keyed by
// predicate name — the shape internal/datalogservice's Service.Run hands
// to its caller once all strata have run (spec §4.9).
func RecoverAll(frozen map[string]*dynamic.Relation, env *runtimeenv.Environment, prov provenance.Semiring) map[string][]Fact {
	out := make(map[string][]Fact, len(frozen))
	for name, rel := range frozen {
		out[name] = Recover(rel, env, prov)
	}
	return out
}

// externalizeTuple reverses internal/edb's internalizeTuple: a SymbolID
// resolves back to its original string, a TensorHandle resolves back to
// its interned tensor value, and an EntityID passes through unchanged
// (entities have no canonical string form).
func externalizeTuple(t value.Tuple, env *runtimeenv.Environment) value.Tuple {
	if t.IsScalar() {
		return value.Scalar(externalizeValue(t.Scalar, env))
	}
	elems := make([]value.Tuple, len(t.Elems))
	for i, e := range t.Elems {
		elems[i] = externalizeTuple(e, env)
	}
	return value.Seq(elems...)
}

func externalizeValue(v value.Value, env *runtimeenv.Environment) value.Value {
	if v.Kind == value.KindSymbolID {
		if s, ok := env.Symbols.Lookup(v.U); ok {
			return value.String(s)
		}
	}
	if v.Kind == value.KindTensorHandle {
		if t, ok := env.Tensors.Lookup(v.U); ok {
			return value.Value{Kind: value.KindTensorValue, Tensor: t}
		}
	}
	return v
}
