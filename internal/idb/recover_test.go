package idb

import (
	"testing"

	"datalogengine/internal/dynamic"
	"datalogengine/internal/provenance"
	"datalogengine/internal/runtimeenv"
	"datalogengine/internal/value"
)

// TestRecoveryRoundTrip checks spec §8 invariant #5: for the unit
// provenance, externalize(internalize(t)) = t for every tuple free of
// tensors.
func TestRecoveryRoundTrip(t *testing.T) {
	env := runtimeenv.NewDefault(1, runtimeenv.StoppingCriteria{})
	prov := provenance.NewUnit()

	original := value.Seq(value.Scalar(value.String("alice")), value.Scalar(value.I64(42)))
	internalized := value.Seq(
		value.Scalar(value.SymbolID(env.Symbols.Intern("alice"))),
		value.Scalar(value.I64(42)),
	)

	rel := dynamic.NewRelation()
	rel.Seed(dynamic.FromValues([]value.Tuple{internalized}, prov.One(), prov))
	driveOnce(rel, prov)

	facts := Recover(rel, env, prov)
	if len(facts) != 1 {
		t.Fatalf("expected 1 recovered fact, got %d", len(facts))
	}
	if !value.TupleEqual(facts[0].Tuple, original) {
		t.Errorf("round trip failed: got %v, want %v", facts[0].Tuple, original)
	}
	if b, ok := facts[0].OutputTag.(bool); !ok || !b {
		t.Errorf("unit Recover should externalize to true, got %v", facts[0].OutputTag)
	}
}

func driveOnce(rel *dynamic.Relation, prov provenance.Semiring) {
	for rel.Changed(prov) {
	}
}
