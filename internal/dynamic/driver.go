package dynamic

import (
	"datalogengine/internal/foreignpred"
	"datalogengine/internal/provenance"
	"datalogengine/internal/ram"
	"datalogengine/internal/runtimeenv"
)

// RunStratum drives one stratum to its semi-naive fixpoint (spec §4.6):
// each round first promotes every relation's pending to_add/recent
// (Relation.Changed), then re-evaluates every update's recent delta from
// the now-current state and queues it as the next round's to_add. The
// loop stops once a round changes nothing, or the stopping criteria fire
// (spec §4.6 "Cancellation"/"Timeouts").
//
// Grounded on relation.rs's changed() contract and on the outer-loop shape
// implied by spec §4.6 ("the driver maintains three tiered collections
// ... calls every rule's update once per iteration"); scallop's own outer
// scheduler lives in a file this retrieval pack did not include, so the
// round-ordering here (changed-sweep, then evaluate-and-queue) is this
// repo's own construction, chosen because it is the only ordering under
// which a relation's freshly-seeded facts become visible as `recent`
// before any update reads them.
func RunStratum(stratum *ram.Stratum, state *StratumState, env *runtimeenv.Environment, prov provenance.Semiring, foreign *foreignpred.Registry) {
	ctx := &EvalContext{State: state, Env: env, Prov: prov, Foreign: foreign}

	round := 0
	totalFacts := 0
	for {
		anyChanged := false
		for _, r := range state.Relations {
			if r.Changed(prov) {
				anyChanged = true
			}
		}
		if round > 0 && !anyChanged {
			break
		}
		for _, r := range state.Relations {
			totalFacts += len(r.Recent)
		}
		if env.Stopping.ShouldStop(round, totalFacts) {
			break
		}

		contributions := make(map[string][]Collection, len(stratum.Updates))
		for _, u := range stratum.Updates {
			delta := func() (out Collection) {
				defer func() {
					if rec := recover(); rec != nil {
						// A RuntimeBug surfaces a front-compiler invariant
						// violation (spec §7): this round's contribution
						// from the offending update is dropped rather than
						// aborting the whole run, matching spec §4.6's
						// "Aggregation is not performed on a partial
						// fixpoint" posture of degrading gracefully.
						out = nil
					}
				}()
				return ctx.EvalRecent(u.Expr)
			}()
			if len(delta) > 0 {
				contributions[u.Target] = append(contributions[u.Target], delta)
			}
		}
		for target, batches := range contributions {
			r, ok := state.Relations[target]
			if !ok {
				continue
			}
			for _, b := range batches {
				r.Seed(b)
			}
		}
		round++
	}
}

// Freeze merges every relation's remaining recent/to_add into stable and
// returns the now-immutable view a later stratum treats as frozen input
// (spec §4.6 "frozen as a static collection handed to downstream strata").
func Freeze(state *StratumState, prov provenance.Semiring) map[string]*Relation {
	out := make(map[string]*Relation, len(state.Relations))
	for name, r := range state.Relations {
		frozen := NewRelation()
		if all := r.All(prov); len(all) > 0 {
			frozen.Stable = []Collection{all}
		}
		out[name] = frozen
	}
	return out
}
