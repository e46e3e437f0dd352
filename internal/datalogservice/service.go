// Package datalogservice is the host-facing orchestrator: it owns one
// compiled program's runtime environment, extensional database, and
// compiled RAM strata, and drives a full run from internalization through
// per-stratum semi-naive evaluation to recovered output facts (spec §4.5
// "host assert/run/query" surface). Grounded on the teacher's
// SessionManager (internal/browser/session_manager.go: a mutex-guarded
// struct owning long-lived engine state behind a small method surface that
// internal/mcp's tools call into).
package datalogservice

import (
	"context"
	"fmt"
	"sync"

	"datalogengine/internal/backast"
	"datalogengine/internal/backcompiler"
	"datalogengine/internal/config"
	"datalogengine/internal/dynamic"
	"datalogengine/internal/edb"
	"datalogengine/internal/foreignpred"
	"datalogengine/internal/idb"
	"datalogengine/internal/provenance"
	"datalogengine/internal/ram"
	"datalogengine/internal/runtimeenv"
	"datalogengine/internal/value"

	"github.com/google/uuid"
)

// Service holds everything one loaded program needs to run: the shared
// runtime environment (symbol/entity/tensor interning, foreign registries,
// stopping criteria), the extensional database the host asserts facts
// into, and the compiled RAM program once Load succeeds.
type Service struct {
	mu sync.Mutex

	// SessionID identifies this Service instance across a host's tool
	// calls (spec's "session/run correlation ids at the host layer" —
	// the engine core itself uses plain incrementing ids internally, per
	// spec §4.5/§3, so correlation ids never leak into compiled facts).
	SessionID string

	env     *runtimeenv.Environment
	db      *edb.Database
	foreign *foreignpred.Registry
	prov    provenance.Semiring

	program *ram.Program
	goals   map[string]bool
	lastRun string
	results map[string][]idb.Fact
}

// New builds a Service from an engine configuration, resolving the
// configured provenance semiring and wiring the stopping criteria the
// per-stratum driver enforces (spec §4.6 "Cancellation"/"Timeouts").
func New(cfg config.EngineConfig) (*Service, error) {
	prov, err := semiringByName(cfg.Provenance)
	if err != nil {
		return nil, err
	}
	stopping := runtimeenv.StoppingCriteria{MaxRounds: cfg.IterationLimit, MaxFacts: cfg.FactBufferLimit}
	return &Service{
		SessionID: uuid.NewString(),
		env:       runtimeenv.NewDefault(cfg.RandomSeed, stopping),
		db:        edb.NewDatabase(),
		foreign:   foreignpred.NewDefaultRegistry(),
		prov:      prov,
	}, nil
}

func semiringByName(name string) (provenance.Semiring, error) {
	switch name {
	case "", "unit":
		return provenance.NewUnit(), nil
	case "bool", "boolean":
		return provenance.NewBoolean(), nil
	case "minmaxprob":
		return provenance.NewMinMaxProb(), nil
	case "addmultprob":
		return provenance.NewAddMultProb(), nil
	default:
		return nil, fmt.Errorf("datalogservice: unknown provenance semiring %q", name)
	}
}

// Foreign exposes the foreign function/predicate registry so a host can
// register additional built-ins before Load compiles a program.
func (s *Service) Foreign() *foreignpred.Registry { return s.foreign }

// Load declares every relation named in prog against the extensional
// database and compiles prog down to a RAM program restricted to the
// dependency closure of goals (empty goals compiles every stratified
// relation). A prior Load's compiled program and results are discarded;
// the extensional database's stored facts are not (spec §4.5 facts
// outlive a single compile/run cycle).
func (s *Service) Load(prog *backast.Program, goals []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, rel := range prog.Relations {
		s.db.Declare(name, relationType(rel.ArgTypes), true)
	}
	compiled, err := backcompiler.Compile(prog, s.env, s.foreign, goals)
	if err != nil {
		return fmt.Errorf("datalogservice: compile: %w", err)
	}
	s.program = compiled
	s.goals = make(map[string]bool, len(goals))
	for _, g := range goals {
		s.goals[g] = true
	}
	s.results = nil
	return nil
}

func relationType(argTypes []value.TupleType) value.TupleType {
	if len(argTypes) == 1 {
		return argTypes[0]
	}
	return value.Nested(argTypes...)
}

// AssertFact inserts one host-supplied input fact (spec §4.5 "dynamically
// added input facts"), e.g. an MCP assert-facts call arriving after Load.
func (s *Service) AssertFact(relation string, args []value.Value, tag *provenance.InputTag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.InsertDynamicFact(relation, argsToTuple(args), tag)
}

// AssertExternalFacts loads a relation's externally-sourced facts (spec
// §4.5 "external facts") through a caller-supplied edb.FactSource.
func (s *Service) AssertExternalFacts(relation string, src edb.FactSource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.InsertExternalFacts(relation, src)
}

func argsToTuple(args []value.Value) value.Tuple {
	if len(args) == 1 {
		return value.Scalar(args[0])
	}
	elems := make([]value.Tuple, len(args))
	for i, v := range args {
		elems[i] = value.Scalar(v)
	}
	return value.Seq(elems...)
}

// Run drives every stratum of the compiled program to fixpoint in order,
// freezing each stratum's output for the next (spec §4.1's "strata run in
// dependency order, each frozen as static input to the next"), then
// recovers every intentional relation's tuples back to host-visible form
// (spec §4.9). Run may be called again after further AssertFact calls
// without reloading the program; each call recomputes from the current
// extensional database contents and mints a fresh run id a host can quote
// back in logs or correlate against Query/Explain calls.
func (s *Service) Run(ctx context.Context) (runID string, results map[string][]idb.Fact, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.program == nil {
		return "", nil, fmt.Errorf("datalogservice: Run called before a successful Load")
	}
	runID = uuid.NewString()

	internalized := s.db.Internalize(s.env, s.prov)
	frozen := map[string]*dynamic.Relation{}

	for _, stratum := range s.program.Strata {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}
		state := &dynamic.StratumState{
			Relations: make(map[string]*dynamic.Relation, len(stratum.Relations)),
			Frozen:    frozen,
		}
		for name, rel := range stratum.Relations {
			r := dynamic.NewRelation()
			var seed dynamic.Collection
			for _, f := range rel.Facts {
				if tag := s.prov.TaggingOptional(f.InputTag); tag != nil {
					seed = append(seed, dynamic.Element{Tuple: f.Tuple, Tag: tag})
				}
			}
			for _, f := range internalized[name] {
				seed = append(seed, dynamic.Element{Tuple: f.Tuple, Tag: f.Tag})
			}
			if len(seed) > 0 {
				r.Seed(dynamic.NewCollection(seed, s.prov))
			}
			state.Relations[name] = r
		}
		dynamic.RunStratum(stratum, state, s.env, s.prov, s.foreign)
		for name, r := range dynamic.Freeze(state, s.prov) {
			frozen[name] = r
		}
	}

	recovered := idb.RecoverAll(frozen, s.env, s.prov)
	s.results = recovered
	s.lastRun = runID
	return runID, s.filterToGoals(recovered), nil
}

// filterToGoals restricts a full recovery map to goal-attributed relations
// when Load was given an explicit goal list; an empty goal list means
// "every relation the program computed", matching backcompiler.Compile's
// own empty-goals-means-everything convention.
func (s *Service) filterToGoals(results map[string][]idb.Fact) map[string][]idb.Fact {
	if len(s.goals) == 0 {
		return results
	}
	out := make(map[string][]idb.Fact, len(s.goals))
	for name := range s.goals {
		out[name] = results[name]
	}
	return out
}

// Query returns the relation's facts from the most recent Run, or false if
// Run has not been called (since Load) or the relation has no recorded
// output (spec §4.9 "idempotent, optionally-draining recovery" — Query may
// be called any number of times between Run calls).
func (s *Service) Query(relation string) ([]idb.Fact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.results == nil {
		return nil, false
	}
	facts, ok := s.results[relation]
	return facts, ok
}

// Explain reports the provenance-recovered OutputTag for every fact a
// relation holds after the most recent Run (spec §4.9's explain surface:
// the semiring's Recover output carries whatever derivation detail that
// semiring tracks, from a bare presence flag up to a full proof DAG).
func (s *Service) Explain(relation string) ([]idb.Fact, bool) {
	return s.Query(relation)
}
