// Package runtimeenv hosts the foreign function registry, symbol and
// tensor interning tables, the dynamic entity
// store, the seeded RNG, and the stopping criteria — everything a running
// program needs that isn't itself Datalog (spec §4.3/§4.6/§9). Grounded on
// the teacher's config-driven construction style (internal/config.Config
// feeding NewServer) and its map-keyed tool registry
// (internal/mcp/server.go's Tool/registerAllTools shape), generalized from
// "one registry of MCP tools" to "several registries of engine
// extensions".
package runtimeenv

import (
	"math/rand"

	"datalogengine/internal/expr"
	"datalogengine/internal/value"
)

// Environment bundles every pluggable runtime capability a compiled
// program's dataflow needs at evaluation time.
type Environment struct {
	Functions  *FunctionRegistry
	Entities   *DynamicEntityStore
	Symbols    *SymbolTable
	Tensors    *TensorTable
	Stopping   StoppingCriteria
	RNG        *rand.Rand
}

// NewDefault constructs an Environment with the standard function registry
// installed and an RNG seeded from seed (spec §4.6's disjunctive sampling
// needs a reproducible source).
func NewDefault(seed int64, stopping StoppingCriteria) *Environment {
	return &Environment{
		Functions: NewDefaultFunctionRegistry(),
		Entities:  NewDynamicEntityStore(),
		Symbols:   NewSymbolTable(),
		Tensors:   NewTensorTable(),
		Stopping:  stopping,
		RNG:       rand.New(rand.NewSource(seed)),
	}
}

// ExprEnv builds a fresh expr.Env wired to this environment's registries,
// with no variable bindings — callers populate Vars themselves for a given
// current tuple, or leave it empty for constant-only folding.
func (e *Environment) ExprEnv() *expr.Env {
	return &expr.Env{
		Vars:     make(map[string]value.Tuple),
		Funcs:    e.Functions,
		Entities: e.Entities,
	}
}
