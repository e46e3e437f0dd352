// Package ram implements the relational-algebra program model: strata,
// relations (storage metadata, input file config, output option, seed
// facts), updates, and the dataflow tree (spec §3/§4.4). Grounded on
// scallop/core/src/compiler/ram/pretty.rs for the stable debug shape of a
// stratum and scallop/core/src/compiler/ram/ram2rs.rs for the node set a
// dataflow tree is built from.
//
// Dataflow leaves/nodes here carry compiled Go closures (TupleFn/FilterFn)
// rather than re-interpreting an internal/expr.Expression against named
// variables on every tuple — this is ram2rs.rs's own idea translated
// directly into Go: that file's whole job is emitting compilable
// host-language closures from a RAM Project/Filter node instead of an
// interpreter loop, so compiling straight to a Go func value here is the
// same design, just skipping the intermediate generated-source step.
// internal/backcompiler is responsible for compiling a literal body's
// variable environment into one of these closures.
package ram

import "datalogengine/internal/value"

// Node is the closed sum type over every dataflow tree node (spec §3/§4.4).
type Node interface {
	isNode()
}

// TupleFn projects/transforms one tuple into zero-or-one output tuples.
type TupleFn func(value.Tuple) (value.Tuple, bool)

// FilterFn reports whether a tuple survives a Filter node.
type FilterFn func(value.Tuple) bool

// Unit is the single-tuple leaf used by aggregation bodies with no
// grouping relation and by ground-truth existence checks (spec §3).
type Unit struct{}

// UntaggedVec is a constant vector of tuples, tagged One() by whoever reads
// it; it never produces a "recent" delta since its contents are fixed for
// the lifetime of one stratum evaluation.
type UntaggedVec struct {
	Tuples []value.Tuple
}

// RelationRef names a predicate this node pulls from: either a relation
// being built in the current stratum (contributes both iter_stable and
// iter_recent views) or one already frozen by an earlier stratum
// (iter_stable only, iter_recent always empty).
type RelationRef struct {
	Name string
}

type Project struct {
	Source Node
	Fn     TupleFn
}

type Filter struct {
	Source Node
	Fn     FilterFn
}

// Find binary-searches a sorted source for tuples matching Key (spec §4.7).
type Find struct {
	Source Node
	Key    value.Tuple
}

// Sorted is a no-op marker in this engine: every Collection this package's
// sibling internal/dynamic produces is already kept sorted, so Sorted just
// documents the requirement at the tree level rather than re-sorting.
type Sorted struct {
	Source Node
}

// OverwriteOne keeps only the first (by sort order) tuple per distinct key
// prefix, used for functional-dependency-style relations.
type OverwriteOne struct {
	Source Node
}

type Union struct {
	Left, Right Node
}

// Join expects both sides' tuples shaped Seq(key, rest) and merge-joins on
// the key; spec §4.7.
type Join struct {
	Left, Right Node
}

type Intersect struct {
	Left, Right Node
}

type Product struct {
	Left, Right Node
}

// Antijoin keeps Left tuples whose key has no match in Right; Right must
// be a reference to an already-frozen relation (spec §4.7).
type Antijoin struct {
	Left, Right Node
}

// Difference re-weights Left by Right's negation composed with mult; Right
// must likewise be frozen (spec §4.7).
type Difference struct {
	Left, Right Node
}

// Exclusion marks where spec §4.5's disjunction bookkeeping surfaces at
// dataflow level; internal/dynamic evaluates it as a pass-through that
// returns its source unchanged.
type Exclusion struct {
	Source Node
}

// JoinIndexedVec joins Left (shaped Seq(key, rest)) against a constant,
// pre-indexed vector of (key, rest) tuples.
type JoinIndexedVec struct {
	Left  Node
	Right []value.Tuple
}

// GroupByKind discriminates how a Reduce node partitions its input
// (spec §4.7).
type GroupByKind int

const (
	GroupNone GroupByKind = iota
	GroupImplicit
	GroupJoin
)

// Reduce is the aggregation dataflow node (spec §4.4/§4.7): aggregator
// name, positional/named params, bang flag, the aggregated-body dataflow,
// and a group-by discriminator. Body/GroupBy always reference relations
// from an earlier stratum (Aggregation edges require stratification, spec
// §4.1), so a Reduce node only ever reads frozen, complete input — its
// result is therefore computed once per stratum run rather than once per
// round. ID distinguishes one compiled Reduce occurrence from another so
// the evaluator can memoize that single computation (internal/dynamic's
// EvalContext); zero-value ID is fine for a program with a single Reduce
// or for direct unit-test construction.
type Reduce struct {
	ID          int
	Aggregator  string
	PosParams   []value.Value
	NamedParams map[string]value.Value
	Bang        bool
	Body        Node
	GroupByKind GroupByKind
	GroupBy     Node // non-nil iff GroupByKind == GroupJoin
}

// ForeignPredicateGround materializes a predicate's free outputs with no
// input stream (spec §4.8).
type ForeignPredicateGround struct {
	Predicate string
	Args      []value.Value // bound constant arguments, if any
}

// ForeignPredicateConstraint attaches a predicate call to a stream with
// filter semantics: all arguments bound from Source's tuple via BoundArgs
// (spec §4.8).
type ForeignPredicateConstraint struct {
	Source    Node
	Predicate string
	BoundArgs func(value.Tuple) []value.Value
}

// ForeignPredicateJoin joins Source with the lazy sequence a predicate call
// produces: BoundArgs extracts the bound prefix from Source's tuple, and
// the predicate's free outputs are appended to form the output tuple
// (spec §4.8).
type ForeignPredicateJoin struct {
	Source    Node
	Predicate string
	BoundArgs func(value.Tuple) []value.Value
}

func (Unit) isNode()                       {}
func (UntaggedVec) isNode()                {}
func (RelationRef) isNode()                {}
func (Project) isNode()                    {}
func (Filter) isNode()                     {}
func (Find) isNode()                       {}
func (Sorted) isNode()                     {}
func (OverwriteOne) isNode()               {}
func (Union) isNode()                      {}
func (Join) isNode()                       {}
func (Intersect) isNode()                  {}
func (Product) isNode()                    {}
func (Antijoin) isNode()                   {}
func (Difference) isNode()                 {}
func (Exclusion) isNode()                  {}
func (JoinIndexedVec) isNode()             {}
func (Reduce) isNode()                     {}
func (ForeignPredicateGround) isNode()     {}
func (ForeignPredicateConstraint) isNode() {}
func (ForeignPredicateJoin) isNode()       {}
