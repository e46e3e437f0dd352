package dynamic

import (
	"datalogengine/internal/foreignpred"
	"datalogengine/internal/provenance"
	"datalogengine/internal/ram"
	"datalogengine/internal/runtimeenv"
	"datalogengine/internal/value"
)

// StratumState holds, for one stratum evaluation, the relations being
// built in this stratum (mutable, three-collection) and the relations
// completed by earlier strata (frozen: Stable-only, Recent permanently
// empty, per spec §4.1's "Aggregation/Negative edges force separate
// strata" invariant).
type StratumState struct {
	Relations map[string]*Relation
	Frozen    map[string]*Relation
}

// EvalContext bundles everything a dataflow tree needs to evaluate one
// view against one stratum's current state (spec §4.6/§4.7). It is
// constructed once per RunStratum call and threaded through every round,
// which makes it the natural place to memoize a Reduce node's result
// (reduceCache) and to track whether that result has already been
// surfaced as a Recent delta (reduceRecentDone): Body/GroupBy always read
// already-frozen input, so a Reduce's value never changes within one
// stratum run and must be seeded into its target relation exactly once,
// not re-derived and re-added every round.
type EvalContext struct {
	State    *StratumState
	Env      *runtimeenv.Environment
	Prov     provenance.Semiring
	Foreign  *foreignpred.Registry

	reduceCache      map[int]Collection
	reduceRecentDone map[int]bool
}

// reduceStable returns a Reduce node's result, computing and memoizing it
// on first use regardless of which view (EvalStable or EvalRecent) asks
// first — safe to call directly and repeatedly, unlike evalReduce itself.
func (c *EvalContext) reduceStable(n ram.Reduce) Collection {
	if cached, ok := c.reduceCache[n.ID]; ok {
		return cached
	}
	result := c.evalReduce(n)
	if c.reduceCache == nil {
		c.reduceCache = map[int]Collection{}
	}
	c.reduceCache[n.ID] = result
	return result
}

// reduceRecent returns a Reduce node's result the first time it is asked
// for (across every round and every leg of a Product's recent/stable
// fan-out) and nil every time after, so the result contributes to its
// target relation exactly once per stratum run.
func (c *EvalContext) reduceRecent(n ram.Reduce) Collection {
	if c.reduceRecentDone[n.ID] {
		return nil
	}
	if c.reduceRecentDone == nil {
		c.reduceRecentDone = map[int]bool{}
	}
	c.reduceRecentDone[n.ID] = true
	return c.reduceStable(n)
}

func (c *EvalContext) lookup(name string) (r *Relation, frozen bool, ok bool) {
	if r, ok := c.State.Relations[name]; ok {
		return r, false, true
	}
	if r, ok := c.State.Frozen[name]; ok {
		return r, true, true
	}
	return nil, false, false
}

// EvalStable evaluates a dataflow tree's fully-committed view: every tuple
// derivable from stable (already-frozen-this-round) input alone.
func (c *EvalContext) EvalStable(n ram.Node) Collection {
	switch node := n.(type) {
	case ram.Unit:
		return Collection{{Tuple: value.Seq(), Tag: c.Prov.One()}}
	case ram.UntaggedVec:
		return FromValues(node.Tuples, c.Prov.One(), c.Prov)
	case ram.RelationRef:
		r, _, ok := c.lookup(node.Name)
		if !ok {
			return nil
		}
		return r.StableView()
	case ram.Project:
		return mapProject(c.EvalStable(node.Source), node.Fn, c.Prov)
	case ram.Filter:
		return filterCollection(c.EvalStable(node.Source), node.Fn)
	case ram.Find:
		return findKey(c.EvalStable(node.Source), node.Key)
	case ram.Sorted:
		return c.EvalStable(node.Source)
	case ram.OverwriteOne:
		return overwriteOne(c.EvalStable(node.Source))
	case ram.Union:
		return mergeCollections(c.EvalStable(node.Left), c.EvalStable(node.Right), c.Prov)
	case ram.Join:
		return joinCollections(c.EvalStable(node.Left), c.EvalStable(node.Right), c.Prov)
	case ram.Intersect:
		return intersectCollections(c.EvalStable(node.Left), c.EvalStable(node.Right), c.Prov)
	case ram.Product:
		return productCollections(c.EvalStable(node.Left), c.EvalStable(node.Right), c.Prov)
	case ram.Antijoin:
		return antijoinCollections(c.EvalStable(node.Left), c.EvalStable(node.Right))
	case ram.Difference:
		return differenceCollections(c.EvalStable(node.Left), c.EvalStable(node.Right), c.Prov)
	case ram.Exclusion:
		return exclusionCollection(c.EvalStable(node.Source), c.Prov)
	case ram.JoinIndexedVec:
		return joinIndexedVec(c.EvalStable(node.Left), node.Right, c.Prov)
	case ram.Reduce:
		return c.reduceStable(node)
	case ram.ForeignPredicateGround:
		return c.evalForeignGround(node)
	case ram.ForeignPredicateConstraint:
		return c.evalForeignConstraint(c.EvalStable(node.Source), node)
	case ram.ForeignPredicateJoin:
		return c.evalForeignJoin(c.EvalStable(node.Source), node)
	default:
		panic(unknownNode(n))
	}
}

// EvalRecent evaluates a dataflow tree's delta view: the tuples that use
// at least one newly-added (this round's recent) input, expanded per
// operator using the recent/stable cross-product rules of spec §4.6/§4.7.
func (c *EvalContext) EvalRecent(n ram.Node) Collection {
	switch node := n.(type) {
	case ram.Unit:
		return c.EvalStable(n)
	case ram.UntaggedVec:
		return c.EvalStable(n)
	case ram.RelationRef:
		r, frozen, ok := c.lookup(node.Name)
		if !ok || frozen {
			return nil
		}
		return r.RecentView()
	case ram.Project:
		return mapProject(c.EvalRecent(node.Source), node.Fn, c.Prov)
	case ram.Filter:
		return filterCollection(c.EvalRecent(node.Source), node.Fn)
	case ram.Find:
		return findKey(c.EvalRecent(node.Source), node.Key)
	case ram.Sorted:
		return c.EvalRecent(node.Source)
	case ram.OverwriteOne:
		return overwriteOne(c.EvalRecent(node.Source))
	case ram.Union:
		return mergeCollections(c.EvalRecent(node.Left), c.EvalRecent(node.Right), c.Prov)
	case ram.Join:
		recentStable := joinCollections(c.EvalRecent(node.Left), c.EvalStable(node.Right), c.Prov)
		stableRecent := joinCollections(c.EvalStable(node.Left), c.EvalRecent(node.Right), c.Prov)
		recentRecent := joinCollections(c.EvalRecent(node.Left), c.EvalRecent(node.Right), c.Prov)
		return mergeCollections(mergeCollections(recentStable, stableRecent, c.Prov), recentRecent, c.Prov)
	case ram.Intersect:
		recentStable := intersectCollections(c.EvalRecent(node.Left), c.EvalStable(node.Right), c.Prov)
		stableRecent := intersectCollections(c.EvalStable(node.Left), c.EvalRecent(node.Right), c.Prov)
		recentRecent := intersectCollections(c.EvalRecent(node.Left), c.EvalRecent(node.Right), c.Prov)
		return mergeCollections(mergeCollections(recentStable, stableRecent, c.Prov), recentRecent, c.Prov)
	case ram.Product:
		recentStable := productCollections(c.EvalRecent(node.Left), c.EvalStable(node.Right), c.Prov)
		stableRecent := productCollections(c.EvalStable(node.Left), c.EvalRecent(node.Right), c.Prov)
		recentRecent := productCollections(c.EvalRecent(node.Left), c.EvalRecent(node.Right), c.Prov)
		return mergeCollections(mergeCollections(recentStable, stableRecent, c.Prov), recentRecent, c.Prov)
	case ram.Antijoin:
		// Right must be frozen (spec §4.7): only Left contributes a delta.
		return antijoinCollections(c.EvalRecent(node.Left), c.EvalStable(node.Right))
	case ram.Difference:
		return differenceCollections(c.EvalRecent(node.Left), c.EvalStable(node.Right), c.Prov)
	case ram.Exclusion:
		return exclusionCollection(c.EvalRecent(node.Source), c.Prov)
	case ram.JoinIndexedVec:
		return joinIndexedVec(c.EvalRecent(node.Left), node.Right, c.Prov)
	case ram.Reduce:
		return c.reduceRecent(node)
	case ram.ForeignPredicateGround:
		return c.evalForeignGround(node)
	case ram.ForeignPredicateConstraint:
		return c.evalForeignConstraint(c.EvalRecent(node.Source), node)
	case ram.ForeignPredicateJoin:
		return c.evalForeignJoin(c.EvalRecent(node.Source), node)
	default:
		panic(unknownNode(n))
	}
}

func unknownNode(n ram.Node) string {
	return "dynamic: unrecognized ram.Node in dataflow tree"
}
