package dynamic

import (
	"sort"

	"datalogengine/internal/provenance"
	"datalogengine/internal/ram"
	"datalogengine/internal/value"
)

// Reduce's Body dataflow always yields tuples shaped Seq(groupKey, value):
// groupKey is value.Seq() (empty) for GroupNone, the implicit non-aggregated
// variables for GroupImplicit, and the explicit group-by variables for
// GroupJoin — a convention this package and internal/backcompiler's RAM
// lowering agree on (spec §4.4's Reduce node carries no further shape
// detail, so the lowering and the evaluator are free to pick one as long
// as they agree).
type group struct {
	key  value.Tuple
	rows []Element
}

func groupByKey(body Collection) []group {
	var out []group
	for _, e := range body {
		key := tupleKey(e.Tuple)
		val := tupleRest(e.Tuple)
		if n := len(out); n > 0 && value.TupleEqual(out[n-1].key, key) {
			out[n-1].rows = append(out[n-1].rows, Element{Tuple: val, Tag: e.Tag})
		} else {
			out = append(out, group{key: key, rows: []Element{{Tuple: val, Tag: e.Tag}}})
		}
	}
	return out
}

func lookupGroup(groups []group, key value.Tuple) []Element {
	idx := sort.Search(len(groups), func(i int) bool {
		return value.CompareTuples(groups[i].key, key) >= 0
	})
	if idx < len(groups) && value.TupleEqual(groups[idx].key, key) {
		return groups[idx].rows
	}
	return nil
}

// evalReduce implements spec §4.6/§4.7's Reduce operator: collect each
// group's rows, invoke the named aggregator with the runtime provenance,
// and yield the result elements prefixed with the group key. Body and
// GroupBy always reference already-frozen (earlier-stratum) relations
// (Aggregation edges force stratification, spec §4.1), so stable and
// recent views coincide — the result is computed once and is stable for
// the rest of this stratum's rounds.
func (c *EvalContext) evalReduce(n ram.Reduce) Collection {
	body := c.EvalStable(n.Body)
	groups := groupByKey(body)

	var results []Element
	switch n.GroupByKind {
	case ram.GroupJoin:
		groupKeys := c.EvalStable(n.GroupBy)
		for _, gk := range groupKeys {
			key := gk.Tuple
			rows := lookupGroup(groups, key)
			agg := c.aggregate(n, rows)
			for _, a := range agg {
				results = append(results, Element{Tuple: value.Seq(key, a.Tuple), Tag: a.Tag})
			}
		}
	default: // GroupNone, GroupImplicit: spec §8 "never produce elements for empty groups"
		for _, g := range groups {
			agg := c.aggregate(n, g.rows)
			for _, a := range agg {
				results = append(results, Element{Tuple: value.Seq(g.key, a.Tuple), Tag: a.Tag})
			}
		}
	}
	return NewCollection(results, c.Prov)
}

func (c *EvalContext) aggregate(n ram.Reduce, rows []Element) []Element {
	if len(rows) == 0 {
		if e, ok := emptyResult(n.Aggregator, c.Prov); ok {
			return []Element{e}
		}
		return nil
	}
	switch n.Aggregator {
	case "count":
		return c.countAggregate(rows)
	case "sum":
		return numericFold(rows, c.Prov, func(a, b float64) float64 { return a + b })
	case "prod":
		return numericFold(rows, c.Prov, func(a, b float64) float64 { return a * b })
	case "exists":
		return existsAggregate(rows, c.Prov)
	case "min":
		return minMaxAggregate(rows, c.Prov, true)
	case "max":
		return minMaxAggregate(rows, c.Prov, false)
	case "argmin":
		return argMinMaxAggregate(rows, c.Prov, true)
	case "argmax":
		return argMinMaxAggregate(rows, c.Prov, false)
	case "top":
		k := 1
		if len(n.PosParams) > 0 && n.PosParams[0].Kind.IsSignedInt() {
			k = int(n.PosParams[0].I)
		}
		return topKAggregate(rows, k, c.Prov)
	default:
		return nil
	}
}

// emptyResult gives the (spec §8's "None/Implicit never produce for empty
// groups" notwithstanding) result a GroupJoin-variant aggregation must
// still emit for a group-by key with zero matching rows.
func emptyResult(aggregator string, prov provenance.Semiring) (Element, bool) {
	switch aggregator {
	case "count":
		return Element{Tuple: value.Scalar(value.I64(0)), Tag: prov.One()}, true
	case "prod":
		return Element{Tuple: value.Scalar(value.I64(1)), Tag: prov.One()}, true
	case "exists":
		return Element{Tuple: value.Scalar(value.Bool(false)), Tag: prov.One()}, true
	default:
		return Element{}, false
	}
}

func numeric(v value.Value) float64 {
	switch {
	case v.Kind.IsFloat():
		return v.F
	case v.Kind.IsSignedInt():
		return float64(v.I)
	case v.Kind.IsUnsignedInt():
		return float64(v.U)
	}
	return 0
}

// numericFold reduces a group's numeric value column with a commutative
// fold (sum/prod); the result's tag is the conjunction (Mult-fold) of
// every contributing row's tag, since the aggregate as a whole only holds
// when every contributing fact holds.
func numericFold(rows []Element, prov provenance.Semiring, fold func(a, b float64) float64) []Element {
	acc := numeric(rows[0].Tuple.Scalar)
	tag := rows[0].Tag
	kind := rows[0].Tuple.Scalar.Kind
	for _, r := range rows[1:] {
		acc = fold(acc, numeric(r.Tuple.Scalar))
		tag = prov.Mult(tag, r.Tag)
	}
	var out value.Value
	if kind.IsFloat() {
		out = value.F64(acc)
	} else {
		out = value.I64(int64(acc))
	}
	return []Element{{Tuple: value.Scalar(out), Tag: tag}}
}

func existsAggregate(rows []Element, prov provenance.Semiring) []Element {
	tag := rows[0].Tag
	for _, r := range rows[1:] {
		tag = prov.Add(tag, r.Tag)
	}
	return []Element{{Tuple: value.Scalar(value.Bool(true)), Tag: tag}}
}

// minMaxAggregate finds the extremal value (by value.Compare over the
// row's scalar) and returns it as a single element whose tag is the Add
// fold of the tags of every row holding that exact extremal value.
func minMaxAggregate(rows []Element, prov provenance.Semiring, wantMin bool) []Element {
	best := rows[0].Tuple.Scalar
	for _, r := range rows[1:] {
		c := value.Compare(r.Tuple.Scalar, best)
		if (wantMin && c < 0) || (!wantMin && c > 0) {
			best = r.Tuple.Scalar
		}
	}
	var tag provenance.Tag
	first := true
	for _, r := range rows {
		if value.Equal(r.Tuple.Scalar, best) {
			if first {
				tag = r.Tag
				first = false
			} else {
				tag = prov.Add(tag, r.Tag)
			}
		}
	}
	return []Element{{Tuple: value.Scalar(best), Tag: tag}}
}

// argMinMaxAggregate treats each row's value as Seq(sortKey, argTuple) and
// returns the argTuple(s) attaining the extremal sortKey (ties: return
// all, per the Open Question decision in DESIGN.md), each tagged with its
// own row's tag.
func argMinMaxAggregate(rows []Element, prov provenance.Semiring, wantMin bool) []Element {
	bestKey := tupleKey(rows[0].Tuple)
	for _, r := range rows[1:] {
		k := tupleKey(r.Tuple)
		c := value.CompareTuples(k, bestKey)
		if (wantMin && c < 0) || (!wantMin && c > 0) {
			bestKey = k
		}
	}
	var out []Element
	for _, r := range rows {
		if value.CompareTuples(tupleKey(r.Tuple), bestKey) == 0 {
			out = append(out, Element{Tuple: tupleRest(r.Tuple), Tag: r.Tag})
		}
	}
	return out
}

// topKAggregate returns the k highest-ranked distinct row values (by
// value.CompareTuples, descending), folding tags of duplicate values
// through Add.
func topKAggregate(rows []Element, k int, prov provenance.Semiring) []Element {
	sorted := make(Collection, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool {
		return value.CompareTuples(sorted[i].Tuple, sorted[j].Tuple) > 0
	})
	var out []Element
	for _, r := range sorted {
		if n := len(out); n > 0 && value.TupleEqual(out[n-1].Tuple, r.Tuple) {
			out[n-1].Tag = prov.Add(out[n-1].Tag, r.Tag)
			continue
		}
		if len(out) >= k {
			break
		}
		out = append(out, r)
	}
	return out
}

// countAggregate dispatches to the exact Poisson-binomial convolution for
// the addmultprob semiring (spec §8's probabilistic-disjunction scenario:
// the probability of exactly n of several independent facts holding) and
// falls back to plain presence counting otherwise — the other shipped
// semirings (unit, boolean, minmaxprob) have no well-defined "probability
// of exactly k" notion (minmaxprob's Negate is intentionally unsupported,
// spec §3), so a generic weight-indexed dispatch would silently produce
// one spurious output per possible count under those semirings.
func (c *EvalContext) countAggregate(rows []Element) []Element {
	if c.Prov.Name() != "addmultprob" {
		return []Element{{Tuple: value.Scalar(value.I64(int64(len(rows)))), Tag: c.Prov.One()}}
	}
	dp := map[int]provenance.Tag{0: c.Prov.One()}
	for _, r := range rows {
		neg, _ := c.Prov.Negate(r.Tag)
		next := make(map[int]provenance.Tag, len(dp)+1)
		for k, tag := range dp {
			addInto(next, k, c.Prov.Mult(tag, neg), c.Prov)
			addInto(next, k+1, c.Prov.Mult(tag, r.Tag), c.Prov)
		}
		dp = next
	}
	out := make([]Element, 0, len(dp))
	for k, tag := range dp {
		if c.Prov.Discard(tag) {
			continue
		}
		out = append(out, Element{Tuple: value.Scalar(value.I64(int64(k))), Tag: tag})
	}
	return out
}

func addInto(m map[int]provenance.Tag, k int, tag provenance.Tag, prov provenance.Semiring) {
	if existing, ok := m[k]; ok {
		m[k] = prov.Add(existing, tag)
	} else {
		m[k] = tag
	}
}
