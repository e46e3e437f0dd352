// Package dynamic implements the semi-naive fixpoint evaluator (spec
// §4.6/§4.7): the three-collection (stable/recent/to_add) relation
// discipline, the `changed` routine, and every dataflow operator a
// compiled ram.Node names, run against a pluggable provenance.Semiring.
//
// Grounded on scallop/core/src/runtime/statics/relation.rs (the `changed`
// routine, reproduced almost statement-for-statement below) and
// scallop/core/src/runtime/statics/dataflow/join.rs (the recent/stable
// split for binary operators). Where the Rust original expresses a
// dataflow operator as a zero-cost lazy iterator type per operator, this
// port instead evaluates each view (stable, recent) into a materialized,
// sorted Collection on demand — a deliberate simplification: Go has no equivalent to Rust's associated-iterator-type
// composition without a code generator, and the spec's correctness
// properties (§8) depend only on what tuples each view contains, never on
// laziness or allocation behavior.
package dynamic

import (
	"sort"

	"datalogengine/internal/provenance"
	"datalogengine/internal/value"
)

// Element is one tuple plus the provenance tag it currently carries.
type Element struct {
	Tuple value.Tuple
	Tag   provenance.Tag
}

// Collection is a batch of elements, always maintained sorted by tuple
// with no duplicate tuples (spec §4.6 "Ordering guarantees").
type Collection []Element

func sortElements(c Collection) {
	sort.Slice(c, func(i, j int) bool {
		return value.CompareTuples(c[i].Tuple, c[j].Tuple) < 0
	})
}

// NewCollection sorts raw elements and merges any duplicate tuples by
// folding their tags through the semiring's Add, then drops anything the
// semiring reports as discardable (spec §4.6's early_discard idea, applied
// generally to every freshly built batch rather than only stable inserts).
func NewCollection(elems []Element, prov provenance.Semiring) Collection {
	c := make(Collection, len(elems))
	copy(c, elems)
	sortElements(c)
	out := make(Collection, 0, len(c))
	for _, e := range c {
		if n := len(out); n > 0 && value.TupleEqual(out[n-1].Tuple, e.Tuple) {
			out[n-1].Tag = prov.Add(out[n-1].Tag, e.Tag)
			continue
		}
		out = append(out, e)
	}
	filtered := out[:0]
	for _, e := range out {
		if !prov.Discard(e.Tag) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// FromValues tags every value with the same tag (typically One()), used
// for UntaggedVec leaves (spec §3).
func FromValues(tuples []value.Tuple, tag provenance.Tag, prov provenance.Semiring) Collection {
	elems := make([]Element, len(tuples))
	for i, t := range tuples {
		elems[i] = Element{Tuple: t, Tag: tag}
	}
	return NewCollection(elems, prov)
}

// mergeCollections sorted-merges two already-deduplicated, sorted
// collections, folding tags for any tuple present in both through the
// semiring's Add (spec §4.6's merge semantics, scallop's
// StaticCollection::merge).
func mergeCollections(a, b Collection, prov provenance.Semiring) Collection {
	out := make(Collection, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		c := value.CompareTuples(a[i].Tuple, b[j].Tuple)
		switch {
		case c < 0:
			out = append(out, a[i])
			i++
		case c > 0:
			out = append(out, b[j])
			j++
		default:
			out = append(out, Element{Tuple: a[i].Tuple, Tag: prov.Add(a[i].Tag, b[j].Tag)})
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	filtered := out[:0]
	for _, e := range out {
		if !prov.Discard(e.Tag) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// mergeMany folds mergeCollections across every batch, used to view a
// relation's entire stable stack (or several to_add batches) as one
// sorted Collection.
func mergeMany(batches []Collection, prov provenance.Semiring) Collection {
	var out Collection
	for _, b := range batches {
		if out == nil {
			out = b
			continue
		}
		out = mergeCollections(out, b, prov)
	}
	return out
}

// findKey returns the elements whose tuple's leading component (tupleKey)
// equals key (binary search on the sorted collection), grounding ram.Find
// (spec §4.7).
func findKey(c Collection, key value.Tuple) Collection {
	lo := sort.Search(len(c), func(i int) bool {
		return value.CompareTuples(tupleKey(c[i].Tuple), key) >= 0
	})
	hi := sort.Search(len(c), func(i int) bool {
		return value.CompareTuples(tupleKey(c[i].Tuple), key) > 0
	})
	return append(Collection{}, c[lo:hi]...)
}

// overwriteOne keeps only the first (by sort order) element per distinct
// key prefix (the head of a nested tuple's outer Elems), per ram.OverwriteOne.
func overwriteOne(c Collection) Collection {
	out := make(Collection, 0, len(c))
	var lastKey value.Tuple
	haveLast := false
	for _, e := range c {
		key := e.Tuple
		if !e.Tuple.IsScalar() && len(e.Tuple.Elems) > 0 {
			key = e.Tuple.Elems[0]
		}
		if haveLast && value.CompareTuples(key, lastKey) == 0 {
			continue
		}
		out = append(out, e)
		lastKey = key
		haveLast = true
	}
	return out
}

func mapProject(c Collection, fn func(value.Tuple) (value.Tuple, bool), prov provenance.Semiring) Collection {
	elems := make([]Element, 0, len(c))
	for _, e := range c {
		if out, ok := fn(e.Tuple); ok {
			elems = append(elems, Element{Tuple: out, Tag: e.Tag})
		}
	}
	return NewCollection(elems, prov)
}

func filterCollection(c Collection, fn func(value.Tuple) bool) Collection {
	out := make(Collection, 0, len(c))
	for _, e := range c {
		if fn(e.Tuple) {
			out = append(out, e)
		}
	}
	return out
}
