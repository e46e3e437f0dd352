package dynamic

import (
	"datalogengine/internal/provenance"
	"datalogengine/internal/value"
)

// tupleKey extracts the leading key component used by Join/Antijoin/
// Difference/JoinIndexedVec's Seq(key, rest) convention (spec §4.7); a
// scalar tuple is its own key (used by ground-truth/unary sources).
func tupleKey(t value.Tuple) value.Tuple {
	if !t.IsScalar() && len(t.Elems) > 0 {
		return t.Elems[0]
	}
	return t
}

func tupleRest(t value.Tuple) value.Tuple {
	if !t.IsScalar() && len(t.Elems) > 1 {
		return t.Elems[1]
	}
	return value.Seq()
}

// joinCollections merge-joins two Seq(key, rest) collections on their
// leading key, cartesian-producting within equal-key spans and tagging
// each output with Mult(l.tag, r.tag); output shape is Seq(key, left
// rest, right rest) (spec §4.7 "Join").
func joinCollections(left, right Collection, prov provenance.Semiring) Collection {
	var out []Element
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		ki, kj := tupleKey(left[i].Tuple), tupleKey(right[j].Tuple)
		switch c := value.CompareTuples(ki, kj); {
		case c < 0:
			i++
		case c > 0:
			j++
		default:
			iEnd := i
			for iEnd < len(left) && value.CompareTuples(tupleKey(left[iEnd].Tuple), ki) == 0 {
				iEnd++
			}
			jEnd := j
			for jEnd < len(right) && value.CompareTuples(tupleKey(right[jEnd].Tuple), kj) == 0 {
				jEnd++
			}
			for a := i; a < iEnd; a++ {
				for b := j; b < jEnd; b++ {
					out = append(out, Element{
						Tuple: value.Seq(ki, tupleRest(left[a].Tuple), tupleRest(right[b].Tuple)),
						Tag:   prov.Mult(left[a].Tag, right[b].Tag),
					})
				}
			}
			i, j = iEnd, jEnd
		}
	}
	return NewCollection(out, prov)
}

// intersectCollections keeps full tuples present in both sides, tagging
// each with Mult(l.tag, r.tag) (spec §4.7 "Intersect").
func intersectCollections(left, right Collection, prov provenance.Semiring) Collection {
	var out []Element
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		switch c := value.CompareTuples(left[i].Tuple, right[j].Tuple); {
		case c < 0:
			i++
		case c > 0:
			j++
		default:
			out = append(out, Element{Tuple: left[i].Tuple, Tag: prov.Mult(left[i].Tag, right[j].Tag)})
			i++
			j++
		}
	}
	return NewCollection(out, prov)
}

// productCollections is the unconditional cartesian product, output shape
// Seq(left, right), tag Mult(l.tag, r.tag) (spec §4.7 "Product").
func productCollections(left, right Collection, prov provenance.Semiring) Collection {
	out := make([]Element, 0, len(left)*len(right))
	for _, l := range left {
		for _, r := range right {
			out = append(out, Element{Tuple: value.Seq(l.Tuple, r.Tuple), Tag: prov.Mult(l.Tag, r.Tag)})
		}
	}
	return NewCollection(out, prov)
}

// antijoinCollections keeps Left tuples whose key has no match in Right
// (right must be a frozen relation's stable view per spec §4.7).
func antijoinCollections(left, right Collection) Collection {
	out := make(Collection, 0, len(left))
	j := 0
	for _, l := range left {
		key := tupleKey(l.Tuple)
		for j < len(right) && value.CompareTuples(tupleKey(right[j].Tuple), key) < 0 {
			j++
		}
		if j < len(right) && value.CompareTuples(tupleKey(right[j].Tuple), key) == 0 {
			continue
		}
		out = append(out, l)
	}
	return out
}

// differenceCollections re-weights Left by Right's negation composed with
// Mult: a Left tuple whose key matches a Right tuple gets
// Mult(l.tag, Negate(r.tag)); with no match, or when the semiring cannot
// negate, the Left tag passes through unchanged (spec §4.7 "Difference").
func differenceCollections(left, right Collection, prov provenance.Semiring) Collection {
	out := make([]Element, 0, len(left))
	j := 0
	for _, l := range left {
		key := tupleKey(l.Tuple)
		for j < len(right) && value.CompareTuples(tupleKey(right[j].Tuple), key) < 0 {
			j++
		}
		tag := l.Tag
		if j < len(right) && value.CompareTuples(tupleKey(right[j].Tuple), key) == 0 {
			if neg, ok := prov.Negate(right[j].Tag); ok {
				tag = prov.Mult(l.Tag, neg)
			}
		}
		out = append(out, Element{Tuple: l.Tuple, Tag: tag})
	}
	return NewCollection(out, prov)
}

// exclusionCollection passes its source through unchanged. No DNF-formula
// tag is carried through the dataflow tree, and none of the shipped
// semirings reads the exclusion id a disjunctive fact's choices share, so
// those choices combine as independent events (see DESIGN.md "Exclusion").
func exclusionCollection(src Collection, prov provenance.Semiring) Collection {
	return src
}

// joinIndexedVec joins Left (Seq(key, rest)) against a constant,
// pre-sorted vector of Seq(key, rest) tuples (spec §4.7).
func joinIndexedVec(left Collection, right []value.Tuple, prov provenance.Semiring) Collection {
	rightElems := make(Collection, len(right))
	for i, t := range right {
		rightElems[i] = Element{Tuple: t, Tag: prov.One()}
	}
	sortElements(rightElems)
	return joinCollections(left, rightElems, prov)
}
