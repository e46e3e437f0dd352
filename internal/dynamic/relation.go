package dynamic

import (
	"datalogengine/internal/provenance"
	"datalogengine/internal/value"
)

// Relation is the three-collection discipline of spec §4.6: a stack of
// geometrically-merged stable batches, the current round's recent delta,
// and the next round's unconsolidated to_add batches. Grounded on
// relation.rs's StaticRelation.
type Relation struct {
	Stable []Collection
	Recent Collection
	ToAdd  []Collection
}

func NewRelation() *Relation { return &Relation{} }

// Seed queues tuples for promotion into Recent on the first Changed call,
// used for EDB facts and for external/dynamic inputs (spec §4.5).
func (r *Relation) Seed(c Collection) {
	if len(c) == 0 {
		return
	}
	r.ToAdd = append(r.ToAdd, c)
}

// StableView merges the whole stable stack into one sorted Collection.
// Stable batches never share a tuple (changed() guarantees this), so a
// plain k-way merge with no tag-folding is correct and does not need the
// semiring at all.
func (r *Relation) StableView() Collection {
	if len(r.Stable) == 0 {
		return nil
	}
	out := r.Stable[0]
	for _, b := range r.Stable[1:] {
		merged := make(Collection, 0, len(out)+len(b))
		i, j := 0, 0
		for i < len(out) && j < len(b) {
			switch cmp := compareTuple(out[i], b[j]); {
			case cmp < 0:
				merged = append(merged, out[i])
				i++
			case cmp > 0:
				merged = append(merged, b[j])
				j++
			default:
				merged = append(merged, out[i])
				i++
				j++
			}
		}
		merged = append(merged, out[i:]...)
		merged = append(merged, b[j:]...)
		out = merged
	}
	return out
}

func compareTuple(a, b Element) int {
	return value.CompareTuples(a.Tuple, b.Tuple)
}

// RecentView returns this round's delta as-is (already sorted/deduplicated
// by the last Changed call that produced it).
func (r *Relation) RecentView() Collection {
	return r.Recent
}

// All merges stable and recent, used by internal/idb's post-stratum
// recovery once a stratum's loop has reached its fixpoint (spec §4.9).
func (r *Relation) All(prov provenance.Semiring) Collection {
	return mergeCollections(r.StableView(), r.Recent, prov)
}

// Changed runs the routine from relation.rs: (1) merge recent into stable,
// popping and re-merging stable batches while they are no larger than
// twice the incoming batch (keeping the stack geometric); (2) consolidate
// every pending to_add batch into one, then walk each stable batch
// removing tuples that also appear in to_add, folding their tag through
// Add and deciding — via Saturated — whether the updated tag belongs back
// in stable (no further propagation needed) or must flow into recent for
// another round. Returns whether recent ended up non-empty.
func (r *Relation) Changed(prov provenance.Semiring) bool {
	if len(r.Recent) > 0 {
		recent := r.Recent
		r.Recent = nil
		for len(r.Stable) > 0 && len(r.Stable[len(r.Stable)-1]) <= 2*len(recent) {
			last := r.Stable[len(r.Stable)-1]
			r.Stable = r.Stable[:len(r.Stable)-1]
			recent = mergeCollections(recent, last, prov)
		}
		r.Stable = append(r.Stable, recent)
	}

	if len(r.ToAdd) == 0 {
		return len(r.Recent) > 0
	}
	toAdd := r.ToAdd[len(r.ToAdd)-1]
	r.ToAdd = r.ToAdd[:len(r.ToAdd)-1]
	for len(r.ToAdd) > 0 {
		more := r.ToAdd[len(r.ToAdd)-1]
		r.ToAdd = r.ToAdd[:len(r.ToAdd)-1]
		toAdd = mergeCollections(toAdd, more, prov)
	}

	removed := make(map[int]bool, len(toAdd))
	for bi, batch := range r.Stable {
		kept := batch[:0]
		idx := 0
		for _, elem := range batch {
			for idx < len(toAdd) && value.CompareTuples(toAdd[idx].Tuple, elem.Tuple) < 0 {
				idx++
			}
			if idx < len(toAdd) && value.TupleEqual(toAdd[idx].Tuple, elem.Tuple) {
				newTag := prov.Add(elem.Tag, toAdd[idx].Tag)
				if prov.Saturated(elem.Tag, newTag) {
					elem.Tag = newTag
					removed[idx] = true
					kept = append(kept, elem)
				} else {
					toAdd[idx].Tag = newTag
				}
			} else {
				kept = append(kept, elem)
			}
		}
		r.Stable[bi] = kept
	}

	filtered := make(Collection, 0, len(toAdd))
	for i, e := range toAdd {
		if !removed[i] {
			filtered = append(filtered, e)
		}
	}
	r.Recent = filtered
	return len(r.Recent) > 0
}
