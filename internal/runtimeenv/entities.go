package runtimeenv

import (
	"fmt"
	"strings"
	"sync"

	"datalogengine/internal/value"
)

// EntityRecord is one interned ADT constructor application: functor name
// plus its argument values, recoverable later for explain/pretty-print.
type EntityRecord struct {
	Functor string
	Args    []value.Value
}

// DynamicEntityStore implements expr.EntityStore: new(functor, args) hashes
// functor+args to a stable content id, so two rules constructing the same
// entity converge on the same id (spec §4.3/§9). Grounded on the same
// intern-with-a-seen-map shape as SymbolTable, keyed by a content digest
// instead of the raw string.
type DynamicEntityStore struct {
	mu       sync.Mutex
	byHash   map[string]uint64
	byID     []EntityRecord
}

func NewDynamicEntityStore() *DynamicEntityStore {
	return &DynamicEntityStore{byHash: make(map[string]uint64)}
}

// Intern implements internal/expr's EntityStore interface.
func (s *DynamicEntityStore) Intern(functor string, args []value.Value) uint64 {
	key := entityKey(functor, args)

	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byHash[key]; ok {
		return id
	}
	id := uint64(len(s.byID))
	s.byID = append(s.byID, EntityRecord{Functor: functor, Args: append([]value.Value(nil), args...)})
	s.byHash[key] = id
	return id
}

func (s *DynamicEntityStore) Lookup(id uint64) (EntityRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id >= uint64(len(s.byID)) {
		return EntityRecord{}, false
	}
	return s.byID[id], true
}

// entityKey builds a content digest from the functor and the string form
// of each argument. Arguments are always scalars coming out of expr.Eval
// by the time New is constructed, so the Kind + printed form is enough to
// distinguish entities that would otherwise collide (e.g. Str("1") vs I64(1)).
func entityKey(functor string, args []value.Value) string {
	var b strings.Builder
	b.WriteString(functor)
	for _, a := range args {
		fmt.Fprintf(&b, "|%d:%s", a.Kind, a.String())
	}
	return b.String()
}
