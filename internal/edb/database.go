// Package edb implements the extensional database (spec §4.5): per-relation
// typed fact storage (program facts, external facts, dynamic input facts),
// type-checked insertion, canonical InputTag storage with lazy
// internalization, and the disjunction-id allocator. Grounded on
// scallop/core/src/runtime/database/extensional/database.rs.
package edb

import (
	"fmt"
	"sync"

	"datalogengine/internal/provenance"
	"datalogengine/internal/runtimeenv"
	"datalogengine/internal/value"
)

// Fact is one fact as inserted, stored in canonical tag form — the
// provenance's InputTag — before internalization maps any SymbolString /
// EntityString / raw Tensor to an interned id (spec §4.5).
type Fact struct {
	Tuple    value.Tuple
	InputTag *provenance.InputTag
}

// FactSource lets a caller supply externally-loaded facts (e.g. from a CSV
// file) without this package owning any file I/O (spec §1 excludes file
// I/O formats; SPEC_FULL.md §4.5 "expansion"). Grounded on mangle's engine
// package taking a caller-supplied factstore.FactStore rather than opening
// files itself (other_examples/*engine-seminaivebottomup.go.go).
type FactSource interface {
	Load(relation string) ([]Fact, error)
}

// Relation is one predicate's EDB storage: program facts (seeded from the
// compiled program), external facts (from a FactSource), dynamically added
// input facts (from the host, e.g. an MCP assert-facts call), and the
// declared type used to check every insert (spec §4.5).
type Relation struct {
	Name      string
	Type      value.TupleType
	TypeCheck bool

	ProgramFacts  []Fact
	ExternalFacts []Fact
	DynamicFacts  []Fact
}

// All returns every fact currently stored for this relation, in
// program/external/dynamic order.
func (r *Relation) All() []Fact {
	out := make([]Fact, 0, len(r.ProgramFacts)+len(r.ExternalFacts)+len(r.DynamicFacts))
	out = append(out, r.ProgramFacts...)
	out = append(out, r.ExternalFacts...)
	out = append(out, r.DynamicFacts...)
	return out
}

// Database is the full extensional store: one Relation per predicate, plus
// the disjunction-id allocator shared across every Insert call (spec
// §4.5's "fresh usize per exclusive-probability insert batch").
type Database struct {
	mu        sync.Mutex
	relations map[string]*Relation
	nextDisj  uint64
}

func NewDatabase() *Database {
	return &Database{relations: make(map[string]*Relation)}
}

// Declare registers a relation's type and type-check policy; must be
// called before any Insert*Fact(s) method targets that relation.
func (d *Database) Declare(name string, t value.TupleType, typeCheck bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.relations[name]; ok {
		return
	}
	d.relations[name] = &Relation{Name: name, Type: t, TypeCheck: typeCheck}
}

func (d *Database) Relation(name string) (*Relation, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.relations[name]
	return r, ok
}

func (d *Database) Relations() map[string]*Relation {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]*Relation, len(d.relations))
	for k, v := range d.relations {
		out[k] = v
	}
	return out
}

// AllocateDisjunctionID hands out a fresh id grouping a batch of mutually
// exclusive probabilistic facts (spec §4.5, §3 "Exclusion id").
func (d *Database) AllocateDisjunctionID() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextDisj
	d.nextDisj++
	return id
}

// insertInto appends to the right bucket of an already-resolved relation,
// dropping Bool(false)-tagged facts before they are ever stored
// (spec §4.5's "Facts with DynamicInputTag::Bool(false) are dropped before
// internalization").
func insertInto(bucket *[]Fact, r *Relation, tuple value.Tuple, tag *provenance.InputTag) error {
	if tag.IsFalse() {
		return nil
	}
	if r.TypeCheck && !r.Type.Matches(tuple) {
		return fmt.Errorf("edb: fact %s does not match declared type %s for relation %s", tuple, r.Type, r.Name)
	}
	*bucket = append(*bucket, Fact{Tuple: tuple, InputTag: tag})
	return nil
}

// InsertProgramFact inserts a fact that was part of the compiled program
// itself (backast.Fact / DisjunctiveFact choices), per spec §4.5.
func (d *Database) InsertProgramFact(relation string, tuple value.Tuple, tag *provenance.InputTag) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.relations[relation]
	if !ok {
		return fmt.Errorf("edb: insert into unknown relation %q", relation)
	}
	return insertInto(&r.ProgramFacts, r, tuple, tag)
}

// InsertExternalFacts loads and stores a relation's external facts via a
// caller-supplied FactSource (spec §4.5 "external facts (loaded from
// files)"; this repo never opens the file itself, per spec §1).
func (d *Database) InsertExternalFacts(relation string, src FactSource) error {
	facts, err := src.Load(relation)
	if err != nil {
		return fmt.Errorf("edb: loading external facts for %s: %w", relation, err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.relations[relation]
	if !ok {
		return fmt.Errorf("edb: insert into unknown relation %q", relation)
	}
	for _, f := range facts {
		if err := insertInto(&r.ExternalFacts, r, f.Tuple, f.InputTag); err != nil {
			return err
		}
	}
	return nil
}

// InsertDynamicFact inserts one host-supplied fact at run time (e.g. an MCP
// assert-facts tool call), per spec §4.5 "dynamically added input facts
// (from the host)".
func (d *Database) InsertDynamicFact(relation string, tuple value.Tuple, tag *provenance.InputTag) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.relations[relation]
	if !ok {
		return fmt.Errorf("edb: insert into unknown relation %q", relation)
	}
	return insertInto(&r.DynamicFacts, r, tuple, tag)
}

// Internalize maps every stored fact's tuple through env's symbol/tensor
// interning tables, turning SymbolString/EntityString/TensorValue leaves
// into their post-internalization counterparts, and tags each with the
// semiring's Tag via TaggingOptional (spec §4.5/§3's internalization
// boundary invariant). It returns, per relation, the internalized
// (Tuple, Tag) pairs ready to seed a stratum's initial recent/stable state.
func (d *Database) Internalize(env *runtimeenv.Environment, prov provenance.Semiring) map[string][]InternalizedFact {
	d.mu.Lock()
	relations := make(map[string]*Relation, len(d.relations))
	for k, v := range d.relations {
		relations[k] = v
	}
	d.mu.Unlock()

	out := make(map[string][]InternalizedFact, len(relations))
	for name, r := range relations {
		facts := r.All()
		internalized := make([]InternalizedFact, 0, len(facts))
		for _, f := range facts {
			tuple := internalizeTuple(f.Tuple, env)
			tag := prov.TaggingOptional(f.InputTag)
			if tag == nil {
				continue
			}
			internalized = append(internalized, InternalizedFact{Tuple: tuple, Tag: tag})
		}
		out[name] = internalized
	}
	return out
}

// InternalizedFact is a fact after internalization, tagged with a concrete
// provenance.Tag and ready to seed internal/dynamic's three-collection
// relation state.
type InternalizedFact struct {
	Tuple value.Tuple
	Tag   provenance.Tag
}

func internalizeTuple(t value.Tuple, env *runtimeenv.Environment) value.Tuple {
	if t.IsScalar() {
		return value.Scalar(internalizeValue(t.Scalar, env))
	}
	elems := make([]value.Tuple, len(t.Elems))
	for i, e := range t.Elems {
		elems[i] = internalizeTuple(e, env)
	}
	return value.Seq(elems...)
}

func internalizeValue(v value.Value, env *runtimeenv.Environment) value.Value {
	switch v.Kind {
	case value.KindSymbolString:
		return value.SymbolID(env.Symbols.Intern(v.S))
	case value.KindEntityString:
		return value.EntityID(env.Entities.Intern(v.S, nil))
	case value.KindTensorValue:
		return value.Value{Kind: value.KindTensorHandle, U: env.Tensors.Intern(v.Tensor)}
	default:
		return v
	}
}
