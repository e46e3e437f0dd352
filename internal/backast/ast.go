// Package backast defines the back-AST: relations, rules, and literals,
// matching spec §3's Program/Rule/Literal/Reduce description and
// scallop/core/src/compiler/back/ast.rs's shapes (translated to Go structs
// with explicit constructors instead of Rust enums with impl blocks).
package backast

import (
	"datalogengine/internal/expr"
	"datalogengine/internal/value"
)

// Attribute carries a declaration annotation (@file, @goal, @demand,
// @magic_set). Full codegen/optimization behavior for @file/@demand/
// @magic_set is out of scope (spec §6); they round-trip as inert metadata.
type Attribute struct {
	Name   string
	Params map[string]string
}

// Relation declares a predicate's name, argument types, and attributes.
type Relation struct {
	Name       string
	ArgTypes   []value.TupleType
	Attributes []Attribute
}

func (r Relation) HasAttribute(name string) bool {
	for _, a := range r.Attributes {
		if a.Name == name {
			return true
		}
	}
	return false
}

// Var is a rule-local variable: a name plus its declared value type.
type Var struct {
	Name string
	Type value.Kind
}

// Atom is a positive reference to a relation with argument expressions.
// An atom is pure iff every argument is a distinct Variable — only pure
// atoms may be used directly as a dataflow source (spec §3).
type Atom struct {
	Predicate string
	Args      []expr.Expression
}

func (a Atom) IsPure() bool {
	seen := make(map[string]struct{}, len(a.Args))
	for _, arg := range a.Args {
		v, ok := arg.(expr.Variable)
		if !ok {
			return false
		}
		if _, dup := seen[v.Name]; dup {
			return false
		}
		seen[v.Name] = struct{}{}
	}
	return true
}

// GroupBy discriminates how a Reduce literal partitions its input (spec §4.7).
type GroupByKind int

const (
	GroupNone GroupByKind = iota
	GroupImplicit
	GroupJoin
)

// Reduce is an aggregation literal (spec §3).
type Reduce struct {
	Aggregator   string
	PosParams    []value.Value
	NamedParams  map[string]value.Value
	Bang         bool
	LeftVars     []Var // aggregate result variables
	ArgVars      []Var
	InputVars    []Var
	GroupByVars  []Var
	GroupByKind  GroupByKind
	GroupByAtom  *Atom // non-nil iff GroupByKind == GroupJoin
	Body         Atom
}

// Literal is a closed sum type over the five body-literal forms (spec §3).
type Literal interface {
	isLiteral()
}

type AtomLiteral struct{ Atom Atom }
type NegAtomLiteral struct{ Atom Atom }

// AssignKind discriminates the four assign literal forms.
type AssignKind int

const (
	AssignBinary AssignKind = iota
	AssignUnary
	AssignIfThenElse
	AssignCall
	AssignNew
)

type AssignLiteral struct {
	Kind  AssignKind
	Left  Var
	Expr  expr.Expression
}

type ConstraintLiteral struct {
	Expr expr.Expression // must evaluate to Bool
}

type ReduceLiteral struct{ Reduce Reduce }

func (AtomLiteral) isLiteral()       {}
func (NegAtomLiteral) isLiteral()    {}
func (AssignLiteral) isLiteral()     {}
func (ConstraintLiteral) isLiteral() {}
func (ReduceLiteral) isLiteral()     {}

// Head is either a single atom or a disjunction of atoms sharing a predicate.
type Head struct {
	Atoms []Atom // len==1 for a plain head; len>1 for disjunction
}

func (h Head) Predicate() string {
	if len(h.Atoms) == 0 {
		return ""
	}
	return h.Atoms[0].Predicate
}

func (h Head) IsDisjunction() bool { return len(h.Atoms) > 1 }

// Rule is head :- body (conjunction of literals).
type Rule struct {
	Head Head
	Body []Literal
	// Goal marks this rule's head predicate as a query target; reverse
	// dependencies are added for it during dependency-graph construction
	// (spec §4.1 "goal-attributed heads").
	Goal bool
}

// Fact is a plain (non-disjunctive, non-probabilistic) extensional fact.
type Fact struct {
	Predicate string
	Args      []value.Value
}

// DisjunctiveFact groups mutually exclusive probabilistic facts under one
// exclusion id (spec §3, §4.5).
type DisjunctiveFact struct {
	Predicate string
	Choices   []WeightedFact
}

type WeightedFact struct {
	Prob float64
	Args []value.Value
}

// ADTVariant registers one constructor of an algebraic data type, used by
// dependency-graph construction to find every variant predicate a `new`
// expression or Entity-typed foreign-predicate argument might reference
// (spec §4.1).
type ADTVariant struct {
	Functor  string
	Relation string
}

// Program is the back-AST root: relations, rules, facts, and the three
// foreign registries (function/predicate/aggregate) plus the ADT variant
// registry (spec §3). The foreign registries themselves live in
// internal/runtimeenv; Program only records which names a rule references.
type Program struct {
	Relations        map[string]Relation
	Rules            []Rule
	Facts            []Fact
	DisjunctiveFacts []DisjunctiveFact
	ADTVariants      []ADTVariant
}

func NewProgram() *Program {
	return &Program{Relations: make(map[string]Relation)}
}

func (p *Program) AddRelation(r Relation) { p.Relations[r.Name] = r }
func (p *Program) AddRule(r Rule)         { p.Rules = append(p.Rules, r) }
func (p *Program) AddFact(f Fact)         { p.Facts = append(p.Facts, f) }
