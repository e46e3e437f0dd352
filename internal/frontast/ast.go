// Package frontast provides the front-AST construction API. The surface
// parser is out of scope (spec §1); a caller (or a future parser) builds a
// Program directly through this package's structs, rather than by parsing
// Datalog surface syntax as text.
//
// frontast differs from internal/backast in exactly one respect that
// matters structurally: it still carries Forall literals, which
// internal/frontir desugars to a not-exists encoding (spec §4.7,
// grounded on scallop/core/src/compiler/front/transformations/
// forall_to_not_exists.rs) before the program reaches internal/backcompiler.
package frontast

import (
	"datalogengine/internal/backast"
	"datalogengine/internal/expr"
)

type Literal interface {
	isFrontLiteral()
}

type AtomLiteral struct{ Atom backast.Atom }
type NegAtomLiteral struct{ Atom backast.Atom }
type AssignLiteral struct {
	Kind backast.AssignKind
	Left backast.Var
	Expr expr.Expression
}
type ConstraintLiteral struct{ Expr expr.Expression }
type ReduceLiteral struct{ Reduce backast.Reduce }

// ForallLiteral is sugar for "for every binding of Var satisfying
// Conjunction's body atoms, Conjunction's negated atoms must not hold" —
// i.e. forall(v: body) lowered to not exists(v: body ∧ ¬conclusion).
// Conjunction is body ∧ ¬conclusion already expressed as ordinary
// literals; frontir synthesizes the intermediate relation and the
// count-based not-exists encoding.
type ForallLiteral struct {
	Vars        []backast.Var
	Conjunction []Literal
}

func (AtomLiteral) isFrontLiteral()       {}
func (NegAtomLiteral) isFrontLiteral()    {}
func (AssignLiteral) isFrontLiteral()     {}
func (ConstraintLiteral) isFrontLiteral() {}
func (ReduceLiteral) isFrontLiteral()     {}
func (ForallLiteral) isFrontLiteral()     {}

type Head struct {
	Atoms []backast.Atom
}

type Rule struct {
	Head Head
	Body []Literal
	Goal bool
}

type Program struct {
	Relations        map[string]backast.Relation
	Rules            []Rule
	Facts            []backast.Fact
	DisjunctiveFacts []backast.DisjunctiveFact
	ADTVariants      []backast.ADTVariant

	// nextSynthetic counts synthetic relations minted while building the
	// program (e.g. none yet — frontir mints its own during lowering, using
	// a counter scoped to the lowering pass, not this one).
	nextSynthetic int
}

func NewProgram() *Program {
	return &Program{Relations: make(map[string]backast.Relation)}
}

func (p *Program) Relation(r backast.Relation) *Program {
	p.Relations[r.Name] = r
	return p
}

func (p *Program) Rule(r Rule) *Program {
	p.Rules = append(p.Rules, r)
	return p
}

func (p *Program) Fact(f backast.Fact) *Program {
	p.Facts = append(p.Facts, f)
	return p
}

func (p *Program) DisjunctiveFact(f backast.DisjunctiveFact) *Program {
	p.DisjunctiveFacts = append(p.DisjunctiveFacts, f)
	return p
}

func (p *Program) ADTVariant(v backast.ADTVariant) *Program {
	p.ADTVariants = append(p.ADTVariants, v)
	return p
}

// Atom is a convenience constructor for building pure-variable atoms.
func Atom(predicate string, vars ...string) backast.Atom {
	args := make([]expr.Expression, len(vars))
	for i, v := range vars {
		args[i] = expr.Variable{Name: v}
	}
	return backast.Atom{Predicate: predicate, Args: args}
}
