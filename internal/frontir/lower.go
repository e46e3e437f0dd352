// Package frontir performs the trivial front-to-back lowering: desugaring
// forall to not-exists and resolving relation declarations, grounded on
// scallop/core/src/compiler/front/transformations/forall_to_not_exists.rs.
// The surface type checker is out of scope (spec §1); this package assumes
// its input was already built against frontast's typed builder API.
package frontir

import (
	"fmt"

	"datalogengine/internal/backast"
	"datalogengine/internal/expr"
	"datalogengine/internal/frontast"
	"datalogengine/internal/value"
)

// Lower converts a front-AST program into a back-AST program. Every
// ForallLiteral is desugared into a synthetic relation plus a count-based
// not-exists encoding; everything else carries over structurally.
func Lower(p *frontast.Program) (*backast.Program, error) {
	out := backast.NewProgram()
	for name, r := range p.Relations {
		out.Relations[name] = r
	}
	out.Facts = append(out.Facts, p.Facts...)
	out.DisjunctiveFacts = append(out.DisjunctiveFacts, p.DisjunctiveFacts...)
	out.ADTVariants = append(out.ADTVariants, p.ADTVariants...)

	l := &lowerer{out: out}
	for _, r := range p.Rules {
		if err := l.lowerRule(r); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type lowerer struct {
	out     *backast.Program
	counter int
}

func (l *lowerer) freshRelationName() string {
	l.counter++
	return fmt.Sprintf("__forall_violation_%d", l.counter)
}

func (l *lowerer) lowerRule(r frontast.Rule) error {
	body := make([]backast.Literal, 0, len(r.Body))
	for _, lit := range r.Body {
		lowered, err := l.lowerLiteral(lit)
		if err != nil {
			return err
		}
		body = append(body, lowered...)
	}
	l.out.Rules = append(l.out.Rules, backast.Rule{
		Head: backast.Head{Atoms: r.Head.Atoms},
		Body: body,
		Goal: r.Goal,
	})
	return nil
}

// lowerLiteral returns the one-or-more back-AST literals a single front
// literal expands to (ForallLiteral expands to two: a Reduce counting
// violations and a Constraint that the count is zero).
func (l *lowerer) lowerLiteral(lit frontast.Literal) ([]backast.Literal, error) {
	switch n := lit.(type) {
	case frontast.AtomLiteral:
		return []backast.Literal{backast.AtomLiteral{Atom: n.Atom}}, nil
	case frontast.NegAtomLiteral:
		return []backast.Literal{backast.NegAtomLiteral{Atom: n.Atom}}, nil
	case frontast.AssignLiteral:
		return []backast.Literal{backast.AssignLiteral{Kind: n.Kind, Left: n.Left, Expr: n.Expr}}, nil
	case frontast.ConstraintLiteral:
		return []backast.Literal{backast.ConstraintLiteral{Expr: n.Expr}}, nil
	case frontast.ReduceLiteral:
		return []backast.Literal{backast.ReduceLiteral{Reduce: n.Reduce}}, nil
	case frontast.ForallLiteral:
		return l.lowerForall(n)
	}
	return nil, fmt.Errorf("frontir: unhandled literal type %T", lit)
}

// lowerForall implements forall(vars: conjunction) -> not exists(vars:
// conjunction), which in the reduce vocabulary is "the count of bindings
// satisfying conjunction is zero": it synthesizes a relation populated by
// a rule whose body is the forall's conjunction, then emits a Reduce
// counting its tuples bound to a fresh left variable, plus a constraint
// that the count equals zero.
func (l *lowerer) lowerForall(n frontast.ForallLiteral) ([]backast.Literal, error) {
	violationRel := l.freshRelationName()

	body := make([]backast.Literal, 0, len(n.Conjunction))
	for _, lit := range n.Conjunction {
		lowered, err := l.lowerLiteral(lit)
		if err != nil {
			return nil, err
		}
		body = append(body, lowered...)
	}

	args := make([]expr.Expression, len(n.Vars))
	argTypes := make([]value.TupleType, len(n.Vars))
	for i, v := range n.Vars {
		args[i] = expr.Variable{Name: v.Name}
		argTypes[i] = value.Leaf(v.Type)
	}

	l.out.Relations[violationRel] = backast.Relation{Name: violationRel, ArgTypes: argTypes}
	l.out.Rules = append(l.out.Rules, backast.Rule{
		Head: backast.Head{Atoms: []backast.Atom{{Predicate: violationRel, Args: args}}},
		Body: body,
	})

	countVar := backast.Var{Name: fmt.Sprintf("__forall_count_%d", l.counter), Type: value.KindI64}
	reduce := backast.Reduce{
		Aggregator:  "count",
		LeftVars:    []backast.Var{countVar},
		GroupByKind: backast.GroupNone,
		Body:        backast.Atom{Predicate: violationRel, Args: args},
	}

	zeroCheck := backast.ConstraintLiteral{
		Expr: expr.Binary{
			Op:    expr.Eq,
			Left:  expr.Variable{Name: countVar.Name},
			Right: expr.Constant{Value: value.I64(0)},
		},
	}

	return []backast.Literal{
		backast.ReduceLiteral{Reduce: reduce},
		zeroCheck,
	}, nil
}
