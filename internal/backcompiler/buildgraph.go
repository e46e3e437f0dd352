package backcompiler

import (
	"datalogengine/internal/backast"
	"datalogengine/internal/expr"
)

// BuildDependencyGraph implements §4.1's construction rules verbatim:
//
//   - For each body atom A not matching a foreign predicate, add edge H<-A, Positive.
//   - For each body negated atom ¬A, add edge H<-A, Negative.
//   - For each reduce literal with body predicate R (and optional group-by G),
//     add edges H<-R and H<-G, Aggregation.
//   - If the rule creates entities dynamically (a `new` expression
//     anywhere in the body), add bidirectional Positive edges between H
//     and every registered ADT variant relation, forcing them into one
//     stratum with their consumers.
//   - Goal-attributed heads additionally attract Positive dependencies
//     from their body atoms in reverse (magic-set/demand propagation).
func BuildDependencyGraph(p *backast.Program, foreignPredicates map[string]struct{}) *DependencyGraph {
	g := NewDependencyGraph()
	for name := range p.Relations {
		g.AddPredicate(name)
	}

	for _, rule := range p.Rules {
		head := rule.Head.Predicate()
		g.AddPredicate(head)

		createsEntities := false

		for _, lit := range rule.Body {
			switch n := lit.(type) {
			case backast.AtomLiteral:
				if _, isForeign := foreignPredicates[n.Atom.Predicate]; isForeign {
					continue
				}
				g.AddDependency(head, n.Atom.Predicate, Positive)
			case backast.NegAtomLiteral:
				g.AddDependency(head, n.Atom.Predicate, Negative)
			case backast.ReduceLiteral:
				g.AddDependency(head, n.Reduce.Body.Predicate, Aggregation)
				if n.Reduce.GroupByKind == backast.GroupJoin && n.Reduce.GroupByAtom != nil {
					g.AddDependency(head, n.Reduce.GroupByAtom.Predicate, Aggregation)
				}
			case backast.AssignLiteral:
				if n.Kind == backast.AssignNew || exprCreatesEntity(n.Expr) {
					createsEntities = true
				}
			}
		}

		if createsEntities {
			for _, variant := range p.ADTVariants {
				g.AddDependency(head, variant.Relation, Positive)
				g.AddDependency(variant.Relation, head, Positive)
			}
		}

		if rule.Goal {
			for _, lit := range rule.Body {
				if a, ok := lit.(backast.AtomLiteral); ok {
					g.AddDependency(a.Atom.Predicate, head, Positive)
				}
			}
		}
	}

	return g
}

func exprCreatesEntity(e expr.Expression) bool {
	switch n := e.(type) {
	case expr.New:
		return true
	case expr.Binary:
		return exprCreatesEntity(n.Left) || exprCreatesEntity(n.Right)
	case expr.Unary:
		return exprCreatesEntity(n.Operand)
	case expr.IfThenElse:
		return exprCreatesEntity(n.Cond) || exprCreatesEntity(n.Then) || exprCreatesEntity(n.Else)
	case expr.Cast:
		return exprCreatesEntity(n.Operand)
	case expr.Call:
		for _, a := range n.Args {
			if exprCreatesEntity(a) {
				return true
			}
		}
	}
	return false
}
