// fold.go implements constant folding (spec §4.2), grounded directly on
// scallop/core/src/compiler/back/optimizations/constant_folding.rs: a
// per-literal peephole rewrite applied before RAM lowering. Calls to
// foreign functions are never folded — scallop's own constant_folding.rs
// leaves AssignExpr::Call alone because callee purity is unknown; this
// repo keeps the same rule rather than silently dropping it.
package backcompiler

import (
	"datalogengine/internal/backast"
	"datalogengine/internal/expr"
	"datalogengine/internal/runtimeenv"
	"datalogengine/internal/value"
)

// ConstantFold rewrites a rule body's literals, folding constant-operand
// assigns/constraints/if-then-else/new expressions. env is used only to
// evaluate pure constant sub-expressions and intern constant entities; by
// construction an expression containing a Variable is never treated as
// "all constant", so env never needs a rule's actual bindings.
func ConstantFold(lits []backast.Literal, env *runtimeenv.Environment) []backast.Literal {
	out := make([]backast.Literal, 0, len(lits))
	for _, lit := range lits {
		out = append(out, foldLiteral(lit, env))
	}
	return out
}

func foldLiteral(lit backast.Literal, env *runtimeenv.Environment) backast.Literal {
	switch n := lit.(type) {
	case backast.AssignLiteral:
		return foldAssign(n, env)
	case backast.ConstraintLiteral:
		return foldConstraint(n, env)
	default:
		return lit
	}
}

func foldAssign(lit backast.AssignLiteral, env *runtimeenv.Environment) backast.Literal {
	switch n := lit.Expr.(type) {
	case expr.Binary:
		if isConstant(n.Left) && isConstant(n.Right) {
			result, ok := evalConst(n, env)
			if !ok {
				return backast.ConstraintLiteral{Expr: expr.Constant{Value: value.Bool(false)}}
			}
			return eqConstraint(lit.Left, result)
		}
	case expr.Unary:
		if isConstant(n.Operand) {
			result, ok := evalConst(n, env)
			if !ok {
				return backast.ConstraintLiteral{Expr: expr.Constant{Value: value.Bool(false)}}
			}
			return eqConstraint(lit.Left, result)
		}
	case expr.IfThenElse:
		if c, ok := n.Cond.(expr.Constant); ok && c.Value.Kind == value.KindBool {
			branch := n.Else
			if c.Value.B {
				branch = n.Then
			}
			return backast.AssignLiteral{Kind: backast.AssignIfThenElse, Left: lit.Left, Expr: branch}
		}
	case expr.New:
		if allConstant(n.Args) {
			args := make([]value.Value, len(n.Args))
			for i, a := range n.Args {
				args[i] = a.(expr.Constant).Value
			}
			id := env.Entities.Intern(n.Functor, args)
			return eqConstraint(lit.Left, value.EntityID(id))
		}
	case expr.Call:
		// Foreign function calls are never folded: callee purity is unknown
		// to the compiler (spec §4.2, scallop's commented-out
		// AssignExpr::Call branch in constant_folding.rs).
	}
	return lit
}

func eqConstraint(left backast.Var, result value.Value) backast.Literal {
	return backast.ConstraintLiteral{Expr: expr.Binary{
		Op:    expr.Eq,
		Left:  expr.Variable{Name: left.Name},
		Right: expr.Constant{Value: result},
	}}
}

func foldConstraint(lit backast.ConstraintLiteral, env *runtimeenv.Environment) backast.Literal {
	switch n := lit.Expr.(type) {
	case expr.Binary:
		if v, isVar := n.Left.(expr.Variable); isVar {
			if r, isVar2 := n.Right.(expr.Variable); isVar2 && v.Name == r.Name {
				if n.Op == expr.Eq {
					return backast.ConstraintLiteral{Expr: expr.Constant{Value: value.Bool(true)}}
				}
				if n.Op == expr.Neq {
					return backast.ConstraintLiteral{Expr: expr.Constant{Value: value.Bool(false)}}
				}
			}
		}
		if isConstant(n.Left) && isConstant(n.Right) {
			result, ok := evalConst(n, env)
			if !ok {
				return backast.ConstraintLiteral{Expr: expr.Constant{Value: value.Bool(false)}}
			}
			return backast.ConstraintLiteral{Expr: expr.Constant{Value: result}}
		}
	case expr.Unary:
		if isConstant(n.Operand) {
			result, ok := evalConst(n, env)
			if !ok {
				return backast.ConstraintLiteral{Expr: expr.Constant{Value: value.Bool(false)}}
			}
			return backast.ConstraintLiteral{Expr: expr.Constant{Value: result}}
		}
	}
	return lit
}

func isConstant(e expr.Expression) bool {
	_, ok := e.(expr.Constant)
	return ok
}

func allConstant(es []expr.Expression) bool {
	for _, e := range es {
		if !isConstant(e) {
			return false
		}
	}
	return true
}

func evalConst(e expr.Expression, env *runtimeenv.Environment) (value.Value, bool) {
	t, ok := expr.Eval(e, env.ExprEnv())
	if !ok {
		return value.Value{}, false
	}
	return t.Scalar, true
}
