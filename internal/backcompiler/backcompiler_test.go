package backcompiler

import (
	"testing"

	"datalogengine/internal/backast"
	"datalogengine/internal/expr"
	"datalogengine/internal/runtimeenv"
	"datalogengine/internal/value"
)

func atom(pred string, vars ...string) backast.Atom {
	args := make([]expr.Expression, len(vars))
	for i, v := range vars {
		args[i] = expr.Variable{Name: v}
	}
	return backast.Atom{Predicate: pred, Args: args}
}

// TestStratifyOrdersAcyclicProgram checks that a plain acyclic program (no
// self-loops, no negation) stratifies into one non-recursive stratum per
// predicate, in dependency order.
func TestStratifyOrdersAcyclicProgram(t *testing.T) {
	g := NewDependencyGraph()
	g.AddDependency("b", "a", Positive)
	g.AddDependency("c", "b", Positive)

	strata, err := g.Stratify()
	if err != nil {
		t.Fatalf("Stratify: %v", err)
	}
	pos := make(map[string]int, len(strata))
	for i, s := range strata {
		if s.Recursive {
			t.Errorf("stratum %d (%v) should not be recursive", i, s.Predicates)
		}
		for _, p := range s.Predicates {
			pos[p] = i
		}
	}
	if pos["a"] > pos["b"] || pos["b"] > pos["c"] {
		t.Errorf("expected a before b before c, got positions %v", pos)
	}
}

// TestStratifyDetectsRecursiveSCC checks a self-recursive predicate (a
// positive self-loop, like path(x,y) :- edge(x,z), path(z,y)) is reported
// as one recursive stratum.
func TestStratifyDetectsRecursiveSCC(t *testing.T) {
	g := NewDependencyGraph()
	g.AddDependency("path", "edge", Positive)
	g.AddDependency("path", "path", Positive)

	strata, err := g.Stratify()
	if err != nil {
		t.Fatalf("Stratify: %v", err)
	}
	var found bool
	for _, s := range strata {
		for _, p := range s.Predicates {
			if p == "path" {
				found = true
				if !s.Recursive {
					t.Error("expected path's stratum to be marked recursive")
				}
			}
		}
	}
	if !found {
		t.Fatal("path missing from strata")
	}
}

// TestStratifyRejectsNegationCycle checks that two predicates mutually
// recursive through a negative edge cannot be stratified (spec §4.1's
// stratified-negation restriction).
func TestStratifyRejectsNegationCycle(t *testing.T) {
	g := NewDependencyGraph()
	g.AddDependency("p", "r", Negative)
	g.AddDependency("r", "p", Negative)

	_, err := g.Stratify()
	if err == nil {
		t.Fatal("expected a cannot-stratify error")
	}
	if _, ok := err.(*CannotStratifyError); !ok {
		t.Errorf("expected *CannotStratifyError, got %T", err)
	}
}

// TestBuildDependencyGraphEdgeKinds checks that positive atoms, negated
// atoms, and reduce bodies are recorded with the edge kinds §4.1 specifies.
func TestBuildDependencyGraphEdgeKinds(t *testing.T) {
	prog := backast.NewProgram()
	prog.AddRule(backast.Rule{
		Head: backast.Head{Atoms: []backast.Atom{atom("derived", "x")}},
		Body: []backast.Literal{
			backast.AtomLiteral{Atom: atom("positive_src", "x")},
			backast.NegAtomLiteral{Atom: atom("negative_src", "x")},
			backast.ReduceLiteral{Reduce: backast.Reduce{
				Aggregator: "count",
				LeftVars:   []backast.Var{{Name: "n", Type: value.KindI64}},
				Body:       atom("agg_src", "x"),
			}},
		},
	})

	graph := BuildDependencyGraph(prog, map[string]struct{}{})
	strata, err := graph.Stratify()
	if err != nil {
		t.Fatalf("Stratify: %v", err)
	}
	pos := make(map[string]int, len(strata))
	for i, s := range strata {
		for _, p := range s.Predicates {
			pos[p] = i
		}
	}
	for _, src := range []string{"positive_src", "negative_src", "agg_src"} {
		if pos[src] >= pos["derived"] {
			t.Errorf("expected %s to stratify strictly before derived", src)
		}
	}
}

// TestUnusedRelationsPrunesUnreachable checks the goal-reachability pruning
// used by Compile's goals parameter.
func TestUnusedRelationsPrunesUnreachable(t *testing.T) {
	g := NewDependencyGraph()
	g.AddDependency("goal", "needed", Positive)
	g.AddPredicate("orphan")

	unused := g.UnusedRelations([]string{"goal"})
	foundOrphan, foundNeeded := false, false
	for _, p := range unused {
		if p == "orphan" {
			foundOrphan = true
		}
		if p == "needed" {
			foundNeeded = true
		}
	}
	if !foundOrphan {
		t.Error("expected orphan to be reported unused")
	}
	if foundNeeded {
		t.Error("needed is reachable from goal and should not be reported unused")
	}
}

// TestConstantFoldBinaryAssign checks that an assign literal with two
// constant operands folds to an equality constraint on its left variable
// rather than staying a live Binary evaluation (spec §4.2).
func TestConstantFoldBinaryAssign(t *testing.T) {
	env := runtimeenv.NewDefault(1, runtimeenv.StoppingCriteria{})
	lits := []backast.Literal{
		backast.AssignLiteral{
			Kind: backast.AssignBinary,
			Left: backast.Var{Name: "sum", Type: value.KindI64},
			Expr: expr.Binary{Op: expr.Add, Left: expr.Constant{Value: value.I64(2)}, Right: expr.Constant{Value: value.I64(3)}},
		},
	}
	folded := ConstantFold(lits, env)
	if len(folded) != 1 {
		t.Fatalf("expected 1 literal after folding, got %d", len(folded))
	}
	c, ok := folded[0].(backast.ConstraintLiteral)
	if !ok {
		t.Fatalf("expected folding to an equality constraint, got %T", folded[0])
	}
	bin, ok := c.Expr.(expr.Binary)
	if !ok || bin.Op != expr.Eq {
		t.Fatalf("expected an Eq constraint, got %#v", c.Expr)
	}
	rhs, ok := bin.Right.(expr.Constant)
	if !ok || rhs.Value.I != 5 {
		t.Errorf("expected folded constant 5, got %#v", bin.Right)
	}
}

// TestConstantFoldLeavesForeignCallsAlone checks that a Call expression is
// never folded, since the compiler does not know whether the callee is
// pure (spec §4.2).
func TestConstantFoldLeavesForeignCallsAlone(t *testing.T) {
	env := runtimeenv.NewDefault(1, runtimeenv.StoppingCriteria{})
	lit := backast.AssignLiteral{
		Kind: backast.AssignCall,
		Left: backast.Var{Name: "out", Type: value.KindI64},
		Expr: expr.Call{Function: "max", Args: []expr.Expression{expr.Constant{Value: value.I64(1)}, expr.Constant{Value: value.I64(2)}}},
	}
	folded := ConstantFold([]backast.Literal{lit}, env)
	if _, ok := folded[0].(backast.AssignLiteral); !ok {
		t.Fatalf("expected the Call assign to survive folding untouched, got %T", folded[0])
	}
}
