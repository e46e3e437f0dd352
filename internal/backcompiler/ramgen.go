// ramgen.go implements the RAM lowering pass (spec §3/§4.4): it drives
// BuildDependencyGraph + Stratify + ConstantFold and then compiles each
// rule's body into a ram.Node dataflow tree, grounded on
// scallop/core/src/compiler/ram/ram2rs.rs's "compile a body into closures"
// idea (see internal/ram's package doc) and on the join-planning shape of
// scallop/core/src/compiler/ram/to_ram.rs (condensed here into a single
// incremental env-tuple builder rather than a separate query-plan IR,
// since this repo has no intermediate codegen step to target).
//
// Join strategy note (DESIGN.md): every multi-atom join in a rule body is
// compiled as an unconditional Product followed by a Project that both
// checks shared-variable equality and re-binds the new variables. A true
// merge-joining ram.Join (leading-key sort) would need a join-key planner
// choosing which shared variable becomes the leading key and reshaping
// both sides into Seq(key, rest) around it; with no build/test loop
// available to validate that reshaping, Product+Project is the safer
// choice — it is definitionally correct (spec §8 property 3 is a set
// equality, not an operator-choice requirement) and reuses the exact same
// recent/stable cross-product expansion ram.Join would (internal/dynamic's
// EvalRecent already expands Product the same three-way way). This
// compiler emits no ram.Join or ram.JoinIndexedVec node; ram.Join is
// exercised directly by internal/dynamic's operator tests.
package backcompiler

import (
	"datalogengine/internal/backast"
	"datalogengine/internal/expr"
	"datalogengine/internal/foreignpred"
	"datalogengine/internal/provenance"
	"datalogengine/internal/ram"
	"datalogengine/internal/runtimeenv"
	"datalogengine/internal/value"
)

// Compile lowers a back-AST program all the way to a RAM program: constant
// folding, dependency-graph construction, Kosaraju stratification, and
// per-rule dataflow compilation (spec §3's "Data flow" pipeline, minus the
// front-AST step which internal/frontir already performed). goals, if
// non-empty, restricts the program to the predicates reachable from them
// (spec §4.1 "Unused-relation analysis"); an empty goals keeps everything.
func Compile(prog *backast.Program, env *runtimeenv.Environment, foreign *foreignpred.Registry, goals []string) (*ram.Program, error) {
	foreignNames := make(map[string]struct{})
	for _, p := range foreign.All() {
		foreignNames[p.Name()] = struct{}{}
	}

	folded := &backast.Program{
		Relations:        prog.Relations,
		Facts:            prog.Facts,
		DisjunctiveFacts: prog.DisjunctiveFacts,
		ADTVariants:      prog.ADTVariants,
	}
	for _, r := range prog.Rules {
		folded.Rules = append(folded.Rules, backast.Rule{
			Head: r.Head,
			Body: ConstantFold(r.Body, env),
			Goal: r.Goal,
		})
	}

	graph := BuildDependencyGraph(folded, foreignNames)
	strataMeta, err := graph.Stratify()
	if err != nil {
		return nil, err
	}

	keep := map[string]struct{}(nil)
	if len(goals) > 0 {
		all := graph.Predicates()
		unused := make(map[string]struct{})
		for _, p := range graph.UnusedRelations(goals) {
			unused[p] = struct{}{}
		}
		keep = make(map[string]struct{}, len(all))
		for _, p := range all {
			if _, dropped := unused[p]; !dropped {
				keep[p] = struct{}{}
			}
		}
	}

	rulesByHead := make(map[string][]backast.Rule)
	for _, r := range folded.Rules {
		h := r.Head.Predicate()
		rulesByHead[h] = append(rulesByHead[h], r)
	}

	var disjCounter uint64
	var reduceCounter int

	program := &ram.Program{}
	for _, st := range strataMeta {
		ramSt := ram.NewStratum()
		ramSt.Recursive = st.Recursive

		anyKept := false
		for _, predName := range st.Predicates {
			if keep != nil {
				if _, ok := keep[predName]; !ok {
					continue
				}
			}
			anyKept = true
			ramSt.Relations[predName] = buildRelation(folded, predName, &disjCounter)
		}
		if !anyKept {
			continue
		}

		for _, predName := range st.Predicates {
			if _, ok := ramSt.Relations[predName]; !ok {
				continue
			}
			for _, rule := range rulesByHead[predName] {
				upd, err := compileRule(rule, env, foreign, &reduceCounter)
				if err != nil {
					return nil, err
				}
				ramSt.Updates = append(ramSt.Updates, upd)
			}
		}
		program.Strata = append(program.Strata, ramSt)
	}
	return program, nil
}

func tupleTypeFromArgs(argTypes []value.TupleType) value.TupleType {
	if len(argTypes) == 1 {
		return argTypes[0]
	}
	return value.Nested(argTypes...)
}

func tupleFromValues(vals []value.Value) value.Tuple {
	if len(vals) == 1 {
		return value.Scalar(vals[0])
	}
	elems := make([]value.Tuple, len(vals))
	for i, v := range vals {
		elems[i] = value.Scalar(v)
	}
	return value.Seq(elems...)
}

func buildRelation(prog *backast.Program, predName string, disjCounter *uint64) *ram.Relation {
	rel := &ram.Relation{Name: predName}
	if decl, ok := prog.Relations[predName]; ok {
		rel.Type = tupleTypeFromArgs(decl.ArgTypes)
		if fa := findFileAttribute(decl); fa != nil {
			rel.Input = fa
		}
	}
	for _, f := range prog.Facts {
		if f.Predicate != predName {
			continue
		}
		rel.Facts = append(rel.Facts, ram.SeedFact{Tuple: tupleFromValues(f.Args), InputTag: provenance.None()})
	}
	for _, df := range prog.DisjunctiveFacts {
		if df.Predicate != predName {
			continue
		}
		group := *disjCounter
		*disjCounter++
		for _, choice := range df.Choices {
			rel.Facts = append(rel.Facts, ram.SeedFact{
				Tuple:    tupleFromValues(choice.Args),
				InputTag: provenance.ExclusiveFloat(choice.Prob, group),
			})
		}
	}
	return rel
}

func findFileAttribute(r backast.Relation) *ram.InputFileConfig {
	for _, a := range r.Attributes {
		if a.Name != "file" {
			continue
		}
		delim := ','
		if d, ok := a.Params["deliminator"]; ok && len(d) == 1 {
			delim = rune(d[0])
		}
		return &ram.InputFileConfig{Path: a.Params["path"], Deliminator: delim}
	}
	return nil
}

// ruleCompiler incrementally builds a rule body's dataflow tree. node
// always yields a flat value.Seq(v1, ..., vk) tuple (even for k==1), one
// slot per name in vars, in first-binding order; this is the "env tuple"
// convention every literal-compiling step below reads and extends.
type ruleCompiler struct {
	env       *runtimeenv.Environment
	foreign   *foreignpred.Registry
	node      ram.Node
	vars      []string
	reduceIDs *int
}

func compileRule(rule backast.Rule, env *runtimeenv.Environment, foreign *foreignpred.Registry, reduceIDs *int) (ram.Update, error) {
	rc := &ruleCompiler{env: env, foreign: foreign, reduceIDs: reduceIDs}
	for _, lit := range rule.Body {
		if err := rc.addLiteral(lit); err != nil {
			return ram.Update{}, err
		}
	}
	if rc.node == nil {
		rc.node = ram.UntaggedVec{Tuples: []value.Tuple{value.Seq()}}
	}

	var finalNode ram.Node
	for i, atom := range rule.Head.Atoms {
		fn := rc.headFn(atom)
		headNode := ram.Project{Source: rc.node, Fn: fn}
		if i == 0 {
			finalNode = headNode
		} else {
			finalNode = ram.Union{Left: finalNode, Right: headNode}
		}
	}
	return ram.Update{Target: rule.Head.Predicate(), Expr: finalNode}, nil
}

func (rc *ruleCompiler) exprEnv(envTuple value.Tuple) *expr.Env {
	vars := make(map[string]value.Tuple, len(rc.vars))
	for i, name := range rc.vars {
		if i < len(envTuple.Elems) {
			vars[name] = envTuple.Elems[i]
		}
	}
	return &expr.Env{Vars: vars, Funcs: rc.env.Functions, Entities: rc.env.Entities}
}

func (rc *ruleCompiler) headFn(atom backast.Atom) ram.TupleFn {
	args := atom.Args
	return func(t value.Tuple) (value.Tuple, bool) {
		ee := rc.exprEnv(t)
		vals := make([]value.Tuple, len(args))
		for i, a := range args {
			v, ok := expr.Eval(a, ee)
			if !ok {
				return value.Tuple{}, false
			}
			vals[i] = v
		}
		if len(vals) == 1 {
			return vals[0], true
		}
		return value.Seq(vals...), true
	}
}

func (rc *ruleCompiler) addLiteral(lit backast.Literal) error {
	switch n := lit.(type) {
	case backast.AtomLiteral:
		rc.addAtom(n.Atom)
	case backast.NegAtomLiteral:
		rc.addNegAtom(n.Atom)
	case backast.AssignLiteral:
		rc.addAssign(n)
	case backast.ConstraintLiteral:
		rc.addConstraint(n)
	case backast.ReduceLiteral:
		rc.addReduce(n.Reduce)
	}
	return nil
}

// flattenArity splits a relation's raw stored tuple into its n positional
// slots: Scalar tuples (arity 1) become a one-element slice, Seq tuples
// (arity>1) are used as-is (spec §3's Tuple shape convention).
func flattenArity(t value.Tuple, n int) []value.Tuple {
	if n <= 1 {
		return []value.Tuple{t}
	}
	if t.IsScalar() {
		return []value.Tuple{t}
	}
	return t.Elems
}

// bindAtomFn builds the TupleFn that unifies one atom's raw fact tuple
// against the rule's current env: fresh variables (first occurrence
// anywhere in the rule so far, including earlier positions of this same
// atom) are bound; repeated variables and constant/compound argument
// expressions are checked for equality and fail the match (ok=false) on
// mismatch (spec §4.1 "pure atom" / §3 atom unification).
func bindAtomFn(atom backast.Atom, priorVars []string, env *runtimeenv.Environment) (func(raw, prior value.Tuple) (value.Tuple, bool), []string) {
	priorIndex := make(map[string]int, len(priorVars))
	for i, n := range priorVars {
		priorIndex[n] = i
	}

	type slot struct {
		expr      expr.Expression
		freshName string // non-empty iff this position binds a brand new variable
	}
	localIndex := make(map[string]int) // name -> position among newly-bound vars
	var newVars []string
	slots := make([]slot, len(atom.Args))
	for i, a := range atom.Args {
		if v, ok := a.(expr.Variable); ok {
			if _, already := priorIndex[v.Name]; already {
				slots[i] = slot{expr: a}
				continue
			}
			if _, already := localIndex[v.Name]; already {
				slots[i] = slot{expr: a}
				continue
			}
			localIndex[v.Name] = len(newVars)
			newVars = append(newVars, v.Name)
			slots[i] = slot{freshName: v.Name}
			continue
		}
		slots[i] = slot{expr: a}
	}

	n := len(atom.Args)
	fn := func(raw, prior value.Tuple) (value.Tuple, bool) {
		rawElems := flattenArity(raw, n)
		local := make(map[string]value.Tuple, len(newVars))
		for i, s := range slots {
			rv := rawElems[i]
			if s.freshName != "" {
				local[s.freshName] = rv
				continue
			}
			ee := &expr.Env{Vars: mergedVars(priorVars, prior, local), Funcs: env.Functions, Entities: env.Entities}
			want, ok := expr.Eval(s.expr, ee)
			if !ok || !value.TupleEqual(want, rv) {
				return value.Tuple{}, false
			}
		}
		out := make([]value.Tuple, 0, len(prior.Elems)+len(newVars))
		out = append(out, prior.Elems...)
		for _, name := range newVars {
			out = append(out, local[name])
		}
		return value.Seq(out...), true
	}
	return fn, newVars
}

func mergedVars(priorVars []string, prior value.Tuple, local map[string]value.Tuple) map[string]value.Tuple {
	out := make(map[string]value.Tuple, len(priorVars)+len(local))
	for i, name := range priorVars {
		if i < len(prior.Elems) {
			out[name] = prior.Elems[i]
		}
	}
	for k, v := range local {
		out[k] = v
	}
	return out
}

func (rc *ruleCompiler) addAtom(atom backast.Atom) {
	if rc.foreign != nil {
		if pred, ok := rc.foreign.Get(atom.Predicate); ok {
			rc.addForeignAtom(atom, pred)
			return
		}
	}
	bindFn, newVars := bindAtomFn(atom, rc.vars, rc.env)
	if rc.node == nil {
		rc.node = ram.Project{
			Source: ram.RelationRef{Name: atom.Predicate},
			Fn: func(raw value.Tuple) (value.Tuple, bool) {
				return bindFn(raw, value.Seq())
			},
		}
	} else {
		prevNode := rc.node
		rc.node = ram.Project{
			Source: ram.Product{Left: prevNode, Right: ram.RelationRef{Name: atom.Predicate}},
			Fn: func(t value.Tuple) (value.Tuple, bool) {
				prior := t.Elems[0]
				raw := t.Elems[1]
				return bindFn(raw, prior)
			},
		}
	}
	rc.vars = append(rc.vars, newVars...)
}

// addForeignAtom compiles a foreign-predicate atom (spec §4.8): the
// predicate's first NumBounded argument expressions are evaluated against
// the current env to form BoundArgs, and the remaining Arity-NumBounded
// positions are free and must be Variables, freshly bound from each
// result row's Args in first-occurrence order. A predicate with no free
// positions becomes a ForeignPredicateConstraint (a pure filter, e.g.
// string_contains/2); one with free positions becomes a
// ForeignPredicateJoin whose output rows extend the env (e.g. soft_eq/3's
// free Bool flag).
func (rc *ruleCompiler) addForeignAtom(atom backast.Atom, pred foreignpred.Predicate) {
	nb := pred.NumBounded()
	boundExprs := atom.Args[:nb]
	freeArgs := atom.Args[nb:]

	vars := append([]string(nil), rc.vars...)
	envRef := rc.env
	boundFn := func(t value.Tuple) []value.Value {
		ee := &expr.Env{Vars: flatVarsMap(vars, t), Funcs: envRef.Functions, Entities: envRef.Entities}
		out := make([]value.Value, len(boundExprs))
		for i, e := range boundExprs {
			v, ok := expr.Eval(e, ee)
			if !ok {
				return nil
			}
			out[i] = v.Scalar
		}
		return out
	}

	source := rc.node
	if source == nil {
		source = ram.UntaggedVec{Tuples: []value.Tuple{value.Seq()}}
	}

	if len(freeArgs) == 0 {
		rc.node = ram.ForeignPredicateConstraint{Source: source, Predicate: pred.Name(), BoundArgs: boundFn}
		return
	}

	freeNames := make([]string, len(freeArgs))
	for i, a := range freeArgs {
		if v, ok := a.(expr.Variable); ok {
			freeNames[i] = v.Name
		}
	}

	n := len(freeArgs)
	rc.node = ram.Project{
		Source: ram.ForeignPredicateJoin{Source: source, Predicate: pred.Name(), BoundArgs: boundFn},
		Fn: func(t value.Tuple) (value.Tuple, bool) {
			prior := t.Elems[0]
			freeVals := flattenArity(t.Elems[1], n)
			out := make([]value.Tuple, 0, len(prior.Elems)+len(freeNames))
			out = append(out, prior.Elems...)
			out = append(out, freeVals...)
			return value.Seq(out...), true
		},
	}
	rc.vars = append(rc.vars, freeNames...)
}

// keyTuple packs argExprs evaluated against a flat env tuple into a single
// comparable tuple using the same scalar-if-one/seq-otherwise convention
// every EDB fact tuple already uses, so the key lines up with a raw fact
// tuple of the same arity read straight off a RelationRef (spec §3's tuple
// shape convention, reused here for Antijoin/Reduce group keys).
func keyTuple(argExprs []expr.Expression, ee *expr.Env) value.Tuple {
	vals := make([]value.Tuple, len(argExprs))
	for i, a := range argExprs {
		v, ok := expr.Eval(a, ee)
		if !ok {
			v = value.Tuple{}
		}
		vals[i] = v
	}
	if len(vals) == 1 {
		return vals[0]
	}
	return value.Seq(vals...)
}

// addNegAtom compiles ¬A via Antijoin against A's (always already-frozen,
// per spec §4.1's stratification requirement) relation: the key is A's
// argument expressions evaluated against the current env (Datalog safety
// requires they reference only already-bound variables), reshaped to
// Seq(key, envTuple) on the left and Seq(rawFactTuple, Seq()) on the right
// so both sides' tupleKey() extraction (ram/dynamic's Seq(key,rest)
// convention) compares the same shape (spec §4.7 "Antijoin").
func (rc *ruleCompiler) addNegAtom(atom backast.Atom) {
	vars := append([]string(nil), rc.vars...)
	args := atom.Args
	envRef := rc.env
	left := ram.Project{
		Source: rc.node,
		Fn: func(t value.Tuple) (value.Tuple, bool) {
			ee := &expr.Env{Vars: flatVarsMap(vars, t), Funcs: envRef.Functions, Entities: envRef.Entities}
			return value.Seq(keyTuple(args, ee), t), true
		},
	}
	right := ram.Project{
		Source: ram.RelationRef{Name: atom.Predicate},
		Fn: func(raw value.Tuple) (value.Tuple, bool) {
			return value.Seq(raw, value.Seq()), true
		},
	}
	anti := ram.Antijoin{Left: left, Right: right}
	rc.node = ram.Project{
		Source: anti,
		Fn: func(t value.Tuple) (value.Tuple, bool) {
			return t.Elems[1], true
		},
	}
}

func flatVarsMap(names []string, envTuple value.Tuple) map[string]value.Tuple {
	out := make(map[string]value.Tuple, len(names))
	for i, name := range names {
		if i < len(envTuple.Elems) {
			out[name] = envTuple.Elems[i]
		}
	}
	return out
}

func (rc *ruleCompiler) addAssign(lit backast.AssignLiteral) {
	vars := append([]string(nil), rc.vars...)
	envRef := rc.env
	e := lit.Expr
	rc.node = ram.Project{
		Source: rc.node,
		Fn: func(t value.Tuple) (value.Tuple, bool) {
			ee := &expr.Env{Vars: flatVarsMap(vars, t), Funcs: envRef.Functions, Entities: envRef.Entities}
			result, ok := expr.Eval(e, ee)
			if !ok {
				return value.Tuple{}, false
			}
			out := make([]value.Tuple, 0, len(t.Elems)+1)
			out = append(out, t.Elems...)
			out = append(out, result)
			return value.Seq(out...), true
		},
	}
	rc.vars = append(rc.vars, lit.Left.Name)
}

func (rc *ruleCompiler) addConstraint(lit backast.ConstraintLiteral) {
	vars := append([]string(nil), rc.vars...)
	envRef := rc.env
	e := lit.Expr
	rc.node = ram.Filter{
		Source: rc.node,
		Fn: func(t value.Tuple) bool {
			ee := &expr.Env{Vars: flatVarsMap(vars, t), Funcs: envRef.Functions, Entities: envRef.Entities}
			result, ok := expr.Eval(e, ee)
			return ok && result.Scalar.Kind == value.KindBool && result.Scalar.B
		},
	}
}

// addReduce compiles a Reduce literal (spec §4.7): the body atom's raw
// relation is projected into Seq(groupKey, value) pairs (the convention
// internal/dynamic's evalReduce documents), the optional group-by atom is
// projected into bare group-key tuples, the ram.Reduce node performs the
// aggregation, and its Seq(groupKey, resultValue) output is unpacked into
// the outer env by binding GroupByVars and LeftVars as newly-introduced
// variables (documented simplification: a GroupByVar that happens to
// already be bound earlier in the same rule is not unified against its
// prior value — none of this engine's own rules or the spec's worked
// examples introduce a reduce literal after its group variable is already
// bound elsewhere in the body).
func (rc *ruleCompiler) addReduce(red backast.Reduce) {
	bodyNode := reduceSourceNode(red.Body, red.GroupByVars, red.ArgVars, red.InputVars, red.Aggregator, rc.env)

	var groupByNode ram.Node
	if red.GroupByKind == backast.GroupJoin && red.GroupByAtom != nil {
		groupByNode = reduceGroupKeyNode(*red.GroupByAtom, red.GroupByVars, rc.env)
	}

	id := *rc.reduceIDs
	*rc.reduceIDs++
	reduceNode := ram.Reduce{
		ID:          id,
		Aggregator:  red.Aggregator,
		PosParams:   red.PosParams,
		NamedParams: red.NamedParams,
		Bang:        red.Bang,
		Body:        bodyNode,
		GroupByKind: ramGroupKind(red.GroupByKind),
		GroupBy:     groupByNode,
	}

	groupVars := varNames(red.GroupByVars)
	resultVars := varNames(red.LeftVars)
	unpack := func(result value.Tuple) (value.Tuple, bool) {
		groupKey := tupleRestSeq(result, 0)
		resultValue := tupleRestSeq(result, 1)
		out := make([]value.Tuple, 0, len(groupVars)+len(resultVars))
		out = append(out, unpackTuple(groupKey, len(groupVars))...)
		out = append(out, unpackTuple(resultValue, len(resultVars))...)
		return value.Seq(out...), true
	}

	// A reduce literal opening a rule body has no earlier bindings to carry
	// forward, so project the Reduce node directly instead of wrapping it
	// in a Product against a placeholder: a Product's recent/stable
	// fan-out (internal/dynamic's EvalRecent) treats a constant left-hand
	// side as permanently "recent", which would re-seed this reduce's
	// result into its target relation every round instead of once.
	if rc.node == nil {
		rc.node = ram.Project{Source: reduceNode, Fn: unpack}
		rc.vars = append(append(rc.vars, groupVars...), resultVars...)
		return
	}

	prevNode := rc.node
	rc.node = ram.Project{
		Source: ram.Product{Left: prevNode, Right: reduceNode},
		Fn: func(t value.Tuple) (value.Tuple, bool) {
			prior := t.Elems[0]
			result := t.Elems[1] // Seq(groupKey, resultValue)
			tail, ok := unpack(result)
			if !ok {
				return value.Tuple{}, false
			}
			out := make([]value.Tuple, 0, len(prior.Elems)+len(tail.Elems))
			out = append(out, prior.Elems...)
			out = append(out, tail.Elems...)
			return value.Seq(out...), true
		},
	}
	rc.vars = append(append(rc.vars, groupVars...), resultVars...)
}

func varNames(vars []backast.Var) []string {
	out := make([]string, len(vars))
	for i, v := range vars {
		out[i] = v.Name
	}
	return out
}

func tupleRestSeq(t value.Tuple, idx int) value.Tuple {
	if t.IsScalar() || idx >= len(t.Elems) {
		return value.Tuple{}
	}
	return t.Elems[idx]
}

// unpackTuple splits a value built with the scalar-if-one/seq-otherwise
// convention back into n positional slots.
func unpackTuple(t value.Tuple, n int) []value.Tuple {
	if n == 0 {
		return nil
	}
	if n == 1 {
		return []value.Tuple{t}
	}
	if t.IsScalar() {
		out := make([]value.Tuple, n)
		for i := range out {
			out[i] = t
		}
		return out
	}
	return t.Elems
}

func ramGroupKind(k backast.GroupByKind) ram.GroupByKind {
	switch k {
	case backast.GroupImplicit:
		return ram.GroupImplicit
	case backast.GroupJoin:
		return ram.GroupJoin
	default:
		return ram.GroupNone
	}
}

// reduceSourceNode projects a reduce body atom's raw relation tuple into
// Seq(groupKey, value): groupKey packs groupByVars, value packs either
// inputVars (most aggregators) or Seq(sortKey, argTuple) for argmin/argmax
// (spec §4.7's argmin/argmax rows, matching internal/dynamic/reduce.go's
// tupleKey/tupleRest read of the body collection).
func reduceSourceNode(body backast.Atom, groupByVars, argVars, inputVars []backast.Var, aggregator string, env *runtimeenv.Environment) ram.Node {
	bindFn, newVars := bindAtomFn(body, nil, env)
	groupExprs := varExprs(groupByVars)
	inputExprs := varExprs(inputVars)
	argExprs := varExprs(argVars)
	isArgAgg := aggregator == "argmin" || aggregator == "argmax"

	return ram.Project{
		Source: ram.RelationRef{Name: body.Predicate},
		Fn: func(raw value.Tuple) (value.Tuple, bool) {
			bound, ok := bindFn(raw, value.Seq())
			if !ok {
				return value.Tuple{}, false
			}
			ee := &expr.Env{Vars: flatVarsMap(newVars, bound), Funcs: env.Functions, Entities: env.Entities}
			key := keyTuple(groupExprs, ee)

			var val value.Tuple
			switch {
			case isArgAgg:
				sortKey := keyTupleOrDummy(inputExprs, ee)
				argTuple := keyTupleOrEmpty(argExprs, ee)
				val = value.Seq(sortKey, argTuple)
			case len(inputExprs) == 0:
				val = value.Scalar(value.Bool(true))
			default:
				val = keyTuple(inputExprs, ee)
			}
			return value.Seq(key, val), true
		},
	}
}

func keyTupleOrDummy(exprs []expr.Expression, ee *expr.Env) value.Tuple {
	if len(exprs) == 0 {
		return value.Scalar(value.I64(0))
	}
	return keyTuple(exprs, ee)
}

func keyTupleOrEmpty(exprs []expr.Expression, ee *expr.Env) value.Tuple {
	if len(exprs) == 0 {
		return value.Seq()
	}
	return keyTuple(exprs, ee)
}

func reduceGroupKeyNode(atom backast.Atom, groupByVars []backast.Var, env *runtimeenv.Environment) ram.Node {
	bindFn, newVars := bindAtomFn(atom, nil, env)
	groupExprs := varExprs(groupByVars)
	return ram.Project{
		Source: ram.RelationRef{Name: atom.Predicate},
		Fn: func(raw value.Tuple) (value.Tuple, bool) {
			bound, ok := bindFn(raw, value.Seq())
			if !ok {
				return value.Tuple{}, false
			}
			ee := &expr.Env{Vars: flatVarsMap(newVars, bound), Funcs: env.Functions, Entities: env.Entities}
			return keyTuple(groupExprs, ee), true
		},
	}
}

func varExprs(vars []backast.Var) []expr.Expression {
	out := make([]expr.Expression, len(vars))
	for i, v := range vars {
		out[i] = expr.Variable{Name: v.Name}
	}
	return out
}
