package mcp

import (
	"fmt"

	"datalogengine/internal/backast"
	"datalogengine/internal/expr"
	"datalogengine/internal/frontast"
	"datalogengine/internal/value"
)

// jsonRelation declares one predicate: its name and the value.Kind of each
// argument column (spec §3's Relation). file/goal/demand/magic_set
// attributes round-trip as inert strings, matching backast.Attribute's own
// "inert metadata" posture.
type jsonRelation struct {
	Name       string   `json:"name"`
	ArgKinds   []string `json:"arg_kinds"`
	Attributes []string `json:"attributes,omitempty"`
}

func decodeRelation(jr jsonRelation) (backast.Relation, error) {
	argTypes := make([]value.TupleType, len(jr.ArgKinds))
	for i, k := range jr.ArgKinds {
		kind, err := decodeKind(k)
		if err != nil {
			return backast.Relation{}, fmt.Errorf("mcp: relation %s arg %d: %w", jr.Name, i, err)
		}
		argTypes[i] = value.Leaf(kind)
	}
	attrs := make([]backast.Attribute, len(jr.Attributes))
	for i, a := range jr.Attributes {
		attrs[i] = backast.Attribute{Name: a}
	}
	return backast.Relation{Name: jr.Name, ArgTypes: argTypes, Attributes: attrs}, nil
}

// jsonFact is a plain compiled-in extensional fact (spec §3's Fact):
// always None-tagged, matching backcompiler's own program-fact lowering.
// A probabilistically-tagged standalone fact has no compile-time
// representation (spec §3's DisjunctiveFact always groups an exclusion
// set); use the assert-facts tool's jsonInputTag for that case instead.
type jsonFact struct {
	Predicate string      `json:"predicate"`
	Args      []jsonValue `json:"args"`
}

type jsonWeightedFact struct {
	Prob float64     `json:"prob"`
	Args []jsonValue `json:"args"`
}

type jsonDisjunctiveFact struct {
	Predicate string             `json:"predicate"`
	Choices   []jsonWeightedFact `json:"choices"`
}

func decodeFactArgs(args []jsonValue) ([]value.Value, error) {
	out := make([]value.Value, len(args))
	for i, a := range args {
		v, err := decodeValue(a)
		if err != nil {
			return nil, fmt.Errorf("mcp: fact arg %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// jsonAtom is a body or head atom reference: a predicate applied to terms.
type jsonAtom struct {
	Predicate string     `json:"predicate"`
	Args      []jsonTerm `json:"args"`
}

func decodeAtom(ja jsonAtom) (backast.Atom, error) {
	args := make([]expr.Expression, len(ja.Args))
	for i, t := range ja.Args {
		e, err := decodeTerm(t)
		if err != nil {
			return backast.Atom{}, fmt.Errorf("mcp: atom %s arg %d: %w", ja.Predicate, i, err)
		}
		args[i] = e
	}
	return backast.Atom{Predicate: ja.Predicate, Args: args}, nil
}

// jsonConstraint is a binary comparison/arithmetic literal: left OP right,
// where op is one of the spec §4.3 binary operator names.
type jsonConstraint struct {
	Op    string   `json:"op"`
	Left  jsonTerm `json:"left"`
	Right jsonTerm `json:"right"`
}

var binOpNames = map[string]expr.BinOp{
	"add": expr.Add, "sub": expr.Sub, "mul": expr.Mul, "div": expr.Div, "mod": expr.Mod,
	"and": expr.And, "or": expr.Or,
	"eq": expr.Eq, "neq": expr.Neq, "lt": expr.Lt, "leq": expr.Leq, "gt": expr.Gt, "geq": expr.Geq,
}

func decodeConstraint(jc jsonConstraint) (expr.Expression, error) {
	op, ok := binOpNames[jc.Op]
	if !ok {
		return nil, fmt.Errorf("mcp: unsupported constraint operator %q", jc.Op)
	}
	left, err := decodeTerm(jc.Left)
	if err != nil {
		return nil, err
	}
	right, err := decodeTerm(jc.Right)
	if err != nil {
		return nil, err
	}
	return expr.Binary{Op: op, Left: left, Right: right}, nil
}

// jsonReduce describes a Reduce body literal (spec §3/§4.7): an aggregator
// name, the variables it binds on the left, the atom it reduces over, and
// an optional explicit group-by atom (GroupJoin) — omitting GroupByAtom
// with a non-empty GroupByVars selects GroupImplicit, and omitting both
// selects GroupNone, mirroring backast.GroupByKind's three variants.
type jsonReduce struct {
	Aggregator  string    `json:"aggregator"`
	PosParams   []float64 `json:"pos_params,omitempty"`
	LeftVars    []string  `json:"left_vars"`
	Body        jsonAtom  `json:"body"`
	GroupByVars []string  `json:"group_by_vars,omitempty"`
	GroupByAtom *jsonAtom `json:"group_by_atom,omitempty"`
	Bang        bool      `json:"bang,omitempty"`
}

func varsOf(names []string) []backast.Var {
	out := make([]backast.Var, len(names))
	for i, n := range names {
		out[i] = backast.Var{Name: n, Type: value.KindI64}
	}
	return out
}

func decodeReduce(jr jsonReduce) (backast.Reduce, error) {
	body, err := decodeAtom(jr.Body)
	if err != nil {
		return backast.Reduce{}, err
	}
	red := backast.Reduce{
		Aggregator:  jr.Aggregator,
		Bang:        jr.Bang,
		LeftVars:    varsOf(jr.LeftVars),
		InputVars:   varsOf(bodyVarNames(body)),
		GroupByVars: varsOf(jr.GroupByVars),
		Body:        body,
	}
	for _, p := range jr.PosParams {
		red.PosParams = append(red.PosParams, value.I64(int64(p)))
	}
	switch {
	case jr.GroupByAtom != nil:
		ga, err := decodeAtom(*jr.GroupByAtom)
		if err != nil {
			return backast.Reduce{}, err
		}
		red.GroupByKind = backast.GroupJoin
		red.GroupByAtom = &ga
	case len(jr.GroupByVars) > 0:
		red.GroupByKind = backast.GroupImplicit
	default:
		red.GroupByKind = backast.GroupNone
	}
	return red, nil
}

func bodyVarNames(a backast.Atom) []string {
	var out []string
	for _, arg := range a.Args {
		if v, ok := arg.(expr.Variable); ok {
			out = append(out, v.Name)
		}
	}
	return out
}

// jsonLiteral is a rule body literal; exactly one field is set, discriminated
// the same way backast.Literal's five concrete forms are (spec §3).
type jsonLiteral struct {
	Atom       *jsonAtom       `json:"atom,omitempty"`
	NegAtom    *jsonAtom       `json:"neg_atom,omitempty"`
	Constraint *jsonConstraint `json:"constraint,omitempty"`
	Reduce     *jsonReduce     `json:"reduce,omitempty"`
}

func decodeLiteral(jl jsonLiteral) (frontast.Literal, error) {
	switch {
	case jl.Atom != nil:
		a, err := decodeAtom(*jl.Atom)
		if err != nil {
			return nil, err
		}
		return frontast.AtomLiteral{Atom: a}, nil
	case jl.NegAtom != nil:
		a, err := decodeAtom(*jl.NegAtom)
		if err != nil {
			return nil, err
		}
		return frontast.NegAtomLiteral{Atom: a}, nil
	case jl.Constraint != nil:
		e, err := decodeConstraint(*jl.Constraint)
		if err != nil {
			return nil, err
		}
		return frontast.ConstraintLiteral{Expr: e}, nil
	case jl.Reduce != nil:
		r, err := decodeReduce(*jl.Reduce)
		if err != nil {
			return nil, err
		}
		return frontast.ReduceLiteral{Reduce: r}, nil
	default:
		return nil, fmt.Errorf("mcp: rule literal has no recognized form")
	}
}

// jsonRule is head :- body, plus the spec §4.1 goal attribute.
type jsonRule struct {
	Head []jsonAtom    `json:"head"`
	Body []jsonLiteral `json:"body"`
	Goal bool          `json:"goal,omitempty"`
}

func decodeRule(jr jsonRule) (frontast.Rule, error) {
	head := make([]backast.Atom, len(jr.Head))
	for i, h := range jr.Head {
		a, err := decodeAtom(h)
		if err != nil {
			return frontast.Rule{}, err
		}
		head[i] = a
	}
	body := make([]frontast.Literal, len(jr.Body))
	for i, l := range jr.Body {
		lit, err := decodeLiteral(l)
		if err != nil {
			return frontast.Rule{}, fmt.Errorf("mcp: rule body literal %d: %w", i, err)
		}
		body[i] = lit
	}
	return frontast.Rule{Head: frontast.Head{Atoms: head}, Body: body, Goal: jr.Goal}, nil
}

// jsonProgram is the full load-program tool payload: every relation this
// program declares, its rules, and its extensional facts (spec §3's
// Program, built through frontast's typed API since a surface parser is
// out of scope). ADT variants and Forall literals are not exposed over
// this wire format — a host that needs them builds a frontast.Program
// directly in Go and calls internal/frontir/internal/backcompiler itself;
// this is a limit of the MCP surface, not an engine capability gap.
type jsonProgram struct {
	Relations        []jsonRelation        `json:"relations"`
	Rules            []jsonRule            `json:"rules"`
	Facts            []jsonFact            `json:"facts,omitempty"`
	DisjunctiveFacts []jsonDisjunctiveFact `json:"disjunctive_facts,omitempty"`
	Goals            []string              `json:"goals,omitempty"`
}

// decodeProgram builds a frontast.Program from a jsonProgram payload: every
// declared relation, rule, and compiled-in extensional fact.
func decodeProgram(jp jsonProgram) (*frontast.Program, error) {
	prog := frontast.NewProgram()
	for _, jr := range jp.Relations {
		r, err := decodeRelation(jr)
		if err != nil {
			return nil, err
		}
		prog.Relation(r)
	}
	for _, jr := range jp.Rules {
		r, err := decodeRule(jr)
		if err != nil {
			return nil, err
		}
		prog.Rule(r)
	}
	for _, jf := range jp.Facts {
		args, err := decodeFactArgs(jf.Args)
		if err != nil {
			return nil, err
		}
		prog.Fact(backast.Fact{Predicate: jf.Predicate, Args: args})
	}
	for _, jd := range jp.DisjunctiveFacts {
		choices := make([]backast.WeightedFact, len(jd.Choices))
		for i, c := range jd.Choices {
			args, err := decodeFactArgs(c.Args)
			if err != nil {
				return nil, err
			}
			choices[i] = backast.WeightedFact{Prob: c.Prob, Args: args}
		}
		prog.DisjunctiveFact(backast.DisjunctiveFact{Predicate: jd.Predicate, Choices: choices})
	}
	return prog, nil
}
