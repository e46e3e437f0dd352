package dynamic

import (
	"datalogengine/internal/ram"
	"datalogengine/internal/value"
)

// evalForeignGround materializes a predicate's free outputs with no input
// stream (spec §4.7/§4.8 "Ground: all arguments free; evaluate once,
// materialize the set").
func (c *EvalContext) evalForeignGround(n ram.ForeignPredicateGround) Collection {
	pred, ok := c.Foreign.Get(n.Predicate)
	if !ok {
		return nil
	}
	rows := pred.Evaluate(n.Args)
	var out []Element
	for _, row := range rows {
		tag := c.Prov.TaggingOptional(row.Tag)
		out = append(out, Element{Tuple: valuesToTuple(row.Args), Tag: tag})
	}
	return NewCollection(out, c.Prov)
}

// evalForeignConstraint attaches a predicate call to a stream with filter
// semantics: every argument is bound from the source tuple, and the
// source tuple survives iff the predicate accepts it (spec §4.8).
func (c *EvalContext) evalForeignConstraint(src Collection, n ram.ForeignPredicateConstraint) Collection {
	pred, ok := c.Foreign.Get(n.Predicate)
	if !ok {
		return nil
	}
	out := make([]Element, 0, len(src))
	for _, e := range src {
		bound := n.BoundArgs(e.Tuple)
		rows := pred.Evaluate(bound)
		if len(rows) == 0 {
			continue
		}
		tag := e.Tag
		for _, row := range rows {
			t := c.Prov.TaggingOptional(row.Tag)
			tag = c.Prov.Mult(tag, t)
		}
		out = append(out, Element{Tuple: e.Tuple, Tag: tag})
	}
	return NewCollection(out, c.Prov)
}

// evalForeignJoin joins Source with the lazy sequence a predicate call
// produces: the bound prefix comes from Source's tuple, and each row of
// free outputs is appended to form the output tuple (spec §4.8).
func (c *EvalContext) evalForeignJoin(src Collection, n ram.ForeignPredicateJoin) Collection {
	pred, ok := c.Foreign.Get(n.Predicate)
	if !ok {
		return nil
	}
	var out []Element
	for _, e := range src {
		bound := n.BoundArgs(e.Tuple)
		rows := pred.Evaluate(bound)
		for _, row := range rows {
			tag := c.Prov.Mult(e.Tag, c.Prov.TaggingOptional(row.Tag))
			out = append(out, Element{Tuple: value.Seq(e.Tuple, valuesToTuple(row.Args)), Tag: tag})
		}
	}
	return NewCollection(out, c.Prov)
}

// valuesToTuple wraps a predicate's free-output values in the same
// scalar-if-one/seq-otherwise shape every other tuple in this package uses.
func valuesToTuple(vals []value.Value) value.Tuple {
	if len(vals) == 1 {
		return value.Scalar(vals[0])
	}
	elems := make([]value.Tuple, len(vals))
	for i, v := range vals {
		elems[i] = value.Scalar(v)
	}
	return value.Seq(elems...)
}
