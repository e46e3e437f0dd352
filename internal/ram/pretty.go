package ram

import (
	"fmt"
	"sort"
	"strings"
)

// Pretty renders a Program in the stable debug form used by tests
// (spec §4.4, grounded on compiler/ram/pretty.rs's structured writer):
// one block per stratum, relations listed by name in sorted order, then
// updates in declaration order.
func (p *Program) Pretty() string {
	var b strings.Builder
	for i, s := range p.Strata {
		fmt.Fprintf(&b, "stratum %d (recursive=%v) {\n", i, s.Recursive)
		s.pretty(&b)
		b.WriteString("}\n")
	}
	return b.String()
}

func (s *Stratum) pretty(b *strings.Builder) {
	names := make([]string, 0, len(s.Relations))
	for n := range s.Relations {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		r := s.Relations[n]
		fmt.Fprintf(b, "  relation %s: %s (facts=%d)\n", n, r.Type.String(), len(r.Facts))
	}
	for _, u := range s.Updates {
		fmt.Fprintf(b, "  update %s <- %s\n", u.Target, prettyNode(u.Expr))
	}
}

func prettyNode(n Node) string {
	switch v := n.(type) {
	case Unit:
		return "unit"
	case UntaggedVec:
		return fmt.Sprintf("vec(%d)", len(v.Tuples))
	case RelationRef:
		return v.Name
	case Project:
		return fmt.Sprintf("project(%s)", prettyNode(v.Source))
	case Filter:
		return fmt.Sprintf("filter(%s)", prettyNode(v.Source))
	case Find:
		return fmt.Sprintf("find(%s, %s)", prettyNode(v.Source), v.Key)
	case Sorted:
		return fmt.Sprintf("sorted(%s)", prettyNode(v.Source))
	case OverwriteOne:
		return fmt.Sprintf("overwrite_one(%s)", prettyNode(v.Source))
	case Union:
		return fmt.Sprintf("union(%s, %s)", prettyNode(v.Left), prettyNode(v.Right))
	case Join:
		return fmt.Sprintf("join(%s, %s)", prettyNode(v.Left), prettyNode(v.Right))
	case Intersect:
		return fmt.Sprintf("intersect(%s, %s)", prettyNode(v.Left), prettyNode(v.Right))
	case Product:
		return fmt.Sprintf("product(%s, %s)", prettyNode(v.Left), prettyNode(v.Right))
	case Antijoin:
		return fmt.Sprintf("antijoin(%s, %s)", prettyNode(v.Left), prettyNode(v.Right))
	case Difference:
		return fmt.Sprintf("difference(%s, %s)", prettyNode(v.Left), prettyNode(v.Right))
	case Exclusion:
		return fmt.Sprintf("exclusion(%s)", prettyNode(v.Source))
	case JoinIndexedVec:
		return fmt.Sprintf("join_indexed_vec(%s, %d)", prettyNode(v.Left), len(v.Right))
	case Reduce:
		group := "none"
		switch v.GroupByKind {
		case GroupImplicit:
			group = "implicit"
		case GroupJoin:
			group = "join(" + prettyNode(v.GroupBy) + ")"
		}
		return fmt.Sprintf("reduce(%s, bang=%v, group=%s, %s)", v.Aggregator, v.Bang, group, prettyNode(v.Body))
	case ForeignPredicateGround:
		return fmt.Sprintf("foreign_ground(%s)", v.Predicate)
	case ForeignPredicateConstraint:
		return fmt.Sprintf("foreign_constraint(%s, %s)", v.Predicate, prettyNode(v.Source))
	case ForeignPredicateJoin:
		return fmt.Sprintf("foreign_join(%s, %s)", v.Predicate, prettyNode(v.Source))
	}
	return "?"
}
