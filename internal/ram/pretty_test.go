package ram

import (
	"strings"
	"testing"

	"datalogengine/internal/value"
)

func TestPrettyStableShape(t *testing.T) {
	p := &Program{
		Strata: []*Stratum{
			{
				Relations: map[string]*Relation{
					"edge": {Name: "edge", Type: value.Nested(value.Leaf(value.KindI64), value.Leaf(value.KindI64))},
					"path": {Name: "path", Type: value.Nested(value.Leaf(value.KindI64), value.Leaf(value.KindI64))},
				},
				Updates: []Update{
					{Target: "path", Expr: Union{Left: RelationRef{Name: "edge"}, Right: Join{
						Left:  RelationRef{Name: "path"},
						Right: RelationRef{Name: "edge"},
					}}},
				},
				Recursive: true,
			},
		},
	}

	out := p.Pretty()
	for _, want := range []string{"stratum 0 (recursive=true)", "relation edge:", "relation path:", "update path <- union(edge, join(path, edge))"} {
		if !strings.Contains(out, want) {
			t.Errorf("pretty output missing %q, got:\n%s", want, out)
		}
	}
}
