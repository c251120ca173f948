package extract

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/tablook/internal/rawdoc"
	"github.com/leapstack-labs/tablook/pkg/core"
)

// missingEndpoint stands in for a join side that names no table at all.
var missingEndpoint = core.UnresolvedRef("(missing)")

// infixOps are expression operators rendered between their operands.
var infixOps = map[string]bool{
	"=": true, "==": true, "!=": true, "<>": true,
	"<": true, ">": true, "<=": true, ">=": true,
	"+": true, "-": true, "*": true, "/": true,
	"and": true, "or": true,
}

// DatasourceJoins holds the joins found in one datasource.
type DatasourceJoins struct {
	DatasourceID string
	Joins        []core.Join
}

// Joins extracts join relations (innermost first) and object-graph
// relationships for every datasource, in document order.
func Joins(root *rawdoc.Node) []DatasourceJoins {
	nodes := datasourceNodes(root)
	out := make([]DatasourceJoins, 0, len(nodes))
	for i, ds := range nodes {
		out = append(out, DatasourceJoins{
			DatasourceID: datasourceID(ds, i),
			Joins:        joinsFor(ds),
		})
	}
	return out
}

func joinsFor(ds *rawdoc.Node) []core.Join {
	joins := []core.Join{}
	nextID := func() string { return fmt.Sprintf("join_%d", len(joins)+1) }

	var walk func(rel *rawdoc.Node)
	walk = func(rel *rawdoc.Node) {
		if rel == nil {
			return
		}
		for _, c := range relationChildren(rel) {
			walk(c)
		}
		if rel.AttrOr("type", "") == relationJoin {
			joins = append(joins, joinFromRelation(rel, nextID()))
		}
	}
	walk(topRelation(ds))

	objects := graphObjects(ds)
	for _, obj := range objects {
		walk(obj.relation)
	}

	objectIDs := objectTableIDs(objects)
	for _, rs := range childrenByTag(childByTag(objectGraph(ds), "relationships"), "relationship") {
		joins = append(joins, joinFromRelationship(rs, objectIDs, nextID()))
	}
	return joins
}

func joinFromRelation(rel *rawdoc.Node, id string) core.Join {
	expr := childByTag(childByTag(rel, "clause"), "expression")
	j := core.Join{
		ID:        id,
		JoinType:  core.ParseJoinType(rel.AttrOr("join", "")),
		Condition: renderExpression(expr),
	}

	left, right := endpointsFromCondition(expr)
	children := relationChildren(rel)
	if left == "" && len(children) > 0 {
		if leaf := leftmostLeaf(children[0]); leaf != nil {
			left = tableID(leaf, 0)
		}
	}
	if right == "" && len(children) > 1 {
		if leaf := leftmostLeaf(children[1]); leaf != nil {
			right = tableID(leaf, 1)
		}
	}
	j.LeftTableID, j.RightTableID = orMissing(left), orMissing(right)
	j.NeedsManualReview = !isSimpleEquality(expr) || left == "" || right == ""
	return j
}

func joinFromRelationship(rs *rawdoc.Node, objectIDs map[string]string, id string) core.Join {
	expr := childByTag(rs, "expression")
	endpoint := func(tag string) string {
		objID := childByTag(rs, tag).AttrOr("object-id", "")
		if objID == "" {
			return ""
		}
		if tid, ok := objectIDs[objID]; ok {
			return tid
		}
		return objID
	}
	left, right := endpoint("first-end-point"), endpoint("second-end-point")
	return core.Join{
		ID:                id,
		LeftTableID:       orMissing(left),
		RightTableID:      orMissing(right),
		JoinType:          core.JoinUnknown,
		Condition:         renderExpression(expr),
		NeedsManualReview: !isSimpleEquality(expr) || left == "" || right == "",
	}
}

func orMissing(id string) string {
	if id == "" {
		return missingEndpoint
	}
	return id
}

// endpointsFromCondition returns the first two distinct table qualifiers
// of the field references in a condition.
func endpointsFromCondition(expr *rawdoc.Node) (string, string) {
	var quals []string
	var collect func(n *rawdoc.Node)
	collect = func(n *rawdoc.Node) {
		if n == nil {
			return
		}
		sub := childrenByTag(n, "expression")
		if len(sub) == 0 {
			if parts := splitQualified(n.AttrOr("op", "")); len(parts) >= 2 && isFieldRef(n.AttrOr("op", "")) {
				q := parts[len(parts)-2]
				for _, seen := range quals {
					if seen == q {
						return
					}
				}
				quals = append(quals, q)
			}
			return
		}
		for _, c := range sub {
			collect(c)
		}
	}
	collect(expr)

	var left, right string
	if len(quals) > 0 {
		left = quals[0]
	}
	if len(quals) > 1 {
		right = quals[1]
	}
	return left, right
}

func isFieldRef(op string) bool {
	return strings.HasPrefix(strings.TrimSpace(op), "[")
}

// isSimpleEquality reports whether expr is exactly `field = field`.
func isSimpleEquality(expr *rawdoc.Node) bool {
	if expr == nil {
		return false
	}
	op := expr.AttrOr("op", "")
	if op != "=" && op != "==" {
		return false
	}
	operands := childrenByTag(expr, "expression")
	if len(operands) != 2 {
		return false
	}
	for _, o := range operands {
		if len(childrenByTag(o, "expression")) > 0 || !isFieldRef(o.AttrOr("op", "")) {
			return false
		}
	}
	return true
}

// renderExpression rebuilds condition text from an expression tree.
func renderExpression(expr *rawdoc.Node) string {
	if expr == nil {
		return ""
	}
	op := expr.AttrOr("op", "")
	operands := childrenByTag(expr, "expression")
	if len(operands) == 0 {
		return op
	}

	parts := make([]string, 0, len(operands))
	for _, o := range operands {
		s := renderExpression(o)
		if len(childrenByTag(o, "expression")) > 1 && infixOps[strings.ToLower(o.AttrOr("op", ""))] {
			s = "(" + s + ")"
		}
		parts = append(parts, s)
	}

	lower := strings.ToLower(op)
	if infixOps[lower] && len(parts) > 1 {
		if lower == "and" || lower == "or" {
			op = strings.ToUpper(op)
		}
		return strings.Join(parts, " "+op+" ")
	}
	return op + "(" + strings.Join(parts, ", ") + ")"
}
