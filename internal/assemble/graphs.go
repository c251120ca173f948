package assemble

import (
	"github.com/leapstack-labs/tablook/internal/dag"
	"github.com/leapstack-labs/tablook/pkg/calc"
	"github.com/leapstack-labs/tablook/pkg/core"
)

// JoinGraph is the table graph of one datasource: tables are nodes and
// every join between two known tables is an edge from left to right.
type JoinGraph struct {
	graph  *dag.Graph
	anchor string
}

// NewJoinGraph builds the join graph of ds. Joins with an unresolved
// endpoint contribute no edge.
func NewJoinGraph(ds *core.Datasource) *JoinGraph {
	jg := &JoinGraph{graph: dag.NewGraph()}
	for _, t := range ds.Tables {
		jg.graph.AddNode(t.ID, nil)
		if t.IsPrimary && jg.anchor == "" {
			jg.anchor = t.ID
		}
	}
	for _, j := range ds.Joins {
		if jg.graph.HasNode(j.LeftTableID) && jg.graph.HasNode(j.RightTableID) {
			_ = jg.graph.AddEdge(j.LeftTableID, j.RightTableID)
		}
	}
	return jg
}

// Anchor is the primary table, or "" when the datasource has none.
func (jg *JoinGraph) Anchor() string { return jg.anchor }

// Unreachable returns the tables no chain of joins connects to the primary
// table, in table order. Without a primary table nothing is reported.
func (jg *JoinGraph) Unreachable() []string {
	if jg.anchor == "" {
		return nil
	}
	reached := make(map[string]bool)
	for _, id := range jg.graph.Connected(jg.anchor) {
		reached[id] = true
	}
	var out []string
	for _, id := range jg.graph.Nodes() {
		if !reached[id] {
			out = append(out, id)
		}
	}
	return out
}

// Cycles returns each group of tables whose joins close a loop, ignoring
// join direction. A table joined to itself is a loop of one.
func (jg *JoinGraph) Cycles() [][]string {
	var out [][]string
	for _, comp := range jg.graph.Components() {
		pairs := make(map[[2]string]bool)
		selfLoop := false
		for _, id := range comp {
			for _, child := range jg.graph.GetChildren(id) {
				if child == id {
					selfLoop = true
					continue
				}
				key := [2]string{id, child}
				if child < id {
					key = [2]string{child, id}
				}
				pairs[key] = true
			}
		}
		if selfLoop || len(pairs) >= len(comp) {
			out = append(out, comp)
		}
	}
	return out
}

// CalculationGraph returns the dependency graph of the calculations of one
// datasource. An edge a -> b means calculation b references the field
// backed by calculation a.
func CalculationGraph(m *core.SemanticModel, datasourceID string) *dag.Graph {
	mi := newModelIndex(m)
	return calculationGraph(m, mi, mi.byID[datasourceID])
}

func calculationGraph(m *core.SemanticModel, mi *modelIndex, ix *dsIndex) *dag.Graph {
	g := dag.NewGraph()
	if ix == nil {
		return g
	}
	var owned []*core.Calculation
	for i := range m.Calculations {
		c := &m.Calculations[i]
		if c.DatasourceID == ix.ds.ID && !g.HasNode(c.ID) {
			g.AddNode(c.ID, c)
			owned = append(owned, c)
		}
	}
	for _, c := range owned {
		for _, ref := range calc.Analyze(c.Expression, calc.Options{}).Refs {
			f, ok := mi.resolveRef(ix, ref)
			if !ok || f.Source != core.SourceCalculation || f.CalculationID == nil {
				continue
			}
			if g.HasNode(*f.CalculationID) {
				_ = g.AddEdge(*f.CalculationID, c.ID)
			}
		}
	}
	return g
}
