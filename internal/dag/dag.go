// Package dag provides directed graph operations for workbook dependencies:
// calculations that reference other calculations, and tables linked by joins.
// All traversals visit nodes in insertion order so results are deterministic.
package dag

import (
	"fmt"
	"sort"
)

// Node represents a node in the graph.
type Node struct {
	// ID is the unique identifier (calculation id, table id)
	ID string
	// Data holds arbitrary node data
	Data any
}

// Graph is a directed graph. An edge parent -> child means the child
// depends on the parent.
type Graph struct {
	nodes   map[string]*Node
	order   []string
	edges   map[string][]string // parent -> children (dependents)
	parents map[string][]string // child -> parents (dependencies)
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]*Node),
		edges:   make(map[string][]string),
		parents: make(map[string][]string),
	}
}

// AddNode adds a node to the graph.
func (g *Graph) AddNode(id string, data any) {
	if n, exists := g.nodes[id]; exists {
		n.Data = data
		return
	}
	g.nodes[id] = &Node{ID: id, Data: data}
	g.order = append(g.order, id)
	g.edges[id] = []string{}
	g.parents[id] = []string{}
}

// AddEdge adds a directed edge from parent to child (child depends on parent).
// Self-loops are kept: a node depending on itself is a cycle of length one.
func (g *Graph) AddEdge(parentID, childID string) error {
	if _, exists := g.nodes[parentID]; !exists {
		return fmt.Errorf("parent node %q does not exist", parentID)
	}
	if _, exists := g.nodes[childID]; !exists {
		return fmt.Errorf("child node %q does not exist", childID)
	}

	if !contains(g.edges[parentID], childID) {
		g.edges[parentID] = append(g.edges[parentID], childID)
	}
	if !contains(g.parents[childID], parentID) {
		g.parents[childID] = append(g.parents[childID], parentID)
	}
	return nil
}

// HasNode reports whether id is in the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// GetNode returns a node by ID.
func (g *Graph) GetNode(id string) (*Node, bool) {
	node, exists := g.nodes[id]
	return node, exists
}

// GetParents returns the parents (dependencies) of a node.
func (g *Graph) GetParents(id string) []string {
	return g.parents[id]
}

// GetChildren returns the children (dependents) of a node.
func (g *Graph) GetChildren(id string) []string {
	return g.edges[id]
}

// Nodes returns node ids in insertion order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.order...)
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, children := range g.edges {
		count += len(children)
	}
	return count
}

// HasCycle returns true if the graph contains a cycle, along with the first
// cycle found.
func (g *Graph) HasCycle() (bool, []string) {
	cycles := g.Cycles()
	if len(cycles) == 0 {
		return false, nil
	}
	return true, cycles[0]
}

// Cycles returns every strongly connected component that forms a cycle:
// components of two or more nodes, and single nodes with a self-loop.
// Members of each cycle are listed in insertion order, and cycles are
// ordered by their first member.
func (g *Graph) Cycles() [][]string {
	index := make(map[string]int)
	low := make(map[string]int)
	onStack := make(map[string]bool)
	var stack []string
	var components [][]string
	next := 0

	var connect func(id string)
	connect = func(id string) {
		index[id] = next
		low[id] = next
		next++
		stack = append(stack, id)
		onStack[id] = true

		for _, child := range g.edges[id] {
			if _, seen := index[child]; !seen {
				connect(child)
				low[id] = min(low[id], low[child])
			} else if onStack[child] {
				low[id] = min(low[id], index[child])
			}
		}

		if low[id] != index[id] {
			return
		}
		var comp []string
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[top] = false
			comp = append(comp, top)
			if top == id {
				break
			}
		}
		if len(comp) > 1 || contains(g.edges[id], id) {
			components = append(components, comp)
		}
	}

	for _, id := range g.order {
		if _, seen := index[id]; !seen {
			connect(id)
		}
	}

	position := g.positions()
	for _, comp := range components {
		sort.Slice(comp, func(i, j int) bool { return position[comp[i]] < position[comp[j]] })
	}
	sort.Slice(components, func(i, j int) bool {
		return position[components[i][0]] < position[components[j][0]]
	})
	return components
}

// TopologicalSort returns nodes in topological order (dependencies before dependents).
// Returns an error if the graph contains a cycle.
func (g *Graph) TopologicalSort() ([]*Node, error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("cycle detected: %v", cyclePath)
	}

	visited := make(map[string]bool)
	result := make([]*Node, 0, len(g.nodes))

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, parentID := range g.parents[id] {
			visit(parentID)
		}
		result = append(result, g.nodes[id])
	}
	for _, id := range g.order {
		visit(id)
	}
	return result, nil
}

// Levels groups nodes by dependency depth. Level 0 holds nodes with no
// dependencies; a node sits one level above its deepest dependency.
func (g *Graph) Levels() ([][]string, error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("cycle detected: %v", cyclePath)
	}

	assigned := make(map[string]int)
	var getLevel func(id string) int
	getLevel = func(id string) int {
		if level, ok := assigned[id]; ok {
			return level
		}
		level := 0
		for _, parentID := range g.parents[id] {
			level = max(level, getLevel(parentID)+1)
		}
		assigned[id] = level
		return level
	}

	var levels [][]string
	for _, id := range g.order {
		level := getLevel(id)
		for len(levels) <= level {
			levels = append(levels, []string{})
		}
	}
	for _, id := range g.order {
		levels[assigned[id]] = append(levels[assigned[id]], id)
	}
	return levels, nil
}

// Downstream returns every node that depends on id, directly or
// transitively, in insertion order.
func (g *Graph) Downstream(id string) []string {
	return g.reach(id, g.edges)
}

// Upstream returns every node id depends on, directly or transitively,
// in insertion order.
func (g *Graph) Upstream(id string) []string {
	return g.reach(id, g.parents)
}

func (g *Graph) reach(id string, adj map[string][]string) []string {
	seen := make(map[string]bool)
	var mark func(nodeID string)
	mark = func(nodeID string) {
		for _, next := range adj[nodeID] {
			if !seen[next] {
				seen[next] = true
				mark(next)
			}
		}
	}
	mark(id)
	return g.ordered(seen)
}

// Connected returns the nodes reachable from id when edge direction is
// ignored, including id itself.
func (g *Graph) Connected(id string) []string {
	if !g.HasNode(id) {
		return nil
	}
	seen := map[string]bool{id: true}
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, adj := range [][]string{g.edges[cur], g.parents[cur]} {
			for _, next := range adj {
				if !seen[next] {
					seen[next] = true
					queue = append(queue, next)
				}
			}
		}
	}
	return g.ordered(seen)
}

// Components partitions the graph into weakly connected components,
// ordered by their first member.
func (g *Graph) Components() [][]string {
	assigned := make(map[string]bool)
	var out [][]string
	for _, id := range g.order {
		if assigned[id] {
			continue
		}
		comp := g.Connected(id)
		for _, c := range comp {
			assigned[c] = true
		}
		out = append(out, comp)
	}
	return out
}

// GetRoots returns nodes with no parents (no dependencies).
func (g *Graph) GetRoots() []string {
	var roots []string
	for _, id := range g.order {
		if len(g.parents[id]) == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}

// GetLeaves returns nodes with no children (no dependents).
func (g *Graph) GetLeaves() []string {
	var leaves []string
	for _, id := range g.order {
		if len(g.edges[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	return leaves
}

func (g *Graph) positions() map[string]int {
	pos := make(map[string]int, len(g.order))
	for i, id := range g.order {
		pos[id] = i
	}
	return pos
}

func (g *Graph) ordered(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for _, id := range g.order {
		if set[id] {
			out = append(out, id)
		}
	}
	return out
}

// contains checks if a slice contains a string.
func contains(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}
