package engine

import (
	"fmt"
	"sort"

	"github.com/forgebase/depengine/internal/job"
	pkgerrors "github.com/forgebase/depengine/pkg/errors"
)

// Node is a vertex in the action dependency graph: one job action (or one
// setup action) plus the edges to and from the actions it depends on.
type Node struct {
	ID         string
	Action     *job.Action
	DependsOn  []*Node
	Dependents []*Node
}

// Graph is the action dependency graph for one job run. Unlike a build
// scheduler that executes independent branches concurrently, actions here
// run on a single worker one at a time — so TopologicalSort produces a
// single flat Order rather than levels of parallel-eligible batches.
type Graph struct {
	Nodes          map[string]*Node
	insertionOrder map[string]int
	Order          []string
}

// NewGraph creates an empty dependency graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes:          make(map[string]*Node),
		insertionOrder: make(map[string]int),
	}
}

// AddNode inserts an action as a vertex in the graph.
func (g *Graph) AddNode(action *job.Action) (*Node, error) {
	if action == nil {
		return nil, pkgerrors.NewDependencyError("", "action cannot be nil")
	}
	if g.Nodes == nil {
		g.Nodes = make(map[string]*Node)
	}
	if _, exists := g.Nodes[action.Name]; exists {
		return nil, pkgerrors.NewDependencyError(action.Name, fmt.Sprintf("duplicate action name %q", action.Name))
	}

	node := &Node{ID: action.Name, Action: action}
	g.Nodes[action.Name] = node
	g.insertionOrder[action.Name] = len(g.insertionOrder)
	return node, nil
}

// AddEdge records that the "to" action depends on "from" having already run.
func (g *Graph) AddEdge(from, to string) error {
	source, ok := g.Nodes[from]
	if !ok {
		return pkgerrors.NewDependencyError(to, fmt.Sprintf("unknown dependency %q", from))
	}
	target, ok := g.Nodes[to]
	if !ok {
		return pkgerrors.NewDependencyError(to, fmt.Sprintf("unknown action %q", to))
	}
	source.Dependents = append(source.Dependents, target)
	target.DependsOn = append(target.DependsOn, source)
	return nil
}

// TopologicalSort computes Order, the single serial execution order for
// this graph's actions, using Kahn's algorithm. Ties — actions with no
// remaining unresolved dependency between them at a given step — are broken
// by declaration order in the job document, not alphabetically, so a job
// with no depends_on at all preserves the order the author wrote it in.
func (g *Graph) TopologicalSort() error {
	indegree := make(map[string]int, len(g.Nodes))
	for id := range g.Nodes {
		indegree[id] = 0
	}
	for _, node := range g.Nodes {
		for _, dependent := range node.Dependents {
			indegree[dependent.ID]++
		}
	}

	var ready []string
	for id, degree := range indegree {
		if degree == 0 {
			ready = append(ready, id)
		}
	}
	g.sortByInsertionOrder(ready)

	var order []string
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		node := g.Nodes[id]
		var unlocked []string
		for _, dependent := range node.Dependents {
			indegree[dependent.ID]--
			if indegree[dependent.ID] == 0 {
				unlocked = append(unlocked, dependent.ID)
			}
		}
		g.sortByInsertionOrder(unlocked)
		ready = mergeByInsertionOrder(ready, unlocked, g.insertionOrder)
	}

	if len(order) != len(g.Nodes) {
		return pkgerrors.NewDependencyError("", "Circular dependency detected")
	}

	g.Order = order
	return nil
}

func (g *Graph) sortByInsertionOrder(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		return g.insertionOrder[ids[i]] < g.insertionOrder[ids[j]]
	})
}

// mergeByInsertionOrder merges two already-sorted-by-insertion-order id
// lists into one sorted list, so the ready queue stays in declaration order
// as newly-unlocked actions are folded in.
func mergeByInsertionOrder(a, b []string, order map[string]int) []string {
	if len(b) == 0 {
		return a
	}
	if len(a) == 0 {
		return b
	}
	out := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if order[a[i]] <= order[b[j]] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
