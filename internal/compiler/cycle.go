package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xldenis/prusti-dev/internal/crate"
	"github.com/xldenis/prusti-dev/internal/mir"
)

// RecursionGroup is a set of procedures that (transitively) call each other.
//
// Recursion is reported for information only: the encoder resolves calls
// through method references, so recursive procedures encode like any other.
type RecursionGroup struct {
	Path    []mir.DefID `json:"path"`    // Cycle path: ["even", "odd", "even"]
	Message string      `json:"message"` // Human-readable description
}

// AnalyzeRecursion finds the recursive procedures of c.
//
// The algorithm:
//  1. Build the call graph from the call terminators of every body
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each component with more than one procedure, or a procedure
//     calling itself
//
// Groups are reported in procedure declaration order.
func AnalyzeRecursion(c *crate.Crate) []RecursionGroup {
	graph := buildCallGraph(c)
	sccs := tarjanSCC(c.Defs(), graph)

	rank := make(map[mir.DefID]int)
	for i, def := range c.Defs() {
		rank[def] = i
	}

	groups := []RecursionGroup{}
	for _, scc := range sccs {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			groups = append(groups, sccToGroup(scc, graph, rank))
		}
	}
	sortGroups(groups, rank)
	return groups
}

// callGraph maps a procedure to the procedures it calls.
type callGraph map[mir.DefID][]mir.DefID

// buildCallGraph keeps only edges to procedures the crate declares.
func buildCallGraph(c *crate.Crate) callGraph {
	graph := make(callGraph)
	for _, def := range c.Defs() {
		proc, _ := c.Procedure(def)
		graph[def] = []mir.DefID{}
		for _, callee := range proc.Callees() {
			if _, ok := c.Procedure(callee); ok {
				graph[def] = append(graph[def], callee)
			}
		}
	}
	return graph
}

func hasSelfLoop(node mir.DefID, graph callGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components, visiting roots in order.
func tarjanSCC(order []mir.DefID, graph callGraph) [][]mir.DefID {
	var (
		index   = 0
		stack   []mir.DefID
		indices = make(map[mir.DefID]int)
		lowlink = make(map[mir.DefID]int)
		onStack = make(map[mir.DefID]bool)
		sccs    [][]mir.DefID
	)

	var strongConnect func(mir.DefID)
	strongConnect = func(v mir.DefID) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []mir.DefID
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

// sccToGroup renders a component as a cycle starting at its first-declared
// member.
func sccToGroup(scc []mir.DefID, graph callGraph, rank map[mir.DefID]int) RecursionGroup {
	start := scc[0]
	for _, def := range scc[1:] {
		if rank[def] < rank[start] {
			start = def
		}
	}
	if len(scc) == 1 {
		return RecursionGroup{
			Path:    []mir.DefID{start, start},
			Message: fmt.Sprintf("self-recursive procedure: %s -> %s", start, start),
		}
	}

	path := reconstructCyclePath(start, scc, graph)
	parts := make([]string, len(path))
	for i, def := range path {
		parts[i] = string(def)
	}
	return RecursionGroup{
		Path:    path,
		Message: fmt.Sprintf("mutually recursive procedures: %s", strings.Join(parts, " -> ")),
	}
}

// reconstructCyclePath follows call edges within the component from start
// until it returns to start.
func reconstructCyclePath(start mir.DefID, scc []mir.DefID, graph callGraph) []mir.DefID {
	members := make(map[mir.DefID]bool)
	for _, node := range scc {
		members[node] = true
	}

	current := start
	path := []mir.DefID{current}
	visited := make(map[mir.DefID]bool)
	for {
		visited[current] = true

		var next mir.DefID
		for _, neighbor := range graph[current] {
			if members[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}
	return path
}

func sortGroups(groups []RecursionGroup, rank map[mir.DefID]int) {
	sort.SliceStable(groups, func(i, j int) bool {
		return rank[groups[i].Path[0]] < rank[groups[j].Path[0]]
	})
}
