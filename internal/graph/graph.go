package graph

import (
	"fmt"
	"sort"
	"strings"
)

// DependencyGraph models "source depends on upstream provider" relations
// between data sources. Edges are stored in both directions for O(1)
// lookup either way. The graph stays acyclic: insertions that would close
// a cycle are rolled back completely and rejected.
//
// All traversal visits neighbors in lexicographic order, so query results
// and detected cycle paths are reproducible across runs and platforms.
type DependencyGraph struct {
	upstream   map[string]map[string]struct{}
	downstream map[string]map[string]struct{}
}

func New() *DependencyGraph {
	return &DependencyGraph{
		upstream:   make(map[string]map[string]struct{}),
		downstream: make(map[string]map[string]struct{}),
	}
}

// CycleError reports an edge insertion that would have closed a directed
// cycle. Path holds the cycle, first node repeated at the end.
type CycleError struct {
	Source string
	Path   []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle through %s: %s", e.Source, strings.Join(e.Path, " -> "))
}

// AddDependency ensures all named nodes exist and adds one edge from
// source to each upstream. If the insertion closes a cycle, every node and
// edge created by this call is revoked, leaving the graph identical to its
// pre-call state, and a *CycleError is returned.
func (g *DependencyGraph) AddDependency(source string, upstreams []string) error {
	var addedNodes []string
	var addedEdges [][2]string

	ensure := func(node string) {
		if _, ok := g.upstream[node]; !ok {
			g.upstream[node] = make(map[string]struct{})
			g.downstream[node] = make(map[string]struct{})
			addedNodes = append(addedNodes, node)
		}
	}

	ensure(source)
	for _, up := range upstreams {
		ensure(up)
		if _, ok := g.upstream[source][up]; !ok {
			g.upstream[source][up] = struct{}{}
			g.downstream[up][source] = struct{}{}
			addedEdges = append(addedEdges, [2]string{source, up})
		}
	}

	if path := g.findCycle(source); path != nil {
		for _, e := range addedEdges {
			delete(g.upstream[e[0]], e[1])
			delete(g.downstream[e[1]], e[0])
		}
		for _, n := range addedNodes {
			delete(g.upstream, n)
			delete(g.downstream, n)
		}
		return &CycleError{Source: source, Path: path}
	}
	return nil
}

// findCycle runs an iterative depth-first search from root and returns the
// cycle path when one is reachable, nil otherwise. Neighbors are visited
// in lexicographic order; nodes currently on the search stack close the
// cycle.
func (g *DependencyGraph) findCycle(root string) []string {
	type frame struct {
		node      string
		neighbors []string
		next      int
	}

	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var stack []frame
	var path []string

	push := func(node string) {
		stack = append(stack, frame{node: node, neighbors: g.UpstreamOf(node)})
		onStack[node] = true
		visited[node] = true
		path = append(path, node)
	}

	push(root)
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.neighbors) {
			next := top.neighbors[top.next]
			top.next++
			if onStack[next] {
				for i, n := range path {
					if n == next {
						cycle := append([]string(nil), path[i:]...)
						return append(cycle, next)
					}
				}
			}
			if !visited[next] {
				push(next)
			}
			continue
		}
		onStack[top.node] = false
		path = path[:len(path)-1]
		stack = stack[:len(stack)-1]
	}
	return nil
}

// AllUpstream returns the transitive upstream closure of source, excluding
// source itself, as a sorted slice. Traversal is iterative, so arbitrarily
// deep chains cost no call stack.
func (g *DependencyGraph) AllUpstream(source string) []string {
	visited := map[string]struct{}{source: {}}
	stack := []string{source}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, up := range g.UpstreamOf(node) {
			if _, ok := visited[up]; !ok {
				visited[up] = struct{}{}
				stack = append(stack, up)
			}
		}
	}
	delete(visited, source)
	return sortedKeys(visited)
}

// IndependenceScore quantifies how independent a set of sources is: 1
// minus the fraction of source pairs sharing at least one upstream
// provider. Zero or one distinct source is vacuously independent.
func (g *DependencyGraph) IndependenceScore(sources []string) float64 {
	uniq := dedupeSorted(sources)
	if len(uniq) <= 1 {
		return 1.0
	}

	closures := make([]map[string]struct{}, len(uniq))
	for i, s := range uniq {
		closures[i] = toSet(g.AllUpstream(s))
	}

	pairs := 0
	shared := 0
	for i := 0; i < len(uniq); i++ {
		for j := i + 1; j < len(uniq); j++ {
			pairs++
			if intersects(closures[i], closures[j]) {
				shared++
			}
		}
	}
	return 1.0 - float64(shared)/float64(pairs)
}

// Convergence is a pair of nominally separate sources whose upstream
// closures overlap enough to suggest a covert shared provider.
type Convergence struct {
	SourceA    string  `json:"source_a"`
	SourceB    string  `json:"source_b"`
	Similarity float64 `json:"similarity"`
}

// HiddenConvergences computes the Jaccard similarity of upstream closures
// for every pair of known nodes and returns pairs strictly above
// threshold, most similar first, ties broken by name. Pairs where either
// closure is empty are skipped: no upstream signal is not the same as zero
// similarity.
func (g *DependencyGraph) HiddenConvergences(threshold float64) []Convergence {
	nodes := g.Nodes()
	closures := make(map[string]map[string]struct{}, len(nodes))
	for _, n := range nodes {
		closures[n] = toSet(g.AllUpstream(n))
	}

	var out []Convergence
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			a, b := closures[nodes[i]], closures[nodes[j]]
			if len(a) == 0 || len(b) == 0 {
				continue
			}
			if sim := jaccard(a, b); sim > threshold {
				out = append(out, Convergence{SourceA: nodes[i], SourceB: nodes[j], Similarity: sim})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		if out[i].SourceA != out[j].SourceA {
			return out[i].SourceA < out[j].SourceA
		}
		return out[i].SourceB < out[j].SourceB
	})
	return out
}

// HasNode reports whether node is known to the graph.
func (g *DependencyGraph) HasNode(node string) bool {
	_, ok := g.upstream[node]
	return ok
}

// Nodes returns all known node identifiers in ascending order.
func (g *DependencyGraph) Nodes() []string {
	out := make([]string, 0, len(g.upstream))
	for n := range g.upstream {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// UpstreamOf returns the direct upstream providers of node, sorted.
func (g *DependencyGraph) UpstreamOf(node string) []string {
	return sortedKeys(g.upstream[node])
}

// DownstreamOf returns the direct dependents of node, sorted.
func (g *DependencyGraph) DownstreamOf(node string) []string {
	return sortedKeys(g.downstream[node])
}

// NodeCount returns the number of known nodes.
func (g *DependencyGraph) NodeCount() int {
	return len(g.upstream)
}

// EdgeCount returns the number of dependency edges.
func (g *DependencyGraph) EdgeCount() int {
	n := 0
	for _, ups := range g.upstream {
		n += len(ups)
	}
	return n
}

func jaccard(a, b map[string]struct{}) float64 {
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func intersects(a, b map[string]struct{}) bool {
	if len(b) < len(a) {
		a, b = b, a
	}
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}

func dedupeSorted(items []string) []string {
	set := toSet(items)
	return sortedKeys(set)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
