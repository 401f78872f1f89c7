package validate

import (
	"slices"

	"jeff/internal/ir"
)

// depGraph is the dependency graph of a single region. Nodes 0..n-1 are the
// region's ops, n is the virtual SOURCE node and n+1 the virtual TARGET node.
type depGraph struct {
	ops   int
	edges [][]int // edges[from] = []to
	preds [][]int
	indeg []int
}

func (g *depGraph) source() int { return g.ops }
func (g *depGraph) target() int { return g.ops + 1 }

// buildDepGraph links producers to consumers. Only values produced inside r
// contribute edges; foreign values are diagnosed by the region checker.
func buildDepGraph(r *ir.Region) *depGraph {
	n := len(r.Ops)
	g := &depGraph{
		ops:   n,
		edges: make([][]int, n+2),
		preds: make([][]int, n+2),
		indeg: make([]int, n+2),
	}
	producer := make(map[ir.ValueID]int, len(r.Sources)+n)
	for _, v := range r.Sources {
		if _, ok := producer[v]; !ok {
			producer[v] = g.source()
		}
	}
	for i := range r.Ops {
		for _, v := range r.Ops[i].Outputs {
			if _, ok := producer[v]; !ok {
				producer[v] = i
			}
		}
	}
	for i := range r.Ops {
		for _, v := range r.Ops[i].Inputs {
			if p, ok := producer[v]; ok {
				g.addEdge(p, i)
			}
		}
	}
	for _, v := range r.Targets {
		if p, ok := producer[v]; ok {
			g.addEdge(p, g.target())
		}
	}
	return g
}

func (g *depGraph) addEdge(from, to int) {
	g.edges[from] = append(g.edges[from], to)
	g.preds[to] = append(g.preds[to], from)
	g.indeg[to]++
}

type topo struct {
	Order  []int // ops in a valid execution order
	Cyclic bool
	Stuck  []int // ops on or downstream of a cycle
	Cycle  []int // one offending cycle, first node repeated at the end
}

// toposort runs Kahn's algorithm. Any valid order is acceptable; ties are
// broken by op index to keep diagnostics stable.
func (g *depGraph) toposort() *topo {
	total := g.ops + 2
	indeg := slices.Clone(g.indeg)
	t := &topo{Order: make([]int, 0, g.ops)}

	current := make([]int, 0, total)
	for i := range total {
		if indeg[i] == 0 {
			current = append(current, i)
		}
	}

	visited := 0
	for len(current) > 0 {
		next := make([]int, 0)
		for _, id := range current {
			visited++
			if id < g.ops {
				t.Order = append(t.Order, id)
			}
			for _, to := range g.edges[id] {
				indeg[to]--
				if indeg[to] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if visited != total {
		t.Cyclic = true
		for i := range g.ops {
			if indeg[i] > 0 {
				t.Stuck = append(t.Stuck, i)
			}
		}
		t.Cycle = g.findCycle(indeg, t.Stuck[0])
	}
	return t
}

// findCycle walks predecessors that Kahn could not release. Every such node
// has at least one unreleased predecessor, so the walk must revisit a node.
func (g *depGraph) findCycle(indeg []int, start int) []int {
	pos := make(map[int]int)
	var walk []int
	cur := start
	for {
		if at, ok := pos[cur]; ok {
			cycle := slices.Clone(walk[at:])
			slices.Reverse(cycle)
			// начинаем с наименьшего индекса, чтобы сообщение было стабильным
			lo := 0
			for i, id := range cycle {
				if id < cycle[lo] {
					lo = i
				}
			}
			out := make([]int, 0, len(cycle)+1)
			out = append(out, cycle[lo:]...)
			out = append(out, cycle[:lo]...)
			return append(out, out[0])
		}
		pos[cur] = len(walk)
		walk = append(walk, cur)
		next := -1
		for _, p := range g.preds[cur] {
			if indeg[p] > 0 {
				next = p
				break
			}
		}
		if next < 0 {
			return nil
		}
		cur = next
	}
}
