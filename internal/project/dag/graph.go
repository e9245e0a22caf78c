package dag

import (
	"slices"
	"strings"
)

// Node is one selected grammar file. Origin is the grammar it was generated
// from, empty for hand-written grammars.
type Node struct {
	Path   string
	Origin string
}

type Graph struct {
	Edges   [][]NodeID // Edges[origin] = generated grammars
	Indeg   []int      // in-degree counting only present origins
	Present []bool     // the node was selected, not only named as an origin
}

func BuildGraph(idx Index, nodes []Node) Graph {
	count := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]NodeID, count),
		Indeg:   make([]int, count),
		Present: make([]bool, count),
	}
	for _, n := range nodes {
		if id, ok := idx.NameToID[n.Path]; ok {
			g.Present[int(id)] = true
		}
	}

	seen := make(map[[2]NodeID]struct{}, len(nodes))
	for _, n := range nodes {
		if n.Path == "" || n.Origin == "" || n.Path == n.Origin {
			continue
		}
		to, ok := idx.NameToID[n.Path]
		if !ok {
			continue
		}
		from, ok := idx.NameToID[n.Origin]
		if !ok {
			continue
		}
		key := [2]NodeID{from, to}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		g.Edges[int(from)] = append(g.Edges[int(from)], to)
		if g.Present[int(from)] {
			g.Indeg[int(to)]++
		}
	}
	for i := range g.Edges {
		if len(g.Edges[i]) > 1 {
			slices.Sort(g.Edges[i])
		}
	}
	return g
}

// Roots returns the present nodes no present origin points at.
func (g Graph) Roots() []NodeID {
	var out []NodeID
	for i := range g.Present {
		if g.Present[i] && g.Indeg[i] == 0 {
			out = append(out, nodeID(i))
		}
	}
	return out
}

// CycleSummary renders the nodes of a cyclic sort, or "" when acyclic.
func CycleSummary(idx Index, topo *Topo) string {
	if topo == nil || !topo.Cyclic || len(topo.Cycles) == 0 {
		return ""
	}
	return strings.Join(idx.Names(topo.Cycles), " -> ")
}
