package dag

import (
	"reflect"
	"testing"
)

func batchesToNames(idx Index, batches [][]NodeID) [][]string {
	out := make([][]string, len(batches))
	for i, batch := range batches {
		out[i] = idx.Names(batch)
	}
	return out
}

func TestBuildIndexIncludesOrigins(t *testing.T) {
	nodes := []Node{
		{Path: "/p/Expr.jj", Origin: "/p/Expr.jjt"},
		{Path: "/p/Calc.jj"},
	}
	idx := BuildIndex(nodes)
	want := []string{"/p/Calc.jj", "/p/Expr.jj", "/p/Expr.jjt"}
	if !reflect.DeepEqual(idx.IDToName, want) {
		t.Fatalf("IDToName = %v, want %v", idx.IDToName, want)
	}
	for i, name := range want {
		if id := idx.NameToID[name]; int(id) != i {
			t.Fatalf("NameToID[%q] = %d, want %d", name, id, i)
		}
	}
}

func TestToposortCascade(t *testing.T) {
	nodes := []Node{
		{Path: "/p/Expr.jjt"},
		{Path: "/p/Expr.jj", Origin: "/p/Expr.jjt"},
		{Path: "/p/Calc.jj"},
		{Path: "/p/Other.jj", Origin: "/elsewhere/Other.jjt"},
	}
	idx := BuildIndex(nodes)
	g := BuildGraph(idx, nodes)

	roots := idx.Names(g.Roots())
	wantRoots := []string{"/p/Calc.jj", "/p/Expr.jjt", "/p/Other.jj"}
	if !reflect.DeepEqual(roots, wantRoots) {
		t.Fatalf("roots = %v, want %v", roots, wantRoots)
	}

	topo := ToposortKahn(g)
	if topo.Cyclic {
		t.Fatalf("unexpected cycle: %v", topo.Cycles)
	}
	want := [][]string{
		{"/p/Calc.jj", "/p/Expr.jjt", "/p/Other.jj"},
		{"/p/Expr.jj"},
	}
	if got := batchesToNames(idx, topo.Batches); !reflect.DeepEqual(got, want) {
		t.Fatalf("batches = %v, want %v", got, want)
	}
	if CycleSummary(idx, topo) != "" {
		t.Fatal("acyclic sort must have an empty summary")
	}
}

func TestToposortDetectsCycle(t *testing.T) {
	nodes := []Node{
		{Path: "/p/a.jj", Origin: "/p/b.jjt"},
		{Path: "/p/b.jjt", Origin: "/p/a.jj"},
		{Path: "/p/c.jj"},
	}
	idx := BuildIndex(nodes)
	topo := ToposortKahn(BuildGraph(idx, nodes))
	if !topo.Cyclic {
		t.Fatal("expected a cycle")
	}
	if got := idx.Names(topo.Cycles); !reflect.DeepEqual(got, []string{"/p/a.jj", "/p/b.jjt"}) {
		t.Fatalf("cycles = %v", got)
	}
	if got := CycleSummary(idx, topo); got != "/p/a.jj -> /p/b.jjt" {
		t.Fatalf("summary = %q", got)
	}
}

func TestBuildGraphIgnoresSelfAndDuplicates(t *testing.T) {
	nodes := []Node{
		{Path: "/p/a.jj", Origin: "/p/a.jj"},
		{Path: "/p/b.jj", Origin: "/p/a.jj"},
		{Path: "/p/b.jj", Origin: "/p/a.jj"},
	}
	idx := BuildIndex(nodes)
	g := BuildGraph(idx, nodes)
	a := idx.NameToID["/p/a.jj"]
	b := idx.NameToID["/p/b.jj"]
	if len(g.Edges[a]) != 1 || g.Indeg[b] != 1 || g.Indeg[a] != 0 {
		t.Fatalf("edges = %v indeg = %v", g.Edges, g.Indeg)
	}
}
