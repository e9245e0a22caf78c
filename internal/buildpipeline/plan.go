package buildpipeline

import (
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"gramc/internal/grammar"
	"gramc/internal/project/dag"
	"gramc/internal/provenance"
)

// Plan is the work derived from a set of requested grammar files.
type Plan struct {
	// Groups are compiled concurrently with each other; the files of one
	// group run sequentially through one Orchestrator because their tool
	// runs observe overlapping directory trees.
	Groups [][]string
	// Covered are requested files that a requested origin regenerates, so
	// its cascade compiles them.
	Covered []string
	// Cycle names files whose recorded provenance forms a loop.
	Cycle string
}

// PlanFiles drops non-grammar files, removes files reached by the cascade of
// another requested file and groups the rest by directory tree.
func PlanFiles(files []string, store *provenance.Store) Plan {
	nodes := make([]dag.Node, 0, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil || !grammar.IsCompilable(abs) {
			continue
		}
		n := dag.Node{Path: abs}
		if rec, ok, err := store.Get(abs); err != nil {
			slog.Warn("provenance lookup failed", "file", abs, "err", err)
		} else if ok && rec.Derived && rec.Origin != "" {
			n.Origin = store.Resolve(rec.Origin)
		}
		nodes = append(nodes, n)
	}
	var plan Plan
	if len(nodes) == 0 {
		return plan
	}
	idx := dag.BuildIndex(nodes)
	g := dag.BuildGraph(idx, nodes)
	topo := dag.ToposortKahn(g)

	roots := idx.Names(g.Roots())
	if topo.Cyclic {
		plan.Cycle = dag.CycleSummary(idx, topo)
		// nothing upstream compiles these, so each is its own root
		roots = append(roots, idx.Names(topo.Cycles)...)
		sort.Strings(roots)
	}
	isRoot := make(map[string]bool, len(roots))
	for _, r := range roots {
		isRoot[r] = true
	}
	for _, id := range topo.Order {
		name := idx.IDToName[int(id)]
		if !isRoot[name] {
			plan.Covered = append(plan.Covered, name)
		}
	}
	plan.Groups = groupByTree(roots)
	return plan
}

// groupByTree puts files whose directories nest into the same group.
func groupByTree(files []string) [][]string {
	sorted := append([]string(nil), files...)
	sort.Slice(sorted, func(i, j int) bool {
		di, dj := filepath.Dir(sorted[i]), filepath.Dir(sorted[j])
		if di != dj {
			return di < dj
		}
		return sorted[i] < sorted[j]
	})
	var (
		groups [][]string
		tops   []string
	)
next:
	for _, f := range sorted {
		dir := filepath.Dir(f)
		for i, top := range tops {
			if within(dir, top) {
				groups[i] = append(groups[i], f)
				continue next
			}
		}
		groups = append(groups, []string{f})
		tops = append(tops, dir)
	}
	return groups
}

func within(dir, root string) bool {
	if dir == root {
		return true
	}
	return strings.HasPrefix(dir, strings.TrimSuffix(root, string(filepath.Separator))+string(filepath.Separator))
}
