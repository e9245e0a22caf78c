// Package dag orders grammar files by provenance: an edge runs from a grammar
// to each grammar it generated.
package dag

import "sort"

type NodeID uint32

type Index struct {
	NameToID map[string]NodeID
	IDToName []string
}

// BuildIndex collects the unique paths and origins, sorts them and assigns
// IDs in that order.
func BuildIndex(nodes []Node) Index {
	uniq := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		if n.Path != "" {
			uniq[n.Path] = struct{}{}
		}
		if n.Origin != "" {
			uniq[n.Origin] = struct{}{}
		}
	}

	paths := make([]string, 0, len(uniq))
	for path := range uniq {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	nameToID := make(map[string]NodeID, len(paths))
	for i, path := range paths {
		nameToID[path] = NodeID(i)
	}

	return Index{
		NameToID: nameToID,
		IDToName: paths,
	}
}

// Names maps ids back to paths.
func (idx Index) Names(ids []NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.IDToName[int(id)]
	}
	return out
}
