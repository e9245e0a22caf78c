package diag

import (
	"sort"
	"sync"
)

// Bag holds the latest reported diagnostics of every file. Safe for
// concurrent use.
type Bag struct {
	mu    sync.Mutex
	files map[string][]Diagnostic
}

func NewBag() *Bag {
	return &Bag{files: make(map[string][]Diagnostic)}
}

// Replace swaps the stored set of file for diags. An empty set removes the file.
func (b *Bag) Replace(file string, diags []Diagnostic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(diags) == 0 {
		delete(b.files, file)
		return
	}
	cp := make([]Diagnostic, len(diags))
	copy(cp, diags)
	b.files[file] = cp
}

// HasErrors reports whether any stored diagnostic has Severity >= Error.
func (b *Bag) HasErrors() bool {
	return b.count(SevError) > 0
}

// HasWarnings reports whether any stored diagnostic has Severity >= Warning.
func (b *Bag) HasWarnings() bool {
	return b.count(SevWarning) > 0
}

func (b *Bag) count(min Severity) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, ds := range b.files {
		for i := range ds {
			if ds[i].Severity >= min {
				n++
			}
		}
	}
	return n
}

func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, ds := range b.files {
		n += len(ds)
	}
	return n
}

// Files returns the files that currently have diagnostics, sorted.
func (b *Bag) Files() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.files))
	for f := range b.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Items returns a sorted copy of every stored diagnostic.
func (b *Bag) Items() []Diagnostic {
	b.mu.Lock()
	out := make([]Diagnostic, 0)
	for _, ds := range b.files {
		out = append(out, ds...)
	}
	b.mu.Unlock()
	Sort(out)
	return out
}

// Sort orders diagnostics by file, line, column, severity (desc) and message
// for stable output.
func Sort(items []Diagnostic) {
	sort.SliceStable(items, func(i, j int) bool {
		di, dj := items[i], items[j]
		if di.File != dj.File {
			return di.File < dj.File
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Message < dj.Message
	})
}
