package diag

import (
	"sort"
	"strings"
)

// Generation identifies one top-level compile. Files are cleared at most once
// per generation.
type Generation uint64

type fileMarkers struct {
	cleared Generation
	lines   map[int]*Diagnostic
}

// MarkerIndex maps file -> line -> one aggregated diagnostic.
//
// MarkerIndex is not safe for concurrent use; callers marshal every access
// onto one goroutine (see internal/affinity).
type MarkerIndex struct {
	files map[string]*fileMarkers
	gen   Generation
}

func NewMarkerIndex() *MarkerIndex {
	return &MarkerIndex{files: make(map[string]*fileMarkers)}
}

// NewGeneration opens a fresh generation for a top-level compile.
func (m *MarkerIndex) NewGeneration() Generation {
	m.gen++
	return m.gen
}

func (m *MarkerIndex) entry(file string) *fileMarkers {
	fm, ok := m.files[file]
	if !ok {
		fm = &fileMarkers{lines: make(map[int]*Diagnostic)}
		m.files[file] = fm
	}
	return fm
}

// Clear drops every marker of file.
func (m *MarkerIndex) Clear(file string) {
	if fm, ok := m.files[file]; ok {
		fm.lines = make(map[int]*Diagnostic)
	}
}

// ClearOnce clears file unless it was already cleared in gen. It reports
// whether a clear happened.
func (m *MarkerIndex) ClearOnce(file string, gen Generation) bool {
	fm := m.entry(file)
	if fm.cleared == gen {
		return false
	}
	fm.cleared = gen
	fm.lines = make(map[int]*Diagnostic)
	return true
}

// Add stores d on its line. If the line is occupied, the message is merged into
// the existing marker and the severity raised; Add then returns false.
func (m *MarkerIndex) Add(d Diagnostic) bool {
	fm := m.entry(d.File)
	line := d.Line
	if line <= 0 {
		line = 1
		d.Line = 1
	}
	existing, ok := fm.lines[line]
	if !ok {
		cp := d
		fm.lines[line] = &cp
		return true
	}
	if !containsLine(existing.Message, d.Message) {
		existing.Message += "\n" + d.Message
	}
	if d.Severity > existing.Severity {
		existing.Severity = d.Severity
	}
	if existing.Origin.Empty() {
		existing.Origin = d.Origin
	} else if !d.Origin.Empty() {
		existing.Origin = existing.Origin.Cover(d.Origin)
	}
	return false
}

// containsLine reports whether msg occurs in haystack as a run of whole lines.
func containsLine(haystack, msg string) bool {
	if haystack == msg {
		return true
	}
	for off := 0; off < len(haystack); {
		i := strings.Index(haystack[off:], msg)
		if i < 0 {
			return false
		}
		start, end := off+i, off+i+len(msg)
		if (start == 0 || haystack[start-1] == '\n') && (end == len(haystack) || haystack[end] == '\n') {
			return true
		}
		off = start + 1
	}
	return false
}

// At returns the marker on line of file.
func (m *MarkerIndex) At(file string, line int) (Diagnostic, bool) {
	fm, ok := m.files[file]
	if !ok {
		return Diagnostic{}, false
	}
	d, ok := fm.lines[line]
	if !ok {
		return Diagnostic{}, false
	}
	return *d, true
}

// Markers returns the markers of file ordered by line.
func (m *MarkerIndex) Markers(file string) []Diagnostic {
	fm, ok := m.files[file]
	if !ok || len(fm.lines) == 0 {
		return nil
	}
	out := make([]Diagnostic, 0, len(fm.lines))
	for _, d := range fm.lines {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out
}

// Files lists files with at least one marker, sorted.
func (m *MarkerIndex) Files() []string {
	out := make([]string, 0, len(m.files))
	for f, fm := range m.files {
		if len(fm.lines) > 0 {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}
