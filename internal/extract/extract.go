// Package extract turns captured tool output into per-file markers.
//
// An Extractor is shared by the compiles of one generation. It remembers how
// far each transcript has been processed, attributes diagnostics of derived
// files back to the grammar they came from and performs every marker mutation
// on the designated goroutine.
package extract

import (
	"fmt"
	"log/slog"
	"sync"

	"fortio.org/safecast"

	"gramc/internal/affinity"
	"gramc/internal/console"
	"gramc/internal/diag"
	"gramc/internal/dialect"
	"gramc/internal/grammar"
	"gramc/internal/provenance"
	"gramc/internal/source"
)

// Extractor holds the marker index and the per-transcript progress.
type Extractor struct {
	markers *diag.MarkerIndex
	loop    *affinity.Loop
	store   *provenance.Store
	sink    console.Sink

	mu       sync.Mutex
	gen      diag.Generation
	offsets  map[*console.Transcript]int
	versions map[*console.Transcript]string
}

// New returns an extractor. store may be nil, in which case no file is
// considered derived.
func New(markers *diag.MarkerIndex, loop *affinity.Loop, store *provenance.Store, sink console.Sink) *Extractor {
	return &Extractor{
		markers:  markers,
		loop:     loop,
		store:    store,
		sink:     sink,
		offsets:  make(map[*console.Transcript]int),
		versions: make(map[*console.Transcript]string),
	}
}

// Begin opens a new marker generation. Files are cleared once per generation
// before their first report in it.
func (e *Extractor) Begin() error {
	var gen diag.Generation
	if err := e.loop.Do(func() { gen = e.markers.NewGeneration() }); err != nil {
		return err
	}
	e.mu.Lock()
	e.gen = gen
	e.offsets = make(map[*console.Transcript]int)
	e.versions = make(map[*console.Transcript]string)
	e.mu.Unlock()
	return nil
}

// Version returns the tool version seen in tr so far.
func (e *Extractor) Version(tr *console.Transcript) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.versions[tr]
}

// Report is the outcome of one Extract call.
type Report struct {
	// File is where the diagnostics were attributed.
	File        string
	Diagnostics []diag.Diagnostic
	Links       []source.Link
}

// Extract processes the part of tr not seen yet as output about target. With
// final set, a trailing message waiting for lookahead lines is emitted as is.
// The markers of every touched file are then reported to the sink.
func (e *Extractor) Extract(tr *console.Transcript, target string, parser dialect.Parser, final bool) (Report, error) {
	text := tr.Text()

	e.mu.Lock()
	off := e.offsets[tr]
	gen := e.gen
	if _, ok := e.versions[tr]; !ok {
		if v, found := parser.Version(text); found {
			e.versions[tr] = v
		}
	}
	e.mu.Unlock()

	if off > len(text) {
		off = len(text)
	}
	msgs, consumed := parser.Parse(completeLines(text[off:], final), final)

	e.mu.Lock()
	e.offsets[tr] = off + consumed
	e.mu.Unlock()

	file, derived := e.attribute(target)
	shift, err := safecast.Conv[uint32](tr.Base() + off)
	if err != nil {
		return Report{}, fmt.Errorf("extract %s: transcript offset: %w", target, err)
	}

	rep := Report{File: file}
	for _, m := range msgs {
		if m.Has(dialect.FlagObsoleteFile) && derived {
			continue
		}
		d, links := toDiagnostics(file, m, shift)
		rep.Diagnostics = append(rep.Diagnostics, d...)
		rep.Links = append(rep.Links, links...)
	}

	err = e.loop.Do(func() {
		touched := []string{file}
		if target != file {
			touched = append(touched, target)
		}
		for _, f := range touched {
			e.markers.ClearOnce(f, gen)
		}
		for _, d := range rep.Diagnostics {
			e.markers.Add(d)
		}
		if ls, ok := e.sink.(console.LinkSink); ok {
			for _, l := range rep.Links {
				ls.AddLink(l)
			}
		}
		for _, f := range touched {
			e.sink.ReportDiagnostics(f, e.markers.Markers(f))
		}
	})
	return rep, err
}

// completeLines drops a trailing partial line unless final.
func completeLines(text string, final bool) string {
	if final {
		return text
	}
	for i := len(text) - 1; i >= 0; i-- {
		if text[i] == '\n' {
			return text[:i+1]
		}
	}
	return ""
}

// attribute resolves the file diagnostics about target belong to.
func (e *Extractor) attribute(target string) (string, bool) {
	if e.store == nil {
		return target, false
	}
	rec, ok, err := e.store.Get(target)
	if err != nil {
		slog.Warn("extract: provenance lookup failed", "file", target, "err", err)
		return target, false
	}
	if !ok || !rec.Derived {
		return target, false
	}
	if rec.Origin == "" || grammar.KindOf(rec.Origin) == grammar.TokenizerGrammar {
		return target, true
	}
	return e.store.Resolve(rec.Origin), true
}

func toDiagnostics(file string, m dialect.Message, shift uint32) ([]diag.Diagnostic, []source.Link) {
	origin := m.Span.ShiftRight(shift)
	if len(m.Locations) == 0 {
		return []diag.Diagnostic{{
			File:     file,
			Line:     1,
			Severity: m.Severity,
			Message:  m.Text,
			Origin:   origin,
		}}, nil
	}
	links := make([]source.Link, 0, len(m.Locations))
	for _, loc := range m.Locations {
		links = append(links, source.Link{
			Span:    loc.Span.ShiftRight(shift),
			File:    file,
			Line0:   max(loc.Line-1, 0),
			Column0: max(loc.Column-1, 0),
		})
	}
	if m.Has(dialect.FlagLookahead) {
		first := m.Locations[0]
		return []diag.Diagnostic{{
			File:     file,
			Line:     first.Line,
			Column:   first.Column,
			Severity: m.Severity,
			Message:  m.Text,
			Origin:   origin,
		}}, links
	}
	out := make([]diag.Diagnostic, 0, len(m.Locations))
	for _, loc := range m.Locations {
		out = append(out, diag.Diagnostic{
			File:     file,
			Line:     loc.Line,
			Column:   loc.Column,
			Severity: m.Severity,
			Message:  m.Text,
			Origin:   origin,
		})
	}
	return out, links
}
