// Package console is the text sink that tool output and diagnostic reports
// are written to.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"gramc/internal/diag"
	"gramc/internal/source"
)

// Sink receives tool output and per-file diagnostic reports.
type Sink interface {
	Print(s string)
	Println(s string)
	Clear()
	diag.Reporter
}

// LinkSink is implemented by sinks that can make regions of their text
// clickable.
type LinkSink interface {
	AddLink(l source.Link)
}

// Console keeps everything printed since the last Clear so link spans can be
// resolved against it, and mirrors the text to an optional writer.
type Console struct {
	mu       sync.Mutex
	w        io.Writer
	text     strings.Builder
	links    []source.Link
	reporter diag.Reporter
}

// New returns a console mirroring to w (may be nil) and forwarding reports to
// reporter (may be nil).
func New(w io.Writer, reporter diag.Reporter) *Console {
	return &Console{w: w, reporter: reporter}
}

func (c *Console) Print(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text.WriteString(s)
	if c.w != nil {
		fmt.Fprint(c.w, s)
	}
}

func (c *Console) Println(s string) {
	c.Print(s + "\n")
}

// Clear forgets the retained text and links. Mirrored output is not recalled.
func (c *Console) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text.Reset()
	c.links = nil
}

func (c *Console) ReportDiagnostics(file string, diags []diag.Diagnostic) {
	if c.reporter != nil {
		c.reporter.ReportDiagnostics(file, diags)
	}
}

func (c *Console) AddLink(l source.Link) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.links = append(c.links, l)
}

// Len is the length of the retained text; it is where the next Print lands.
func (c *Console) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text.Len()
}

// Text returns the retained text.
func (c *Console) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text.String()
}

// Links returns a copy of the registered links.
func (c *Console) Links() []source.Link {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]source.Link(nil), c.links...)
}

// linkAt returns the link whose span contains off.
func (c *Console) linkAt(off uint32) (source.Link, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range c.links {
		if l.Span.Contains(off) {
			return l, true
		}
	}
	return source.Link{}, false
}

// Discard is a sink that drops everything.
type Discard struct{}

func (Discard) Print(string)                                {}
func (Discard) Println(string)                              {}
func (Discard) Clear()                                      {}
func (Discard) ReportDiagnostics(string, []diag.Diagnostic) {}
