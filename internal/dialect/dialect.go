// Package dialect parses the free-form text that grammar tools print into
// located messages. Each tool family has one Parser; callers never match tool
// output themselves, so a change in a tool's wording touches one file here.
package dialect

import (
	"gramc/internal/diag"
	"gramc/internal/source"
)

// Location is one "line N, column M" reference inside a message. Line and
// Column are 1-based as printed by the tool; Span covers the reference text
// within the parsed input.
type Location struct {
	Line   int
	Column int
	Span   source.Span
}

// Flag marks messages that need special treatment by the extractor.
type Flag uint8

const (
	// FlagObsoleteFile marks the "file is obsolete" warning that must be
	// dropped when the compiled file is itself derived.
	FlagObsoleteFile Flag = 1 << iota
	// FlagLookahead marks a message whose location was found on a following
	// line; it yields one diagnostic for all of its locations.
	FlagLookahead
)

// Message is one logical diagnostic message.
type Message struct {
	Severity  diag.Severity
	Text      string
	Span      source.Span // whole message within the parsed input
	Locations []Location
	Flags     Flag
}

// Has reports whether f is set on the message.
func (m Message) Has(f Flag) bool { return m.Flags&f != 0 }

// Parser turns tool output into messages.
type Parser interface {
	// Name identifies the dialect in logs.
	Name() string
	// Parse scans text, which must consist of complete lines. When final is
	// false the parser may stop early in front of a message that needs
	// lines not yet available. consumed is the number of bytes fully
	// processed; the caller resumes from there.
	Parse(text string, final bool) (msgs []Message, consumed int)
	// Version extracts the tool version from its banner, if present.
	Version(text string) (string, bool)
}

type line struct {
	text  string
	start int // offset of text within the input
	end   int // offset just past the terminator
}

func splitLines(text string) []line {
	var out []line
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] != '\n' {
			continue
		}
		body := text[start:i]
		if n := len(body); n > 0 && body[n-1] == '\r' {
			body = body[:n-1]
		}
		out = append(out, line{text: body, start: start, end: i + 1})
		start = i + 1
	}
	if start < len(text) {
		out = append(out, line{text: text[start:], start: start, end: len(text)})
	}
	return out
}

func span(start, end int) source.Span {
	sp, err := source.SpanAt(start, end-start)
	if err != nil {
		return source.Span{}
	}
	return sp
}
