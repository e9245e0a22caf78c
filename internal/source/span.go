package source

import (
	"fmt"

	"fortio.org/safecast"
)

// Span is a half-open byte range inside a console transcript.
type Span struct {
	Start uint32 // inclusive
	End   uint32 // exclusive
}

// SpanAt builds a span from an int offset and length, rejecting values that do
// not fit the transcript offset width.
func SpanAt(offset, length int) (Span, error) {
	start, err := safecast.Conv[uint32](offset)
	if err != nil {
		return Span{}, fmt.Errorf("span offset %d: %w", offset, err)
	}
	n, err := safecast.Conv[uint32](length)
	if err != nil {
		return Span{}, fmt.Errorf("span length %d: %w", length, err)
	}
	return Span{Start: start, End: start + n}, nil
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// Cover returns the smallest span containing both s and other.
func (s Span) Cover(other Span) Span {
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// ShiftRight moves the span n bytes forward.
func (s Span) ShiftRight(n uint32) Span {
	return Span{Start: s.Start + n, End: s.End + n}
}

// Contains reports whether off lies inside the span.
func (s Span) Contains(off uint32) bool {
	return off >= s.Start && off < s.End
}
