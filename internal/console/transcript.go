package console

import (
	"strings"
	"sync"
)

type lengther interface{ Len() int }

// Transcript is the append-only output region of one tool run. Lines written
// to it are mirrored to the sink; Base is the region's offset inside the sink's
// retained text, so transcript offsets plus Base address the sink.
type Transcript struct {
	mu   sync.Mutex
	sink Sink
	base int
	buf  strings.Builder
}

// Open starts a region at the current end of sink.
func Open(sink Sink) *Transcript {
	t := &Transcript{sink: sink}
	if l, ok := sink.(lengther); ok {
		t.base = l.Len()
	}
	return t
}

// WriteLine appends one line of tool output.
func (t *Transcript) WriteLine(line string) {
	t.mu.Lock()
	t.buf.WriteString(line)
	t.buf.WriteByte('\n')
	t.mu.Unlock()
	if t.sink != nil {
		t.sink.Println(line)
	}
}

// Text returns the whole region.
func (t *Transcript) Text() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.String()
}

// Base is the region's offset in the sink.
func (t *Transcript) Base() int { return t.base }
