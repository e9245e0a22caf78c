package diag

import (
	"fmt"

	"gramc/internal/source"
)

type Diagnostic struct {
	File     string
	Line     int // 1-based
	Column   int // 1-based, 0 when the tool gave none
	Severity Severity
	Message  string
	Origin   source.Span
}

// Line0 returns the editor line (0-based).
func (d Diagnostic) Line0() int {
	if d.Line <= 0 {
		return 0
	}
	return d.Line - 1
}

// Column0 returns the editor column (0-based).
func (d Diagnostic) Column0() int {
	if d.Column <= 0 {
		return 0
	}
	return d.Column - 1
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Line, d.Column, d.Severity, d.Message)
}
