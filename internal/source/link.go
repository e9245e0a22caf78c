package source

import "fmt"

// Link is a clickable region of tool output that points at a location in a
// source file. Line0 and Column0 are editor coordinates (0-based).
type Link struct {
	Span    Span
	File    string
	Line0   int
	Column0 int
}

// Position renders the target as path:line:col with 1-based numbers.
func (l Link) Position() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line0+1, l.Column0+1)
}
