package diag

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FormatShort renders diagnostics one per line as
// path:line:col: SEVERITY: first message line. Paths are made relative to
// baseDir when possible. Input order is preserved; call Sort first for stable
// output.
func FormatShort(diags []Diagnostic, baseDir string) string {
	if len(diags) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, d := range diags {
		path := d.File
		if baseDir != "" {
			if rel, err := filepath.Rel(baseDir, d.File); err == nil && !strings.HasPrefix(rel, "..") {
				path = filepath.ToSlash(rel)
			}
		}
		msg := d.Message
		if i := strings.IndexByte(msg, '\n'); i >= 0 {
			msg = msg[:i]
		}
		fmt.Fprintf(&sb, "%s:%d:%d: %s: %s\n", path, d.Line, d.Column, d.Severity, strings.TrimSpace(msg))
	}
	return sb.String()
}
