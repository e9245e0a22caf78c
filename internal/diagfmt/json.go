package diagfmt

import (
	"encoding/json"
	"io"

	"gramc/internal/diag"
)

// LocationJSON is a position in a grammar file.
type LocationJSON struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
}

// OriginJSON is the byte range of the message in the console transcript.
type OriginJSON struct {
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
}

// DiagnosticJSON is one diagnostic.
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Origin   *OriginJSON  `json:"origin,omitempty"`
}

// RunJSON describes one tool run.
type RunJSON struct {
	File       string   `json:"file"`
	Tool       string   `json:"tool"`
	Version    string   `json:"version,omitempty"`
	ExitCode   int      `json:"exit_code"`
	ReportedTo string   `json:"reported_to,omitempty"`
	Generated  []string `json:"generated,omitempty"`
}

// DiagnosticsOutput is the root object of JSON output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Runs        []RunJSON        `json:"runs,omitempty"`
}

// BuildDiagnosticsOutput assembles the JSON document without encoding it.
func BuildDiagnosticsOutput(items []diag.Diagnostic, runs []RunJSON, opts JSONOpts) DiagnosticsOutput {
	n := len(items)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}
	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0, n), Runs: runs}
	for _, d := range items[:n] {
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Message:  d.Message,
			Location: LocationJSON{
				File:   formatPath(d.File, opts.PathMode, opts.BaseDir),
				Line:   d.Line,
				Column: d.Column,
			},
		}
		if opts.Origin && !d.Origin.Empty() {
			dj.Origin = &OriginJSON{StartByte: d.Origin.Start, EndByte: d.Origin.End}
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	out.Count = len(out.Diagnostics)
	return out
}

// JSON writes the indented document.
func JSON(w io.Writer, items []diag.Diagnostic, runs []RunJSON, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(items, runs, opts))
}
