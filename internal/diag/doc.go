// Package diag defines the diagnostic model shared by the dialect parsers, the
// extractor and the renderers.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - File – absolute path of the source file the diagnostic is attached to.
//   - Line / Column – 1-based position as printed by the external tool.
//     Line0/Column0 convert to the 0-based coordinates editors use.
//   - Message – tool text, possibly spanning several physical lines.
//   - Origin – the byte range of the message inside the console transcript.
//
// # Markers
//
// MarkerIndex keeps at most one diagnostic per (file, line). Adding a second
// diagnostic on an occupied line merges the message text and raises the
// severity instead of creating an overlapping entry. A file's markers are
// cleared in full before a new report for that file is applied; the index
// tracks a generation counter so that a cascade of nested compiles clears a
// file only once.
//
// Package diag performs no IO. Rendering lives in internal/diagfmt, and
// extraction from raw tool output lives in internal/extract.
package diag
