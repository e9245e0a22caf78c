package buildpipeline

import (
	"gramc/internal/console"
	"gramc/internal/diag"
	"gramc/internal/dialect"
	"gramc/internal/extract"
)

// reportFeed receives tool output while the tool runs. Every completed line is
// appended to the transcript and the extractor is advanced over it, so markers
// appear as the tool prints them. A message that needs lookahead lines stays
// pending until they arrive or flush(true) is called.
type reportFeed struct {
	tr     *console.Transcript
	ex     *extract.Extractor
	target string
	parser dialect.Parser

	file  string
	diags []diag.Diagnostic
	err   error
}

func (f *reportFeed) WriteLine(line string) {
	f.tr.WriteLine(line)
	f.flush(false)
}

func (f *reportFeed) flush(final bool) {
	rep, err := f.ex.Extract(f.tr, f.target, f.parser, final)
	if err != nil {
		if f.err == nil {
			f.err = err
		}
		return
	}
	if rep.File != "" {
		f.file = rep.File
	}
	f.diags = append(f.diags, rep.Diagnostics...)
}
