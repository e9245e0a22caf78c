package diag

// Reporter receives the complete, current diagnostic set of one file.
// Implementations: the console sink, BagReporter, MultiReporter.
type Reporter interface {
	ReportDiagnostics(file string, diags []Diagnostic)
}

// BagReporter keeps the latest set per file in a Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) ReportDiagnostics(file string, diags []Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Replace(file, diags)
}

// MultiReporter fans a report out to several reporters.
type MultiReporter []Reporter

func (m MultiReporter) ReportDiagnostics(file string, diags []Diagnostic) {
	for _, r := range m {
		if r != nil {
			r.ReportDiagnostics(file, diags)
		}
	}
}
