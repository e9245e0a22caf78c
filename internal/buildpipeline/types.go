package buildpipeline

import "time"

// Stage describes one step of a grammar compile.
type Stage string

const (
	// StageConfigure resolves tool settings and the command line.
	StageConfigure Stage = "configure"
	// StageSnapshot fingerprints the grammar directory before the tool runs.
	StageSnapshot Stage = "snapshot"
	// StageInvoke runs the external tool.
	StageInvoke Stage = "invoke"
	// StageDiff fingerprints again and computes the produced files.
	StageDiff Stage = "diff"
	// StageCascade compiles intermediate grammars produced by a preprocessor.
	StageCascade Stage = "cascade"
	// StageAnnotate records provenance and rewrites generated sources.
	StageAnnotate Stage = "annotate"
	// StageReport extracts diagnostics from the tool output.
	StageReport Stage = "report"
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{StageConfigure, StageSnapshot, StageInvoke, StageDiff, StageCascade, StageAnnotate, StageReport}

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the stage is running.
	StatusWorking Status = "working"
	// StatusDone indicates the stage finished.
	StatusDone Status = "done"
	// StatusError indicates the stage failed.
	StatusError Status = "error"
)

// Event reports progress for a file.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Depth   int // 1 for a top-level compile, more for cascaded ones
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings holds accumulated stage durations.
type Timings struct {
	stages map[Stage]time.Duration
}

func (t *Timings) ensure() {
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
}

// Add accumulates dur into stage.
func (t *Timings) Add(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.stages[stage] += dur
}

// Merge adds every duration of other.
func (t *Timings) Merge(other Timings) {
	for stage, dur := range other.stages {
		t.Add(stage, dur)
	}
}

// Has reports whether a duration for stage is recorded.
func (t Timings) Has(stage Stage) bool {
	if t.stages == nil {
		return false
	}
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages.
func (t Timings) Sum(stages ...Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
