package main

import (
	"fmt"
	"io"
	"time"

	"gramc/internal/buildpipeline"
	"gramc/internal/observ"
)

// printStageTimings writes the accumulated duration of every stage that ran,
// followed by the slowest individual stage runs.
func printStageTimings(out io.Writer, timings buildpipeline.Timings, timer *observ.Timer) {
	if out == nil {
		return
	}
	for _, stage := range buildpipeline.Stages {
		if !timings.Has(stage) {
			continue
		}
		fmt.Fprintf(out, "%-10s %9.1f ms\n", stage, toMillis(timings.Duration(stage)))
	}
	fmt.Fprintf(out, "%-10s %9.1f ms\n", "total", toMillis(timings.Sum(buildpipeline.Stages...)))
	slowest := timer.Slowest(3)
	if len(slowest) == 0 {
		return
	}
	fmt.Fprintln(out, "slowest:")
	for _, p := range slowest {
		fmt.Fprintf(out, "  %-10s %9.1f ms  %s\n", p.Name, toMillis(p.Dur), p.Note)
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
