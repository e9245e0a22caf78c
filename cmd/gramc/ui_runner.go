package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"gramc/internal/buildpipeline"
	"gramc/internal/ui"
)

type compileOutcome struct {
	results []buildpipeline.Result
	err     error
}

// runWithUI runs fn while a progress view renders the events it emits.
func runWithUI(ctx context.Context, title string, files []string, fn func(context.Context, buildpipeline.ProgressSink) ([]buildpipeline.Result, error)) ([]buildpipeline.Result, error) {
	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan compileOutcome, 1)

	go func() {
		res, err := fn(ctx, buildpipeline.ChannelSink{Ch: events})
		outcomeCh <- compileOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// the view may quit early; keep the compile from blocking on events
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil && ctx.Err() == nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
