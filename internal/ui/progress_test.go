package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gramc/internal/buildpipeline"
)

func newModel(t *testing.T, files ...string) *progressModel {
	t.Helper()
	m, ok := NewProgressModel("compile", files, nil).(*progressModel)
	require.True(t, ok)
	return m
}

func TestApplyEventTracksStages(t *testing.T) {
	m := newModel(t, "a.jjt", "b.jj")

	m.applyEvent(buildpipeline.Event{File: "a.jjt", Stage: buildpipeline.StageInvoke, Status: buildpipeline.StatusWorking, Depth: 1})
	assert.Equal(t, "running", m.items[0].status)
	assert.Equal(t, "queued", m.items[1].status)
	assert.InDelta(t, 0.15, m.percent(), 1e-9)

	m.applyEvent(buildpipeline.Event{File: "a.jjt", Stage: buildpipeline.StageReport, Status: buildpipeline.StatusDone, Depth: 1})
	assert.Equal(t, "done", m.items[0].status)
	assert.InDelta(t, 0.5, m.percent(), 1e-9)
}

func TestApplyEventAddsCascadedFiles(t *testing.T) {
	m := newModel(t, "a.jjt")

	m.applyEvent(buildpipeline.Event{File: "a.jj", Stage: buildpipeline.StageConfigure, Status: buildpipeline.StatusWorking, Depth: 2})
	require.Len(t, m.items, 2)
	assert.Equal(t, 2, m.items[1].depth)
	assert.Equal(t, "configuring", m.items[1].status)

	// Nested files do not count towards overall progress.
	assert.InDelta(t, 0.0, m.percent(), 1e-9)

	m.applyEvent(buildpipeline.Event{File: "unknown.jj", Stage: buildpipeline.StageInvoke, Status: buildpipeline.StatusWorking, Depth: 1})
	assert.Len(t, m.items, 2)
}

func TestConfigureErrorFinishesFile(t *testing.T) {
	m := newModel(t, "a.jj")
	m.applyEvent(buildpipeline.Event{File: "a.jj", Stage: buildpipeline.StageConfigure, Status: buildpipeline.StatusError, Depth: 1, Err: errors.New("no jar")})
	assert.True(t, m.items[0].finished)
	assert.Equal(t, "error", m.items[0].status)
}

func TestViewIndentsNestedFiles(t *testing.T) {
	m := newModel(t, "a.jjt")
	m.applyEvent(buildpipeline.Event{File: "a.jj", Stage: buildpipeline.StageInvoke, Status: buildpipeline.StatusWorking, Depth: 2})
	view := m.View()
	assert.Contains(t, view, "compile")
	assert.Contains(t, view, "running   a.jj")
	assert.True(t, strings.Contains(view, "a.jjt"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
