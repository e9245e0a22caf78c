package observ

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimer_ReportAggregatesByName(t *testing.T) {
	tm := NewTimer()
	end := tm.Track("invoke")
	time.Sleep(time.Millisecond)
	end("javacc")
	tm.End(tm.Begin("snapshot"), "")
	tm.End(tm.Begin("invoke"), "jjtree")

	rep := tm.Report()
	require.Len(t, rep.Phases, 2)
	assert.Equal(t, "invoke", rep.Phases[0].Name)
	assert.Equal(t, 2, rep.Phases[0].Count)
	assert.Equal(t, "jjtree", rep.Phases[0].Note)
	assert.Greater(t, rep.TotalMS, 0.0)

	assert.True(t, strings.HasPrefix(tm.Summary(), "timings:\n"))
	assert.Len(t, tm.Slowest(1), 1)
	assert.Equal(t, "invoke", tm.Slowest(1)[0].Name)
}

func TestTimer_Nil(t *testing.T) {
	var tm *Timer
	tm.End(tm.Begin("x"), "")
	assert.Empty(t, tm.Report().Phases)
}
