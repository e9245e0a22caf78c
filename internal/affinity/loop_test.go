package affinity

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gramc/internal/trace"
)

func TestLoop_RunsOnOneGoroutine(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	var (
		mu  sync.Mutex
		ids = map[uint64]int{}
		wg  sync.WaitGroup
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, l.Do(func() {
				mu.Lock()
				ids[trace.GoroutineID()]++
				mu.Unlock()
			}))
		}()
	}
	wg.Wait()
	assert.Len(t, ids, 1)
	for _, n := range ids {
		assert.Equal(t, 16, n)
	}
}

func TestLoop_NestedDoRunsInline(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	var order []string
	require.NoError(t, l.Do(func() {
		order = append(order, "outer")
		assert.True(t, l.OnLoop())
		assert.NoError(t, l.Do(func() { order = append(order, "inner") }))
	}))
	assert.Equal(t, []string{"outer", "inner"}, order)
	assert.False(t, l.OnLoop())
}

func TestLoop_Closed(t *testing.T) {
	l := NewLoop()
	l.Close()
	l.Close()
	assert.ErrorIs(t, l.Do(func() {}), ErrClosed)
}
