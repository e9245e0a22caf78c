// Package affinity runs functions on one designated goroutine.
package affinity

import (
	"errors"
	"sync"
	"sync/atomic"

	"gramc/internal/trace"
)

// ErrClosed is returned by Do after Close.
var ErrClosed = errors.New("affinity: loop closed")

// Loop owns a goroutine that executes submitted functions one at a time, in
// submission order.
type Loop struct {
	work chan func()
	done chan struct{}
	gid  atomic.Uint64

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// NewLoop starts the designated goroutine.
func NewLoop() *Loop {
	l := &Loop{
		work: make(chan func()),
		done: make(chan struct{}),
	}
	started := make(chan struct{})
	go l.run(started)
	<-started
	return l
}

func (l *Loop) run(started chan<- struct{}) {
	defer close(l.done)
	l.gid.Store(trace.GoroutineID())
	close(started)
	for fn := range l.work {
		fn()
	}
}

// OnLoop reports whether the caller is the designated goroutine.
func (l *Loop) OnLoop() bool {
	return trace.GoroutineID() == l.gid.Load()
}

// Do runs fn on the designated goroutine and waits for it. A call made from
// that goroutine runs inline.
func (l *Loop) Do(fn func()) error {
	if l.OnLoop() {
		fn()
		return nil
	}
	l.mu.RLock()
	if l.closed {
		l.mu.RUnlock()
		return ErrClosed
	}
	finished := make(chan struct{})
	l.work <- func() {
		defer close(finished)
		fn()
	}
	l.mu.RUnlock()
	<-finished
	return nil
}

// Close stops the loop after pending work and waits for the goroutine to exit.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		l.closed = true
		close(l.work)
		l.mu.Unlock()
	})
	<-l.done
}
