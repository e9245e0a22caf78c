package trace

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Heartbeat emits an event per interval naming the open spans, innermost
// last. A tool that never exits shows up as the same launch span in every
// beat.
type Heartbeat struct {
	tracer Tracer
	stop   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// StartHeartbeat starts beating; nil when tracing is off or interval is not
// positive. A nil Heartbeat may be stopped.
func StartHeartbeat(t Tracer, interval time.Duration) *Heartbeat {
	if t == nil || !t.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{tracer: t, stop: make(chan struct{})}
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for n := 1; ; n++ {
			select {
			case <-ticker.C:
				h.beat(n)
			case <-h.stop:
				return
			}
		}
	}()
	return h
}

func (h *Heartbeat) beat(n int) {
	open := Open(h.tracer)
	names := make([]string, len(open))
	for i, s := range open {
		names[i] = fmt.Sprintf("%s %.1fs", s.Name, s.Elapsed.Seconds())
	}
	ev := &Event{
		Time:   time.Now(),
		Kind:   KindHeartbeat,
		Scope:  ScopeDriver,
		Name:   "heartbeat",
		Detail: fmt.Sprintf("#%d", n),
	}
	if len(names) > 0 {
		ev.Extra = map[string]string{"open": strings.Join(names, " > ")}
	}
	h.tracer.Emit(ev)
}

// Stop ends the beat and waits for the goroutine.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		close(h.stop)
		h.wg.Wait()
	})
}
