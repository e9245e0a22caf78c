package trace

import (
	"bytes"
	"context"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

var (
	seq     atomic.Uint64
	spanIDs atomic.Uint64
)

func nextSeq() uint64 { return seq.Add(1) }

// GoroutineID parses the current goroutine number from runtime.Stack.
func GoroutineID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i > 0 {
		if id, err := strconv.ParseUint(string(b[:i]), 10, 64); err == nil {
			return id
		}
	}
	return 0
}

// Span is an open begin event. A nil or disabled Span accepts every call.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	gid     uint64
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
}

// openSpans holds the spans begun and not yet ended, for heartbeats.
var openSpans sync.Map // uint64 -> *Span

// Begin emits a begin event and returns the span. Spans filtered out by the
// tracer's level still register as open so heartbeats can name them, and may
// still emit their end event when they fail.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Enabled() {
		return &Span{}
	}
	s := &Span{
		tracer:  t,
		id:      spanIDs.Add(1),
		parent:  parent,
		gid:     GoroutineID(),
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	openSpans.Store(s.id, s)
	s.emit(KindSpanBegin, "", nil)
	return s
}

func (s *Span) emit(kind Kind, detail string, extra map[string]string) {
	s.tracer.Emit(&Event{
		Time:     time.Now(),
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		GID:      s.gid,
		Name:     s.name,
		Detail:   detail,
		Extra:    extra,
	})
}

func (s *Span) live() bool { return s != nil && s.tracer != nil }

// WithExtra attaches key=value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if !s.live() {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// WithError records err on the end event; nil is ignored. Failed spans pass
// LevelError.
func (s *Span) WithError(err error) *Span {
	if err == nil {
		return s
	}
	return s.WithExtra("err", err.Error())
}

// End emits the end event and returns the span duration.
func (s *Span) End(detail string) time.Duration {
	if !s.live() {
		return 0
	}
	openSpans.Delete(s.id)
	dur := time.Since(s.started)
	s.WithExtra("ms", strconv.FormatFloat(float64(dur.Microseconds())/1000, 'f', 3, 64))
	s.emit(KindSpanEnd, detail, s.extra)
	return dur
}

func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// OpenSpan describes a span that has begun and not ended.
type OpenSpan struct {
	ID      uint64
	Scope   Scope
	Name    string
	Elapsed time.Duration
}

// Open lists the open spans of t, oldest first.
func Open(t Tracer) []OpenSpan {
	now := time.Now()
	var out []OpenSpan
	openSpans.Range(func(_, v any) bool {
		s := v.(*Span)
		if s.tracer == t {
			out = append(out, OpenSpan{ID: s.id, Scope: s.scope, Name: s.name, Elapsed: now.Sub(s.started)})
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Point emits an instant event.
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	if t == nil || !t.Enabled() {
		return
	}
	t.Emit(&Event{Time: time.Now(), Kind: KindPoint, Scope: scope, ParentID: parent, GID: GoroutineID(), Name: name, Detail: detail})
}

type tracerKey struct{}

type spanKey struct{}

// SpanContext identifies the enclosing span.
type SpanContext struct {
	SpanID uint64
	GID    uint64
}

// FromContext returns the tracer of ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// CurrentSpan returns the enclosing span of ctx; zero when there is none.
func CurrentSpan(ctx context.Context) SpanContext {
	if ctx != nil {
		if sc, ok := ctx.Value(spanKey{}).(SpanContext); ok {
			return sc
		}
	}
	return SpanContext{}
}

func WithSpanContext(ctx context.Context, sc SpanContext) context.Context {
	return context.WithValue(ctx, spanKey{}, sc)
}
