package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"gramc/internal/affinity"
	"gramc/internal/annotate"
	"gramc/internal/console"
	"gramc/internal/diag"
	"gramc/internal/extract"
	"gramc/internal/failure"
	"gramc/internal/grammar"
	"gramc/internal/launcher"
	"gramc/internal/observ"
	"gramc/internal/provenance"
	"gramc/internal/snapshot"
	"gramc/internal/trace"
)

// maxDepth bounds cascades in case a tool keeps producing grammars.
const maxDepth = 8

// Provider supplies tool configuration. It is read-only input.
type Provider interface {
	// ToolSettings resolves the settings of the tool that compiles kind.
	ToolSettings(kind grammar.Kind) (grammar.Settings, error)
	// SuppressWarnings reports whether generated Java sources get a
	// suppression annotation.
	SuppressWarnings() bool
	// LaunchOptions returns process options such as the output charset.
	LaunchOptions() (launcher.Options, error)
}

// Options wires an Orchestrator.
type Options struct {
	Config   Provider
	Store    *provenance.Store
	Sink     console.Sink
	Markers  *diag.MarkerIndex
	Loop     *affinity.Loop
	Progress ProgressSink
	Timer    *observ.Timer
	// BaseDir shortens file names in progress events.
	BaseDir string
}

// Session is the mutable state of one Orchestrator.
type Session struct {
	// Depth is the nesting level of the compile in progress; 0 when idle.
	Depth int
	// Last is the most recent snapshot taken.
	Last snapshot.Snapshot
	// Transcript is the output region of the innermost running tool.
	Transcript *console.Transcript
}

// Orchestrator compiles grammar files one top-level call at a time.
// Separate instances may run concurrently.
type Orchestrator struct {
	opts    Options
	extract *extract.Extractor

	mu      sync.Mutex
	session Session
}

// New returns an orchestrator. Sink, Markers and Loop default to a discarding
// sink, a private index and a private loop.
func New(opts Options) *Orchestrator {
	if opts.Sink == nil {
		opts.Sink = console.Discard{}
	}
	if opts.Markers == nil {
		opts.Markers = diag.NewMarkerIndex()
	}
	if opts.Loop == nil {
		opts.Loop = affinity.NewLoop()
	}
	return &Orchestrator{
		opts:    opts,
		extract: extract.New(opts.Markers, opts.Loop, opts.Store, opts.Sink),
		session: Session{Last: snapshot.None("")},
	}
}

// Result describes one compile and its cascaded compiles.
type Result struct {
	File     string
	Kind     grammar.Kind
	Version  string
	ExitCode int
	// Generated lists the files the tool produced or touched.
	Generated []string
	// Diagnostics are the ones extracted from this compile's own output.
	Diagnostics []diag.Diagnostic
	// ReportedTo is the file the diagnostics were attributed to.
	ReportedTo string
	Nested     []Result
	Timings    Timings
}

// All flattens r and its nested results, depth first.
func (r Result) All() []Result {
	out := []Result{r}
	for _, n := range r.Nested {
		out = append(out, n.All()...)
	}
	return out
}

// Session returns a copy of the current session state.
func (o *Orchestrator) Session() Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session
}

// Compile runs the tool for file, cascades into produced intermediate grammars
// and reports diagnostics. Tool failures are logged and do not fail the call;
// the returned error is a configuration or usage error that stopped the
// compile before the tool ran.
func (o *Orchestrator) Compile(ctx context.Context, file string) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return Result{File: file}, &failure.FilesystemError{Op: "resolve", Path: file, Err: err}
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.compile(ctx, abs)
}

func (o *Orchestrator) compile(ctx context.Context, file string) (Result, error) {
	kind := grammar.KindOf(file)
	res := Result{File: file, Kind: kind, ExitCode: -1, ReportedTo: file}
	if kind == grammar.Unknown {
		return res, fmt.Errorf("%s: not a grammar file", file)
	}
	strat, _ := grammar.StrategyFor(kind)

	s := &o.session
	s.Depth++
	defer func() { s.Depth-- }()
	depth := s.Depth
	if depth > maxDepth {
		return res, fmt.Errorf("%s: cascade deeper than %d", file, maxDepth)
	}

	scope := trace.ScopeCompile
	if depth > 1 {
		scope = trace.ScopeStage
	}
	span := trace.Begin(trace.FromContext(ctx), scope, "compile:"+kind.Tool(), trace.CurrentSpan(ctx).SpanID)
	defer span.WithExtra("depth", fmt.Sprint(depth)).End(file)
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID(), GID: trace.GoroutineID()})

	display := DisplayPath(file, o.opts.BaseDir)
	stage := func(st Stage) func(error) {
		start := time.Now()
		endTimer := o.opts.Timer.Track(string(st))
		emit(o.opts.Progress, Event{File: display, Stage: st, Status: StatusWorking, Depth: depth})
		return func(err error) {
			elapsed := time.Since(start)
			res.Timings.Add(st, elapsed)
			endTimer(kind.Tool())
			status := StatusDone
			if err != nil {
				status = StatusError
			}
			emit(o.opts.Progress, Event{File: display, Stage: st, Status: status, Depth: depth, Err: err, Elapsed: elapsed})
		}
	}

	if depth == 1 {
		o.opts.Sink.Clear()
		if err := o.extract.Begin(); err != nil {
			return res, err
		}
	}

	done := stage(StageConfigure)
	inv, lopts, err := o.configure(kind, file)
	done(err)
	if err != nil {
		o.opts.Sink.Println(err.Error())
		return res, err
	}

	done = stage(StageSnapshot)
	before, err := snapshot.Take(inv.WorkDir)
	if err != nil {
		slog.Warn("snapshot before tool run failed", "path", inv.WorkDir, "err", err)
	}
	s.Last = before
	done(err)

	done = stage(StageInvoke)
	o.opts.Sink.Println("> " + inv.String())
	tr := console.Open(o.opts.Sink)
	s.Transcript = tr
	feed := &reportFeed{tr: tr, ex: o.extract, target: file, parser: strat.Dialect}
	lres, err := launcher.Launch(ctx, inv, feed, lopts)
	res.ExitCode = lres.ExitCode
	res.Version = o.extract.Version(tr)
	var tie *failure.ToolInvocationError
	if errors.As(err, &tie) {
		tie.Tool = kind.Tool()
		tie.File = file
		tie.Version = res.Version
		slog.Warn("tool run failed", "tool", tie.Tool, "file", file, "version", tie.Version, "exit_code", tie.ExitCode, "err", tie.Err)
	} else if err != nil {
		slog.Warn("tool run failed", "tool", kind.Tool(), "file", file, "err", err)
	}
	done(err)

	done = stage(StageDiff)
	after, err := snapshot.Take(inv.WorkDir)
	if err != nil {
		slog.Warn("snapshot after tool run failed", "path", inv.WorkDir, "err", err)
	}
	s.Last = after
	paths, known := snapshot.Diff(before, after)
	if !known {
		slog.Info("no snapshot baseline, skipping produced files", "file", file)
	}
	done(err)

	produced := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != file {
			produced = append(produced, p)
		}
	}
	res.Generated = produced

	done = stage(StageAnnotate)
	origin := o.opts.Store.Rel(file)
	marked := make([]string, 0, len(produced))
	for _, p := range produced {
		if _, err := annotate.MarkProvenance(o.opts.Store, p, origin); err != nil {
			slog.Warn("cannot record provenance", "path", p, "err", err)
			continue
		}
		marked = append(marked, p)
	}
	var cascade []string
	for _, p := range marked {
		if kind.Preprocessor() && grammar.KindOf(p) == grammar.Grammar {
			cascade = append(cascade, p)
			continue
		}
		if _, err := annotate.MaybeRewrite(p, o.opts.Config.SuppressWarnings()); err != nil {
			if failure.IsFilesystem(err) {
				slog.Warn("cannot annotate generated file", "path", p, "err", err)
			} else {
				slog.Info("generated file left unannotated", "path", p, "err", err)
			}
		}
	}
	done(nil)

	if len(cascade) > 0 {
		done = stage(StageCascade)
		var cascadeErr error
		for _, p := range cascade {
			nested, err := o.compile(ctx, p)
			if err != nil {
				slog.Warn("cascaded compile failed", "file", p, "err", err)
				cascadeErr = errors.Join(cascadeErr, err)
			}
			res.Nested = append(res.Nested, nested)
		}
		done(cascadeErr)
	}

	done = stage(StageReport)
	feed.flush(true)
	if feed.err != nil {
		slog.Warn("diagnostic extraction failed", "file", file, "err", feed.err)
	}
	res.Diagnostics = feed.diags
	if feed.file != "" {
		res.ReportedTo = feed.file
	}
	done(feed.err)
	return res, nil
}

func (o *Orchestrator) configure(kind grammar.Kind, file string) (launcher.Invocation, launcher.Options, error) {
	if o.opts.Config == nil {
		return launcher.Invocation{}, launcher.Options{}, &failure.ConfigurationError{Key: kind.Tool(), Err: errors.New("no configuration")}
	}
	settings, err := o.opts.Config.ToolSettings(kind)
	if err != nil {
		return launcher.Invocation{}, launcher.Options{}, err
	}
	inv, err := grammar.Invocation(kind, settings, file)
	if err != nil {
		return launcher.Invocation{}, launcher.Options{}, err
	}
	lopts, err := o.opts.Config.LaunchOptions()
	if err != nil {
		return launcher.Invocation{}, launcher.Options{}, err
	}
	return inv, lopts, nil
}
