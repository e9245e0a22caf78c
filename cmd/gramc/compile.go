package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"gramc/internal/affinity"
	"gramc/internal/buildpipeline"
	"gramc/internal/console"
	"gramc/internal/diag"
	"gramc/internal/diagfmt"
	"gramc/internal/observ"
	"gramc/internal/trace"
	"gramc/internal/version"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] [file.jj|file.jjt|file.jtb|directory]...",
	Short: "Compile grammar files",
	Long: `Compile runs the tool for each grammar, compiles grammars produced by
JJTree and JTB, annotates generated sources and reports diagnostics against
the grammar that was edited. Without arguments the working directory is
scanned.`,
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().String("format", "pretty", "output format (pretty|json|sarif|short)")
	compileCmd.Flags().Int("jobs", 0, "max independent directory trees compiled in parallel (0=auto)")
	compileCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	compileCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	compileCmd.Flags().Bool("transcript", false, "mirror tool output to stderr")
}

// compileRunner owns the state shared by every orchestrator of one command:
// the marker index with its loop, the diagnostic bag and the timer.
type compileRunner struct {
	ws      *workspace
	bag     *diag.Bag
	markers *diag.MarkerIndex
	loop    *affinity.Loop
	timer   *observ.Timer
	mirror  io.Writer
	jobs    int
	baseDir string
}

func newCompileRunner(ws *workspace, jobs int, mirror io.Writer, baseDir string) *compileRunner {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return &compileRunner{
		ws:      ws,
		bag:     diag.NewBag(),
		markers: diag.NewMarkerIndex(),
		loop:    affinity.NewLoop(),
		timer:   observ.NewTimer(),
		mirror:  mirror,
		jobs:    jobs,
		baseDir: baseDir,
	}
}

func (r *compileRunner) Close() { r.loop.Close() }

// run compiles every group of plan. Groups run concurrently, files of a group
// in order. Per-file errors are collected and do not stop other files.
func (r *compileRunner) run(ctx context.Context, plan buildpipeline.Plan, progress buildpipeline.ProgressSink) ([]buildpipeline.Result, error) {
	perGroup := make([][]buildpipeline.Result, len(plan.Groups))
	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(min(r.jobs, len(plan.Groups)), 1))
	for i, group := range plan.Groups {
		g.Go(func() error {
			orch := buildpipeline.New(buildpipeline.Options{
				Config:   r.ws.cfg,
				Store:    r.ws.store,
				Sink:     console.New(r.mirror, diag.BagReporter{Bag: r.bag}),
				Markers:  r.markers,
				Loop:     r.loop,
				Progress: progress,
				Timer:    r.timer,
				BaseDir:  r.baseDir,
			})
			for _, file := range group {
				if err := gctx.Err(); err != nil {
					return err
				}
				res, err := orch.Compile(gctx, file)
				perGroup[i] = append(perGroup[i], res)
				if err != nil {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
				}
			}
			return nil
		})
	}
	waitErr := g.Wait()
	var results []buildpipeline.Result
	for _, rs := range perGroup {
		results = append(results, rs...)
	}
	return results, errors.Join(append(errs, waitErr)...)
}

func runCompile(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "json", "sarif", "short":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	showTranscript, err := cmd.Flags().GetBool("transcript")
	if err != nil {
		return fmt.Errorf("failed to get transcript flag: %w", err)
	}
	flags := cmd.Root().PersistentFlags()
	quiet, err := flags.GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	showTimings, err := flags.GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	maxDiagnostics, err := flags.GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	if len(args) == 0 {
		args = []string{cwd}
	}
	ws, err := openWorkspace(cmd, cwd)
	if err != nil {
		return err
	}
	files, err := collectGrammarFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		if !quiet {
			fmt.Fprintln(cmd.ErrOrStderr(), "no grammar files found")
		}
		return nil
	}

	ctx := cmd.Context()
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "compile", 0)
	defer span.WithExtra("files", fmt.Sprint(len(files))).End("")
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID(), GID: trace.GoroutineID()})

	plan := buildpipeline.PlanFiles(files, ws.store)
	if plan.Cycle != "" {
		slog.Warn("provenance cycle, compiling each file on its own", "files", plan.Cycle)
	}
	for _, f := range plan.Covered {
		slog.Info("compiled through its origin", "file", f)
	}

	view := progressView{mode: mode, format: format, quiet: quiet, transcript: showTranscript, groups: len(plan.Groups)}
	useTUI := view.enabled()
	var mirror io.Writer
	if showTranscript && !useTUI {
		mirror = cmd.ErrOrStderr()
	}
	runner := newCompileRunner(ws, jobs, mirror, cwd)
	defer runner.Close()

	var roots []string
	for _, group := range plan.Groups {
		roots = append(roots, group...)
	}
	compileAll := func(ctx context.Context, progress buildpipeline.ProgressSink) ([]buildpipeline.Result, error) {
		return runner.run(ctx, plan, progress)
	}
	var (
		results []buildpipeline.Result
		runErr  error
	)
	if useTUI {
		results, runErr = runWithUI(ctx, "compiling", buildpipeline.DisplayPaths(roots, cwd), compileAll)
	} else {
		results, runErr = compileAll(ctx, nil)
	}

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	out := cmd.OutOrStdout()
	items := runner.bag.Items()
	if err := renderDiagnostics(out, format, items, results, renderOptions{
		pathMode: pathMode,
		baseDir:  cwd,
		max:      maxDiagnostics,
		quiet:    quiet,
	}); err != nil {
		return fmt.Errorf("failed to format diagnostics: %w", err)
	}

	if showTimings {
		var total buildpipeline.Timings
		for _, r := range results {
			total.Merge(r.Timings)
		}
		printStageTimings(cmd.ErrOrStderr(), total, runner.timer)
	}

	if runErr != nil {
		return runErr
	}
	if runner.bag.HasErrors() {
		return exitError{code: 1}
	}
	return nil
}

type renderOptions struct {
	pathMode diagfmt.PathMode
	baseDir  string
	max      int
	quiet    bool
}

func renderDiagnostics(w io.Writer, format string, items []diag.Diagnostic, results []buildpipeline.Result, opts renderOptions) error {
	switch format {
	case "json":
		return diagfmt.JSON(w, items, runsJSON(results, opts), diagfmt.JSONOpts{
			PathMode: opts.pathMode,
			BaseDir:  opts.baseDir,
			Max:      opts.max,
		})
	case "sarif":
		return diagfmt.Sarif(w, items, opts.baseDir, diagfmt.SarifRunMeta{
			ToolName:       "gramc",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		})
	}
	shown := items
	if opts.max > 0 && len(shown) > opts.max {
		shown = shown[:opts.max]
	}
	switch format {
	case "short":
		_, err := io.WriteString(w, diag.FormatShort(shown, opts.baseDir))
		return err
	default:
		if err := diagfmt.Pretty(w, shown, diagfmt.PrettyOpts{
			Color:    !color.NoColor,
			Context:  1,
			PathMode: opts.pathMode,
			BaseDir:  opts.baseDir,
		}); err != nil {
			return err
		}
		if len(shown) < len(items) {
			fmt.Fprintf(w, "... %d more not shown\n", len(items)-len(shown))
		}
		if !opts.quiet {
			fmt.Fprintln(w, diagfmt.Summary(items))
		}
		return nil
	}
}

// runsJSON lists every tool run, cascaded runs included.
func runsJSON(results []buildpipeline.Result, opts renderOptions) []diagfmt.RunJSON {
	var runs []diagfmt.RunJSON
	for _, top := range results {
		for _, r := range top.All() {
			run := diagfmt.RunJSON{
				File:     display(r.File, opts),
				Tool:     r.Kind.Tool(),
				Version:  r.Version,
				ExitCode: r.ExitCode,
			}
			if r.ReportedTo != r.File {
				run.ReportedTo = display(r.ReportedTo, opts)
			}
			for _, g := range r.Generated {
				run.Generated = append(run.Generated, display(g, opts))
			}
			runs = append(runs, run)
		}
	}
	return runs
}

func display(path string, opts renderOptions) string {
	if opts.pathMode == diagfmt.PathModeAbsolute {
		return path
	}
	return buildpipeline.DisplayPath(path, opts.baseDir)
}
