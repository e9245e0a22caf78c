package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"gramc/internal/buildpipeline"
	"gramc/internal/diagfmt"
	"gramc/internal/grammar"
	"gramc/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] [directory]",
	Short: "Recompile grammars when they change",
	Long: `Watch compiles the grammars below a directory whenever they are saved.
Grammars generated by JJTree or JTB are not compiled on their own; they are
recompiled through the file they were generated from.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("format", "pretty", "output format (pretty|short)")
	watchCmd.Flags().Bool("initial", true, "compile every grammar once before watching")
	watchCmd.Flags().Duration("debounce", 0, "quiet period before a batch is compiled (default from gramc.toml)")
	watchCmd.Flags().Bool("transcript", false, "mirror tool output to stderr")
}

func runWatch(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "short" {
		return fmt.Errorf("unknown format: %s", format)
	}
	initial, err := cmd.Flags().GetBool("initial")
	if err != nil {
		return fmt.Errorf("failed to get initial flag: %w", err)
	}
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return fmt.Errorf("failed to get debounce flag: %w", err)
	}
	showTranscript, err := cmd.Flags().GetBool("transcript")
	if err != nil {
		return fmt.Errorf("failed to get transcript flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	ws, err := openWorkspace(cmd, root)
	if err != nil {
		return err
	}
	if debounce <= 0 {
		debounce = ws.cfg.Debounce()
	}

	var mirror io.Writer
	if showTranscript {
		mirror = cmd.ErrOrStderr()
	}
	runner := newCompileRunner(ws, 0, mirror, root)
	defer runner.Close()
	out := cmd.OutOrStdout()
	opts := renderOptions{pathMode: diagfmt.PathModeAuto, baseDir: root, quiet: quiet}

	compile := func(ctx context.Context, files []string) {
		files = sourceGrammars(ws, buildpipeline.FilterUnderRoot(files, root))
		if len(files) == 0 {
			return
		}
		start := time.Now()
		plan := buildpipeline.PlanFiles(files, ws.store)
		results, err := runner.run(ctx, plan, nil)
		if err != nil && ctx.Err() == nil {
			slog.Error("compile failed", "err", err)
		}
		if !quiet {
			fmt.Fprintf(out, "[%s] compiled %d grammar(s) in %s\n", time.Now().Format("15:04:05"), len(results), time.Since(start).Round(time.Millisecond))
		}
		if err := renderDiagnostics(out, format, runner.bag.Items(), results, opts); err != nil {
			slog.Error("cannot render diagnostics", "err", err)
		}
	}

	w, err := watch.New(root, func(ctx context.Context, changes []watch.Change) {
		compile(ctx, watch.Paths(changes))
	}, watch.Options{
		Debounce: debounce,
		Filter:   grammar.IsCompilable,
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}

	if initial {
		files, err := listGrammarFiles(root)
		if err != nil {
			return err
		}
		compile(cmd.Context(), files)
	}
	if !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (debounce %s), press Ctrl+C to stop\n", root, debounce)
	}
	return w.Run(cmd.Context())
}

// sourceGrammars drops grammars recorded as generated. Their origin's cascade
// recompiles them, and compiling them alone would report against the wrong
// file.
func sourceGrammars(ws *workspace, files []string) []string {
	out := files[:0:0]
	for _, f := range files {
		rec, ok, err := ws.store.Get(f)
		if err != nil {
			slog.Warn("provenance lookup failed", "file", f, "err", err)
		}
		if ok && rec.Derived {
			if _, statErr := os.Stat(ws.store.Resolve(rec.Origin)); statErr == nil {
				continue
			}
		}
		out = append(out, f)
	}
	return out
}
