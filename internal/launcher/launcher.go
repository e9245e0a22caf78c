// Package launcher runs one external tool process and streams its merged
// stdout/stderr to a line sink.
package launcher

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"gramc/internal/failure"
	"gramc/internal/trace"
)

// Invocation is the immutable description of one tool run.
type Invocation struct {
	Argv    []string
	WorkDir string
}

// String renders the command line the way a shell user would type it.
func (inv Invocation) String() string {
	parts := make([]string, len(inv.Argv))
	for i, a := range inv.Argv {
		if a == "" || strings.ContainsAny(a, " \t\"") {
			parts[i] = `"` + a + `"`
		} else {
			parts[i] = a
		}
	}
	return strings.Join(parts, " ")
}

// LineSink receives each output line without its terminator.
type LineSink interface {
	WriteLine(line string)
}

// LineFunc adapts a function to LineSink.
type LineFunc func(line string)

func (f LineFunc) WriteLine(line string) { f(line) }

// Result is the outcome of a finished process.
type Result struct {
	ExitCode    int
	Interrupted bool
	Lines       int
	Elapsed     time.Duration
}

// Options tune a launch.
type Options struct {
	// Charset decodes the tool output; nil means UTF-8 passthrough.
	Charset encoding.Encoding
	// Env is appended to the current environment.
	Env []string
}

const maxLineSize = 1 << 20

// Launch starts inv with stdout and stderr merged into one pipe. A single
// goroutine drains the pipe line by line into sink so that the child never
// blocks on a full pipe buffer; Launch waits for that goroutine to reach EOF
// before returning.
//
// There is no timeout and ctx does not kill the process. A wait ended by a
// signal is logged at info level and reported through Result.Interrupted.
// A spawn failure or nonzero exit is returned as *failure.ToolInvocationError
// together with the partial Result.
func Launch(ctx context.Context, inv Invocation, sink LineSink, opts Options) (res Result, err error) {
	res = Result{ExitCode: -1}
	if len(inv.Argv) == 0 {
		return res, &failure.ToolInvocationError{Err: errors.New("empty command line")}
	}
	tool := filepath.Base(inv.Argv[0])

	span := trace.Begin(trace.FromContext(ctx), trace.ScopeTool, "launch:"+tool, trace.CurrentSpan(ctx).SpanID)
	defer func() {
		span.WithExtra("exit", fmt.Sprint(res.ExitCode)).WithError(err).End(inv.String())
	}()

	pr, pw, err := os.Pipe()
	if err != nil {
		return res, &failure.ToolInvocationError{Tool: tool, Err: fmt.Errorf("pipe: %w", err)}
	}
	defer pr.Close()

	// #nosec G204 -- argv comes from the user's own configuration
	cmd := exec.Command(inv.Argv[0], inv.Argv[1:]...)
	cmd.Dir = inv.WorkDir
	cmd.Stdout = pw
	cmd.Stderr = pw
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		pw.Close()
		return res, &failure.ToolInvocationError{Tool: tool, Err: err}
	}
	// The child holds its own copy of the write end; EOF arrives when it exits.
	pw.Close()

	var src io.Reader = pr
	if opts.Charset != nil {
		src = transform.NewReader(pr, opts.Charset.NewDecoder())
	}

	done := make(chan int, 1)
	go func() {
		n := 0
		sc := bufio.NewScanner(src)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for sc.Scan() {
			if sink != nil {
				sink.WriteLine(strings.TrimRight(sc.Text(), "\r"))
			}
			n++
		}
		if err := sc.Err(); err != nil {
			slog.Warn("launcher: output read failed", "tool", tool, "err", err)
			// keep draining so the child never blocks on a full pipe
			_, _ = io.Copy(io.Discard, src)
		}
		done <- n
	}()

	res.Lines = <-done
	waitErr := cmd.Wait()
	res.Elapsed = time.Since(start)

	if waitErr == nil {
		res.ExitCode = 0
		return res, nil
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		if res.ExitCode < 0 {
			res.Interrupted = true
			slog.Info("launcher: wait interrupted", "tool", tool, "dir", inv.WorkDir, "err", waitErr)
			return res, nil
		}
		return res, &failure.ToolInvocationError{Tool: tool, ExitCode: res.ExitCode}
	}
	return res, &failure.ToolInvocationError{Tool: tool, Err: waitErr}
}
