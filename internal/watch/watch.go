// Package watch reports debounced batches of file changes under a directory
// tree.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Op is the kind of a change.
type Op int

const (
	OpCreate Op = iota
	OpWrite
	OpRemove
	OpRename
)

func (op Op) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Change is one file system change. Path is absolute.
type Change struct {
	Path string
	Op   Op
	Time time.Time
}

// Handler receives one batch per quiet period, deduplicated by path and sorted.
// It runs on a single goroutine; a slow handler delays the next batch.
type Handler func(ctx context.Context, changes []Change)

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	// Ignore lists base names of directories and files to skip. Glob
	// patterns are matched with filepath.Match.
	Ignore []string
	// Filter, when set, keeps only matching file paths.
	Filter func(path string) bool
	// BufferSize bounds pending changes; excess changes are dropped.
	BufferSize int
}

// DefaultIgnore is used when Options.Ignore is nil.
var DefaultIgnore = []string{".git", ".hg", ".svn", ".gramc", ".idea", "*.swp", "*.tmp", "*~"}

// Watcher watches a directory tree recursively.
type Watcher struct {
	root    string
	fsw     *fsnotify.Watcher
	handler Handler
	opts    Options

	changes chan Change
	runOnce sync.Once
}

// New prepares a watcher on root. Run starts it.
func New(root string, handler Handler, opts Options) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 100 * time.Millisecond
	}
	if opts.Ignore == nil {
		opts.Ignore = DefaultIgnore
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 1024
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		root:    abs,
		fsw:     fsw,
		handler: handler,
		opts:    opts,
		changes: make(chan Change, opts.BufferSize),
	}, nil
}

// Run watches until ctx is done. A pending batch is flushed before returning.
// Run may be called once.
func (w *Watcher) Run(ctx context.Context) error {
	ran := false
	w.runOnce.Do(func() { ran = true })
	if !ran {
		return errors.New("watch: Run called twice")
	}
	defer w.fsw.Close()

	if err := w.addRecursive(w.root); err != nil {
		return err
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.debounceLoop(ctx)
	}()
	w.processEvents(ctx)
	<-done
	return nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			slog.Debug("watch: skipping unreadable entry", "path", path, "err", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			slog.Warn("watch: cannot watch directory", "path", path, "err", err)
		}
		return nil
	})
}

func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}
	for _, part := range splitPath(rel) {
		for _, pattern := range w.opts.Ignore {
			if part == pattern {
				return true
			}
			if ok, _ := filepath.Match(pattern, part); ok {
				return true
			}
		}
	}
	return false
}

func splitPath(p string) []string {
	var parts []string
	for p != "" && p != "." && p != string(filepath.Separator) {
		dir, base := filepath.Split(p)
		parts = append(parts, base)
		p = filepath.Clean(dir)
		if p == dir {
			break
		}
	}
	return parts
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.ignored(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						slog.Warn("watch: cannot watch new directory", "path", event.Name, "err", err)
					}
					continue
				}
			}
			if w.opts.Filter != nil && !w.opts.Filter(event.Name) {
				continue
			}
			change := Change{Path: event.Name, Op: convertOp(event.Op), Time: time.Now()}
			select {
			case w.changes <- change:
			default:
				slog.Warn("watch: change buffer full, dropping event", "path", event.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("watch: watcher error", "err", err)
		}
	}
}

func convertOp(op fsnotify.Op) Op {
	switch {
	case op.Has(fsnotify.Create):
		return OpCreate
	case op.Has(fsnotify.Write):
		return OpWrite
	case op.Has(fsnotify.Remove):
		return OpRemove
	case op.Has(fsnotify.Rename):
		return OpRename
	default:
		return OpWrite
	}
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	var (
		batch  []Change
		timer  *time.Timer
		timerC <-chan time.Time
	)
	flush := func(ctx context.Context) {
		if len(batch) > 0 && w.handler != nil {
			w.handler(ctx, Dedup(batch))
		}
		batch = batch[:0]
		if timer != nil {
			timer.Stop()
			timer, timerC = nil, nil
		}
	}
	for {
		select {
		case <-ctx.Done():
			flush(context.WithoutCancel(ctx))
			return
		case change := <-w.changes:
			batch = append(batch, change)
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.opts.Debounce)
			}
		case <-timerC:
			flush(ctx)
		}
	}
}

// Dedup keeps the latest change per path, sorted by path.
func Dedup(changes []Change) []Change {
	latest := make(map[string]Change, len(changes))
	for _, c := range changes {
		latest[c.Path] = c
	}
	out := make([]Change, 0, len(latest))
	for _, c := range latest {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Paths lists the paths of changes that still exist as files.
func Paths(changes []Change) []string {
	out := make([]string, 0, len(changes))
	for _, c := range changes {
		if c.Op == OpRemove {
			continue
		}
		if info, err := os.Stat(c.Path); err == nil && info.Mode().IsRegular() {
			out = append(out, c.Path)
		}
	}
	return out
}
