// Package snapshot fingerprints a directory tree so that files created or
// modified by an external tool can be discovered after it exits.
//
// A walk costs O(files) and runs once before and once after every tool
// invocation. It is not safe against concurrent external mutation of the same
// tree and is meant for grammar source trees, which are small.
package snapshot

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gramc/internal/failure"
)

// Fingerprint identifies one version of a regular file.
type Fingerprint struct {
	Path    string // absolute
	ModTime time.Time
}

// Equal requires both path and modification time to match.
func (f Fingerprint) Equal(o Fingerprint) bool {
	return f.Path == o.Path && f.ModTime.Equal(o.ModTime)
}

// State tells a real snapshot from the absence of one.
type State uint8

const (
	// NoBaseline means no snapshot could be taken; diffs against it are unknown.
	NoBaseline State = iota
	Taken
)

func (s State) String() string {
	switch s {
	case NoBaseline:
		return "no-baseline"
	case Taken:
		return "taken"
	}
	return "unknown"
}

// Snapshot is the set of fingerprints under Root at one instant.
type Snapshot struct {
	Root  string
	State State
	files map[string]Fingerprint
}

// None returns the no-baseline snapshot for root.
func None(root string) Snapshot {
	return Snapshot{Root: root, State: NoBaseline}
}

// Len returns the number of fingerprinted files.
func (s Snapshot) Len() int { return len(s.files) }

// Lookup returns the fingerprint recorded for path.
func (s Snapshot) Lookup(path string) (Fingerprint, bool) {
	fp, ok := s.files[path]
	return fp, ok
}

// Fingerprints returns every fingerprint sorted by path.
func (s Snapshot) Fingerprints() []Fingerprint {
	out := make([]Fingerprint, 0, len(s.files))
	for _, fp := range s.files {
		out = append(out, fp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

var skipDirs = map[string]struct{}{
	".git":   {},
	".hg":    {},
	".svn":   {},
	".gramc": {},
}

// Take walks root recursively and fingerprints each regular file. Directories
// are descended, never fingerprinted. Entries that cannot be read are logged
// and skipped. If root itself cannot be read the no-baseline snapshot is
// returned together with the error.
func Take(root string) (Snapshot, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return None(root), &failure.FilesystemError{Op: "resolve", Path: root, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return None(abs), &failure.FilesystemError{Op: "stat", Path: abs, Err: err}
	}
	if !info.IsDir() {
		return None(abs), &failure.FilesystemError{Op: "snapshot", Path: abs, Err: errors.New("not a directory")}
	}

	snap := Snapshot{Root: abs, State: Taken, files: make(map[string]Fingerprint)}
	walkErr := filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == abs {
				return err
			}
			slog.Warn("snapshot: skipping unreadable entry", "path", path, "err", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if _, skip := skipDirs[d.Name()]; skip && path != abs {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			slog.Warn("snapshot: cannot stat file", "path", path, "err", err)
			return nil
		}
		snap.files[path] = Fingerprint{Path: path, ModTime: fi.ModTime()}
		return nil
	})
	if walkErr != nil {
		return None(abs), &failure.FilesystemError{Op: "walk", Path: abs, Err: walkErr}
	}
	return snap, nil
}

// Diff returns the paths in next whose fingerprint has no equal counterpart
// in prev, sorted. known is false when prev is NoBaseline: the result is then
// unknown rather than empty.
func Diff(prev, next Snapshot) (paths []string, known bool) {
	if prev.State == NoBaseline || next.State == NoBaseline {
		return nil, false
	}
	paths = make([]string, 0)
	for path, fp := range next.files {
		old, ok := prev.files[path]
		if ok && old.Equal(fp) {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, true
}
