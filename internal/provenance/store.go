// Package provenance persists, per generated file, whether it is derived and
// which grammar produced it.
package provenance

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"gramc/internal/failure"
)

// StateDir is the per-project tool state directory.
const StateDir = ".gramc"

// Current schema version - increment when Record format changes
const schemaVersion uint16 = 1

// Record is the persisted metadata of one generated file.
type Record struct {
	Schema uint16
	// Path is the absolute path of the generated file.
	Path    string
	Derived bool
	// Origin is the grammar that produced Path, relative to the project root.
	Origin string
}

// Store keeps one msgpack record per generated file under <root>/.gramc/provenance.
// Thread-safe for concurrent access.
type Store struct {
	mu   sync.RWMutex
	root string
	dir  string
}

// Open returns the store of the project rooted at root. The directory is
// created lazily on the first Put.
func Open(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, &failure.FilesystemError{Op: "resolve", Path: root, Err: err}
	}
	return &Store{root: abs, dir: filepath.Join(abs, StateDir, "provenance")}, nil
}

// Root is the project root that origins are relative to.
func (s *Store) Root() string { return s.root }

// Rel expresses path relative to the project root, slash-separated. Paths
// outside the root are returned absolute.
func (s *Store) Rel(path string) string {
	if s == nil {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// Resolve is the inverse of Rel.
func (s *Store) Resolve(origin string) string {
	p := filepath.FromSlash(origin)
	if s == nil || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.root, p)
}

func (s *Store) pathFor(generated string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(generated)))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+".mp")
}

// Put writes rec atomically.
func (s *Store) Put(rec Record) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.Schema = schemaVersion
	p := s.pathFor(rec.Path)
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return &failure.FilesystemError{Op: "mkdir", Path: s.dir, Err: err}
	}
	f, err := os.CreateTemp(s.dir, "tmp-*")
	if err != nil {
		return &failure.FilesystemError{Op: "create", Path: s.dir, Err: err}
	}
	tmp := f.Name()
	defer func() {
		if rmErr := os.Remove(tmp); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			slog.Debug("provenance: temp cleanup failed", "path", tmp, "err", rmErr)
		}
	}()
	if err := msgpack.NewEncoder(f).Encode(&rec); err != nil {
		_ = f.Close()
		return fmt.Errorf("provenance: encode %s: %w", rec.Path, err)
	}
	if err := f.Close(); err != nil {
		return &failure.FilesystemError{Op: "close", Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, p); err != nil {
		return &failure.FilesystemError{Op: "rename", Path: p, Err: err}
	}
	return nil
}

// Get loads the record of generated. ok is false when none is stored or the
// stored one has an older schema.
func (s *Store) Get(generated string) (Record, bool, error) {
	if s == nil {
		return Record{}, false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(s.pathFor(generated))
}

func (s *Store) read(p string) (Record, bool, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, false, nil
		}
		return Record{}, false, &failure.FilesystemError{Op: "read", Path: p, Err: err}
	}
	var rec Record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return Record{}, false, fmt.Errorf("provenance: decode %s: %w", p, err)
	}
	if rec.Schema != schemaVersion {
		return Record{}, false, nil
	}
	return rec, true, nil
}

// Delete removes the record of generated, if any.
func (s *Store) Delete(generated string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.pathFor(generated)
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &failure.FilesystemError{Op: "remove", Path: p, Err: err}
	}
	return nil
}

// List returns every readable record sorted by path. Unreadable entries are
// logged and skipped.
func (s *Store) List() ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &failure.FilesystemError{Op: "readdir", Path: s.dir, Err: err}
	}
	out := make([]Record, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".mp" {
			continue
		}
		rec, ok, err := s.read(filepath.Join(s.dir, e.Name()))
		if err != nil {
			slog.Warn("provenance: skipping record", "path", e.Name(), "err", err)
			continue
		}
		if ok {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// DropAll removes every record.
func (s *Store) DropAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.RemoveAll(s.dir); err != nil {
		return &failure.FilesystemError{Op: "remove", Path: s.dir, Err: err}
	}
	return nil
}
