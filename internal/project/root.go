package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gramc/internal/provenance"
)

// ManifestName is the configuration file Discover looks for.
const ManifestName = "gramc.toml"

// vcsMarkers end the upward search: a project never spans repositories.
var vcsMarkers = []string{".git", ".hg", ".svn"}

// Discovery is where the upward search from a start directory stopped.
type Discovery struct {
	// Root is the project root. Without any marker it is the start directory.
	Root string
	// Manifest is the gramc.toml inside Root, empty when there is none.
	Manifest string
}

// Discover walks up from startDir. The first directory holding gramc.toml
// or a .gramc state directory is the root; a repository root without either
// ends the search there.
func Discover(startDir string) (Discovery, error) {
	if startDir == "" {
		startDir = "."
	}
	start, err := filepath.Abs(startDir)
	if err != nil {
		return Discovery{}, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for dir := start; ; {
		manifest := filepath.Join(dir, ManifestName)
		switch ok, err := exists(manifest); {
		case err != nil:
			return Discovery{}, err
		case ok:
			return Discovery{Root: dir, Manifest: manifest}, nil
		}
		for _, marker := range append([]string{provenance.StateDir}, vcsMarkers...) {
			ok, err := exists(filepath.Join(dir, marker))
			if err != nil {
				return Discovery{}, err
			}
			if ok {
				return Discovery{Root: dir}, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Discovery{Root: start}, nil
		}
		dir = parent
	}
}

func exists(p string) (bool, error) {
	_, err := os.Stat(p)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %q: %w", p, err)
}
