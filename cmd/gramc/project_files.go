package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"gramc/internal/grammar"
	"gramc/internal/project"
	"gramc/internal/provenance"
)

// workspace is the loaded configuration plus the provenance store of the
// project root.
type workspace struct {
	cfg   *project.Config
	store *provenance.Store
}

// openWorkspace loads --config, or gramc.toml found upwards from startDir.
func openWorkspace(cmd *cobra.Command, startDir string) (*workspace, error) {
	configPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	var cfg *project.Config
	if configPath != "" {
		cfg, err = project.LoadFile(configPath)
	} else {
		cfg, err = project.Load(startDir)
	}
	if err != nil {
		return nil, err
	}
	store, err := provenance.Open(cfg.Root)
	if err != nil {
		return nil, err
	}
	return &workspace{cfg: cfg, store: store}, nil
}

// collectGrammarFiles expands directories into the grammar files below them.
// Explicit file arguments must be grammar files.
func collectGrammarFiles(args []string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = filepath.Clean(p)
		}
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		out = append(out, abs)
	}
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to stat path: %w", err)
		}
		if !st.IsDir() {
			if !grammar.IsCompilable(arg) {
				return nil, fmt.Errorf("%s: not a grammar file (expected .jj, .jjt or .jtb)", arg)
			}
			add(arg)
			continue
		}
		files, err := listGrammarFiles(arg)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}
	sort.Strings(out)
	return out, nil
}

// listGrammarFiles walks dir, skipping hidden directories such as the state
// directory.
func listGrammarFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if grammar.IsCompilable(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}
