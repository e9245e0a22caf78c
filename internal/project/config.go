// Package project locates and decodes gramc.toml.
package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"gramc/internal/failure"
	"gramc/internal/grammar"
	"gramc/internal/launcher"
)

// DefaultDebounce is the watch debounce when [watch].debounce is unset.
const DefaultDebounce = 200 * time.Millisecond

// JavaSection is [java].
type JavaSection struct {
	Command    string `toml:"command"`
	JVMOptions string `toml:"jvm_options"`
}

// ToolSection is [javacc], [jjtree] or [jtb].
type ToolSection struct {
	Jar     string         `toml:"jar"`
	Args    string         `toml:"args"`
	Options map[string]any `toml:"options"`
}

// OutputSection is [output].
type OutputSection struct {
	SuppressWarnings bool   `toml:"suppress_warnings"`
	Encoding         string `toml:"encoding"`
}

// WatchSection is [watch].
type WatchSection struct {
	Debounce string `toml:"debounce"`
}

// Config is the decoded project configuration.
type Config struct {
	// Path is the manifest that was read; empty when defaults are in use.
	Path string `toml:"-"`
	// Root is the project root: the manifest directory, or the start
	// directory when there is no manifest.
	Root string `toml:"-"`

	Java   JavaSection   `toml:"java"`
	JavaCC ToolSection   `toml:"javacc"`
	JJTree ToolSection   `toml:"jjtree"`
	JTB    ToolSection   `toml:"jtb"`
	Output OutputSection `toml:"output"`
	Watch  WatchSection  `toml:"watch"`

	debounce time.Duration
}

// Default returns the configuration used when no manifest exists.
func Default(root string) *Config {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return &Config{Root: abs, Java: JavaSection{Command: "java"}, debounce: DefaultDebounce}
}

// Load decodes the manifest of the project containing startDir. Without a
// manifest the defaults rooted at the discovered project root are returned.
func Load(startDir string) (*Config, error) {
	d, err := Discover(startDir)
	if err != nil {
		return nil, err
	}
	if d.Manifest == "" {
		return Default(d.Root), nil
	}
	return LoadFile(d.Manifest)
}

// LoadFile decodes the manifest at path. Unknown keys are rejected.
func LoadFile(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &failure.FilesystemError{Op: "resolve", Path: path, Err: err}
	}
	cfg := Default(filepath.Dir(abs))
	cfg.Path = abs
	meta, err := toml.DecodeFile(abs, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", abs, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return nil, &failure.ConfigurationError{Key: keys[0], Err: fmt.Errorf("%s: unknown key(s) %s", abs, strings.Join(keys, ", "))}
	}
	if !meta.IsDefined("java", "command") || strings.TrimSpace(cfg.Java.Command) == "" {
		cfg.Java.Command = "java"
	}
	if meta.IsDefined("watch", "debounce") {
		d, err := time.ParseDuration(cfg.Watch.Debounce)
		if err != nil || d < 0 {
			if err == nil {
				err = errors.New("negative duration")
			}
			return nil, &failure.ConfigurationError{Key: "watch.debounce", Value: cfg.Watch.Debounce, Err: err}
		}
		cfg.debounce = d
	}
	if err := cfg.validateOptions(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validateOptions() error {
	for _, kind := range []grammar.Kind{grammar.Grammar, grammar.TreeGrammar, grammar.TokenizerGrammar} {
		sec := c.section(kind)
		if len(sec.Options) == 0 {
			continue
		}
		if _, err := kind.Catalog().Resolve(sec.Options); err != nil {
			return &failure.ConfigurationError{Key: kind.Tool() + ".options", Err: err}
		}
	}
	if _, err := launcher.Charset(c.Output.Encoding); err != nil {
		return &failure.ConfigurationError{Key: "output.encoding", Value: c.Output.Encoding, Err: err}
	}
	return nil
}

func (c *Config) section(kind grammar.Kind) ToolSection {
	switch kind {
	case grammar.TreeGrammar:
		return c.JJTree
	case grammar.TokenizerGrammar:
		return c.JTB
	}
	return c.JavaCC
}

// Debounce is the watch debounce interval.
func (c *Config) Debounce() time.Duration {
	if c.debounce == 0 && c.Watch.Debounce == "" {
		return DefaultDebounce
	}
	return c.debounce
}

// JarPath resolves the jar of kind's tool against the project root. The tree
// builder falls back to the parser generator jar, which ships it.
func (c *Config) JarPath(kind grammar.Kind) string {
	jar := strings.TrimSpace(c.section(kind).Jar)
	if jar == "" && kind == grammar.TreeGrammar {
		jar = strings.TrimSpace(c.JavaCC.Jar)
	}
	if jar == "" {
		return ""
	}
	if !filepath.IsAbs(jar) {
		jar = filepath.Join(c.Root, filepath.FromSlash(jar))
	}
	return filepath.Clean(jar)
}

// ToolSettings implements the orchestrator's configuration provider.
func (c *Config) ToolSettings(kind grammar.Kind) (grammar.Settings, error) {
	if kind == grammar.Unknown {
		return grammar.Settings{}, &failure.ConfigurationError{Key: "tool", Err: errors.New("no tool for this file kind")}
	}
	sec := c.section(kind)
	return grammar.Settings{
		JavaCommand: c.Java.Command,
		JVMOptions:  c.Java.JVMOptions,
		Jar:         c.JarPath(kind),
		Args:        sec.Args,
		Options:     sec.Options,
	}, nil
}

// SuppressWarnings reports [output].suppress_warnings.
func (c *Config) SuppressWarnings() bool { return c.Output.SuppressWarnings }

// LaunchOptions decodes tool output with [output].encoding.
func (c *Config) LaunchOptions() (launcher.Options, error) {
	enc, err := launcher.Charset(c.Output.Encoding)
	if err != nil {
		return launcher.Options{}, &failure.ConfigurationError{Key: "output.encoding", Value: c.Output.Encoding, Err: err}
	}
	return launcher.Options{Charset: enc}, nil
}
