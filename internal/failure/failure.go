// Package failure holds the error taxonomy of the compile pipeline. None of
// these errors is allowed to escape a top-level compile as a crash; each one is
// either logged and skipped or surfaced as a visible message.
package failure

import (
	"errors"
	"fmt"
)

// ErrChecksumUnavailable aborts only the rewrite of a generated file.
var ErrChecksumUnavailable = errors.New("checksum algorithm unavailable")

// ToolInvocationError reports a spawn failure or a nonzero exit. Diagnostics are
// still extracted from whatever output was captured.
type ToolInvocationError struct {
	Tool     string
	File     string
	Version  string
	ExitCode int
	Err      error
}

func (e *ToolInvocationError) Error() string {
	tool := e.Tool
	if e.Version != "" {
		tool += " " + e.Version
	}
	if e.Err != nil {
		return fmt.Sprintf("%s on %s: %v", tool, e.File, e.Err)
	}
	return fmt.Sprintf("%s on %s: exit status %d", tool, e.File, e.ExitCode)
}

func (e *ToolInvocationError) Unwrap() error { return e.Err }

// FilesystemError reports a failed walk, stat, read or metadata write. Only the
// affected item is skipped.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

// ConfigurationError aborts a compile before any process is spawned.
type ConfigurationError struct {
	Key   string
	Value string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("configuration %s=%q: %v", e.Key, e.Value, e.Err)
	}
	return fmt.Sprintf("configuration %s: %v", e.Key, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// IsConfiguration reports whether err carries a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsFilesystem reports whether err carries a FilesystemError.
func IsFilesystem(err error) bool {
	var fe *FilesystemError
	return errors.As(err, &fe)
}
