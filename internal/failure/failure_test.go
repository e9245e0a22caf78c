package failure

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToolInvocationError_Message(t *testing.T) {
	err := &ToolInvocationError{Tool: "javacc", Version: "7.0.13", File: "a.jj", ExitCode: 1}
	assert.Equal(t, "javacc 7.0.13 on a.jj: exit status 1", err.Error())

	spawn := &ToolInvocationError{Tool: "jtb", File: "b.jtb", Err: os.ErrNotExist}
	assert.ErrorIs(t, spawn, os.ErrNotExist)
}

func TestClassifiers(t *testing.T) {
	cfg := fmt.Errorf("compile: %w", &ConfigurationError{Key: "jtb.jar", Err: errors.New("not set")})
	assert.True(t, IsConfiguration(cfg))
	assert.False(t, IsFilesystem(cfg))

	fsErr := fmt.Errorf("snapshot: %w", &FilesystemError{Op: "stat", Path: "/x", Err: os.ErrPermission})
	assert.True(t, IsFilesystem(fsErr))
	assert.ErrorIs(t, fsErr, os.ErrPermission)
}
