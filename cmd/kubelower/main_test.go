package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/kubelower/internal/cli"
)

func TestRun_Render(t *testing.T) {
	// --- Arrange ---
	args := []string{"render", "--log-level", "error", "../../examples/webapp"}
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, errOut, args)

	// --- Assert ---
	require.NoError(t, err)
	require.Contains(t, out.String(), "# Source: backend_Resource")
	require.Contains(t, out.String(), "# Source: frontend_Resource")
	require.Empty(t, errOut.String(), "error level should keep routine logs quiet")
}

func TestRun_LoadError(t *testing.T) {
	// --- Arrange ---
	// A syntax error must surface as an error rather than a crash.
	invalidHCL := `
		node "a" {
			type = "k8s.nodes.Service"
		// Missing closing brace here
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(invalidHCL), 0600), "failed to set up test file")

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"render", filePath})

	// --- Assert ---
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load topology")

	var exitErr *cli.ExitError
	require.False(t, errors.As(err, &exitErr), "load failures are not usage errors")
}

func TestRun_Help(t *testing.T) {
	// --- Arrange ---
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-h"})

	// --- Assert ---
	require.NoError(t, err)
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
	require.Contains(t, out.String(), "render")
}

func TestRun_ParseError(t *testing.T) {
	// --- Arrange ---
	args := []string{"--this-is-not-a-valid-flag"}

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, args)

	// --- Assert ---
	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr))
	require.Equal(t, 2, exitErr.Code)
	require.Contains(t, exitErr.Message, "unknown flag: --this-is-not-a-valid-flag")
}
