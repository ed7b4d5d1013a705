package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/hatremote/internal/app"
	"github.com/specialistvlad/hatremote/internal/cli"
)

func TestRun_ShouldExit(t *testing.T) {
	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	// --- Arrange ---
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, args)

	// --- Assert ---
	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, cli.ExitUsage, exitErr.Code)
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_Check(t *testing.T) {
	// --- Arrange ---
	cfg := app.WriteTestConfigs(t)
	args := []string{
		"-commands", cfg.CommandsPath,
		"-layout", cfg.LayoutPath,
		"-input-sequences", cfg.InputSequencesPaths[0],
		"-variables", cfg.VariablesPaths[0],
		"-log-format", "text",
		"-check",
	}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Configs are valid.")
}

func TestRun_ConfigErrorExitCode(t *testing.T) {
	// --- Arrange ---
	cfg := app.WriteTestConfigs(t)
	broken := filepath.Join(t.TempDir(), "layout.txt")
	require.NoError(t, os.WriteFile(broken, []byte("copy\n"), 0o600))
	args := []string{"-commands", cfg.CommandsPath, "-layout", broken, "-check"}

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, args)

	// --- Assert ---
	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr), "got %v", err)
	assert.Equal(t, cli.ExitConfig, exitErr.Code)
}

func TestRun_Preview(t *testing.T) {
	// --- Arrange ---
	cfg := app.WriteTestConfigs(t)
	args := []string{"-commands", cfg.CommandsPath, "-layout", cfg.LayoutPath, "-log-level", "error", "-preview", "MAC"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.NoError(t, err)
	assert.Contains(t, out.String(), "MAC")
	assert.Contains(t, out.String(), "copy")
}

func TestRun_MissingLayoutFile(t *testing.T) {
	// --- Arrange ---
	cfg := app.WriteTestConfigs(t)
	args := []string{"-commands", cfg.CommandsPath, "-layout", filepath.Join(t.TempDir(), "gone.txt")}

	// --- Act ---
	// The configs are loaded once before any port is opened.
	err := run(context.Background(), &bytes.Buffer{}, args)

	// --- Assert ---
	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, cli.ExitConfig, exitErr.Code)
}
