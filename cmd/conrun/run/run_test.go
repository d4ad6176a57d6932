// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/matt-FFFFFF/conrun/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

const testConfig = `
run:
  - name: api
    commands:
      dev: echo api-dev
      fail: exit 1
  - name: web
    cwd: web
    commands:
      web-dev:
        command: echo web-dev
        alias: [dev]
      fail: exit 2
post_run:
  command_name: dev
  command: touch post-run-ran
`

func writeConfig(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "web"), 0o755))

	path := filepath.Join(dir, "conrun.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))

	return dir, path
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut, logs bytes.Buffer

	root := &cli.Command{
		Name:           "conrun",
		Commands:       []*cli.Command{newRunCmd()},
		Writer:         &out,
		ErrWriter:      &errOut,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}

	ctx := ctxlog.New(context.Background(), slog.New(slog.NewTextHandler(&logs, nil)))
	err := root.Run(ctx, append([]string{"conrun", "run"}, args...))

	return out.String(), logs.String(), err
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}

	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}

	return -1
}

func TestRun_Success(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX shell commands")
	}

	dir, path := writeConfig(t)

	out, logs, err := runCLI(t, "-c", path, "dev")
	require.NoError(t, err, logs)

	assert.Contains(t, out, "api-dev")
	assert.Contains(t, out, "web-dev")
	assert.Contains(t, logs, "All commands finished successfully")
	assert.FileExists(t, filepath.Join(dir, "post-run-ran"))
}

func TestRun_NoPostRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX shell commands")
	}

	dir, path := writeConfig(t)

	_, logs, err := runCLI(t, "-c", path, "--no-post-run", "dev")
	require.NoError(t, err, logs)
	assert.NoFileExists(t, filepath.Join(dir, "post-run-ran"))
}

func TestRun_RootOverride(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX shell commands")
	}

	dir, path := writeConfig(t)
	other := t.TempDir()

	_, logs, err := runCLI(t, "-c", path, "--root", other, "dev")
	require.NoError(t, err, logs)
	assert.NoFileExists(t, filepath.Join(dir, "post-run-ran"))
	assert.FileExists(t, filepath.Join(other, "post-run-ran"))
}

func TestRun_AllFailing(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX shell commands")
	}

	_, path := writeConfig(t)

	_, logs, err := runCLI(t, "-c", path, "--no-kill-others-on-failure", "fail")
	assert.Equal(t, 1, exitCode(err), logs)
}

func TestRun_UsageErrors(t *testing.T) {
	_, path := writeConfig(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing command name", []string{"-c", path}},
		{"missing config file", []string{"-c", filepath.Join(t.TempDir(), "nope.yaml"), "dev"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := runCLI(t, tc.args...)
			assert.Equal(t, 1, exitCode(err))
		})
	}
}

func TestRun_NoMatchExitsZero(t *testing.T) {
	_, path := writeConfig(t)

	_, logs, err := runCLI(t, "-c", path, "missing")
	require.NoError(t, err)
	assert.Contains(t, logs, "no command named")
}
