// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package selector

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matt-FFFFFF/conrun/internal/config"
	"github.com/matt-FFFFFF/conrun/internal/invocation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
root: /work
run:
  - name: api
    cwd: services/api
    prefix_color: blue
    commands:
      dev:
        command: go run .
        alias: [start, all]
        env:
          PORT: "8080"
      test: go test ./...
  - cwd: web
    commands:
      build: npm run build
      serve:
        command:
          - npm ci
          - npm run dev
        alias: [start]
        kill_others_when_exit: true
        name: frontend
  - name: bare-only
    commands:
      start-bare: echo bare
      lint: golangci-lint run
  - name: empty
  - name: deploy-first
    commands:
      push:
        command: ./push.sh
        alias: [deploy]
      upload:
        command: ./upload.sh
        alias: [deploy]
      deploy: ./deploy.sh
`

func parse(t *testing.T, y string) *config.Config {
	t.Helper()

	cfg, err := config.Parse(context.Background(), []byte(y), "/")
	require.NoError(t, err)

	return cfg
}

func joinBuilder(lines ...string) (string, error) {
	return strings.Join(lines, " && "), nil
}

func TestSelect_AliasAcrossGroups(t *testing.T) {
	cfg := parse(t, testConfig)

	got, err := Select(context.Background(), "start", cfg, joinBuilder)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, "api", got[0].Name)
	assert.Equal(t, filepath.Join("/work", "services/api"), got[0].Cwd)
	assert.Equal(t, "go run .", got[0].Invocation)
	assert.Equal(t, "blue", got[0].PrefixColor)
	assert.Equal(t, map[string]string{"PORT": "8080"}, got[0].Env)
	assert.False(t, got[0].KillOthersOnExit)

	assert.Equal(t, 1, got[1].Index)
	assert.Equal(t, "frontend", got[1].Name)
	assert.Equal(t, "npm ci && npm run dev", got[1].Invocation)
	assert.True(t, got[1].KillOthersOnExit)
}

func TestSelect_DirectMatchPreferredOverAlias(t *testing.T) {
	cfg := parse(t, testConfig)

	got, err := Select(context.Background(), "deploy", cfg, joinBuilder)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "./deploy.sh", got[0].Invocation)
}

func TestSelect_FirstAliasInDeclarationOrder(t *testing.T) {
	cfg := parse(t, `
run:
  - commands:
      push:
        command: ./push.sh
        alias: [deploy]
      upload:
        command: ./upload.sh
        alias: [deploy]
`)

	got, err := Select(context.Background(), "deploy", cfg, joinBuilder)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "./push.sh", got[0].Invocation)
}

func TestSelect_DefaultsAndBareSpecs(t *testing.T) {
	cfg := parse(t, testConfig)

	got, err := Select(context.Background(), "lint", cfg, joinBuilder)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "bare-only", got[0].Name)
	assert.Equal(t, "/work", got[0].Cwd, "cwd falls back to the root")
	assert.False(t, got[0].KillOthersOnExit)
	assert.Equal(t, "golangci-lint run", got[0].Invocation)
}

func TestSelect_NameFromCwd(t *testing.T) {
	cfg := parse(t, testConfig)

	got, err := Select(context.Background(), "build", cfg, joinBuilder)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "web", got[0].Name)
}

func TestSelect_NoNameAvailable(t *testing.T) {
	cfg := parse(t, "run:\n  - commands:\n      x: echo x\n")

	got, err := Select(context.Background(), "x", cfg, joinBuilder)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Name)
	assert.Equal(t, "0", got[0].Label())
}

func TestSelect_NoMatch(t *testing.T) {
	cfg := parse(t, testConfig)

	got, err := Select(context.Background(), "nothing-here", cfg, joinBuilder)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSelect_BareStringsNeverAliasMatch(t *testing.T) {
	cfg := parse(t, testConfig)

	got, err := Select(context.Background(), "echo bare", cfg, joinBuilder)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSelect_BuilderError(t *testing.T) {
	cfg := parse(t, testConfig)
	errBoom := errors.New("boom")

	_, err := Select(context.Background(), "dev", cfg, func(...string) (string, error) {
		return "", errBoom
	})
	require.ErrorIs(t, err, ErrBuildInvocation)
	require.ErrorIs(t, err, errBoom)
}

func TestSelect_WithShellBuilder(t *testing.T) {
	cfg := parse(t, testConfig)

	got, err := Select(context.Background(), "serve", cfg, invocation.OneLine)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "npm ci && npm run dev", got[0].Invocation)
}
