// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package postrun runs the configured follow-up action after a fully successful run.
package postrun

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-cmd/cmd"
	"github.com/matt-FFFFFF/conrun/internal/config"
	"github.com/matt-FFFFFF/conrun/internal/ctxlog"
	"github.com/matt-FFFFFF/conrun/internal/invocation"
	"github.com/matt-FFFFFF/conrun/internal/outcome"
	"github.com/matt-FFFFFF/conrun/internal/runbatch"
)

const stopRetryInterval = 10 * time.Millisecond

var (
	// ErrPostRunFailed is returned when the post-run action exits non-zero or cannot be started.
	ErrPostRunFailed = errors.New("post-run action failed")
	// ErrPostRunCancelled is returned when the context is cancelled before or while the action runs.
	ErrPostRunCancelled = errors.New("post-run action cancelled")
)

// ShouldRun reports whether the post-run action applies to this run.
func ShouldRun(d outcome.Decision, key string, cfg *config.Config, skip bool) bool {
	if skip || !d.ShouldRunPostAction || cfg == nil || cfg.PostRun == nil {
		return false
	}

	pr := cfg.PostRun

	return !pr.Disabled && pr.CommandName == key && !pr.Command.IsZero()
}

// Runner executes the post-run action.
type Runner struct {
	shell runbatch.Shell
	build invocation.Builder
}

// NewRunner returns a Runner using the default shell.
func NewRunner(build invocation.Builder) *Runner {
	return &Runner{shell: runbatch.DefaultShell(), build: build}
}

// Run executes the action in its project directory, falling back to root.
func (r *Runner) Run(ctx context.Context, pr *config.PostRun, root string) error {
	line, err := r.build(pr.Command.Lines...)
	if err != nil {
		return errors.Join(ErrPostRunFailed, err)
	}

	dir := pr.ProjectDir
	if dir == "" {
		dir = root
	}

	ctx = ctxlog.With(ctx, "postRun", pr.CommandName)
	ctxlog.Info(ctx, "starting post-run action", "dir", dir, "invocation", line)

	if err := ctx.Err(); err != nil {
		ctxlog.Warn(ctx, "post-run action cancelled before it started")
		return errors.Join(ErrPostRunCancelled, err)
	}

	args := append(slices.Clone(r.shell.Args), line)
	c := cmd.NewCmdOptions(cmd.Options{Buffered: true}, r.shell.Path, args...)
	c.Dir = dir
	c.Env = environ(pr.Env)

	start := time.Now()

	var status cmd.Status

	select {
	case status = <-c.Start():
	case <-ctx.Done():
		stop(c)
		<-c.Done()

		ctxlog.Warn(ctx, "post-run action cancelled")

		return errors.Join(ErrPostRunCancelled, ctx.Err())
	}

	if status.Error != nil || status.Exit != 0 {
		ctxlog.Error(ctx, "post-run action failed",
			"exitCode", status.Exit,
			"error", status.Error,
			"stdout", strings.Join(status.Stdout, "\n"),
			"stderr", strings.Join(status.Stderr, "\n"))

		if status.Error != nil {
			return errors.Join(ErrPostRunFailed, status.Error)
		}

		return fmt.Errorf("%w: exit code %d", ErrPostRunFailed, status.Exit)
	}

	ctxlog.Info(ctx, "post-run action finished", "duration", time.Since(start).Round(time.Millisecond).String())

	for _, l := range status.Stdout {
		ctxlog.Debug(ctx, l, "stream", "stdout")
	}

	return nil
}

// stop terminates c, retrying while go-cmd has not started the process yet.
func stop(c *cmd.Cmd) {
	for {
		if err := c.Stop(); !errors.Is(err, cmd.ErrNotStarted) {
			return
		}

		select {
		case <-c.Done():
			return
		case <-time.After(stopRetryInterval):
		}
	}
}

func environ(extra map[string]string) []string {
	env := os.Environ()

	for _, k := range slices.Sorted(maps.Keys(extra)) {
		env = append(env, k+"="+extra[k])
	}

	return env
}
