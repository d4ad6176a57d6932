// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package orchestrator runs one requested command key end to end and produces the exit code.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/matt-FFFFFF/conrun/internal/config"
	"github.com/matt-FFFFFF/conrun/internal/ctxlog"
	"github.com/matt-FFFFFF/conrun/internal/invocation"
	"github.com/matt-FFFFFF/conrun/internal/killothers"
	"github.com/matt-FFFFFF/conrun/internal/outcome"
	"github.com/matt-FFFFFF/conrun/internal/postrun"
	"github.com/matt-FFFFFF/conrun/internal/runbatch"
	"github.com/matt-FFFFFF/conrun/internal/selector"
)

// Options control a single run.
type Options struct {
	// Strict makes a partially failed run exit with 1.
	Strict bool
	// SkipPostRun disables the post-run action for this run.
	SkipPostRun bool
	// NoKillOthersOnFailure keeps the other commands running when one fails.
	NoKillOthersOnFailure bool
	// Stdout and Stderr receive the prefixed command output. They default to the process streams.
	Stdout io.Writer
	Stderr io.Writer
	// Build converts configured command lines to a shell invocation. Defaults to invocation.OneLine.
	Build invocation.Builder
	// Shell overrides the interpreter used for the commands.
	Shell *runbatch.Shell
}

// Run executes every command matching key and returns the process exit code.
// It never panics and never exits the process.
func Run(ctx context.Context, key string, cfg *config.Config, opts Options) (code int) {
	ctx = ctxlog.With(ctx, "runId", uuid.NewString(), "key", key)

	defer func() {
		if r := recover(); r != nil {
			ctxlog.Error(ctx, "unexpected failure", "panic", fmt.Sprint(r))
			ctxlog.Info(ctx, "Exiting...")

			code = outcome.Failed().ExitCode
		}
	}()

	d := run(ctx, key, cfg, opts)

	ctxlog.Info(ctx, "Exiting...")

	return d.ExitCode
}

func run(ctx context.Context, key string, cfg *config.Config, opts Options) outcome.Decision {
	build := opts.Build
	if build == nil {
		build = invocation.OneLine
	}

	cmds, err := selector.Select(ctx, key, cfg, build)
	if err != nil {
		ctxlog.Error(ctx, "could not resolve commands", "error", err)
		return outcome.Failed()
	}

	if len(cmds) == 0 {
		ctxlog.Warn(ctx, fmt.Sprintf("no command named %q in any group", key))
		return outcome.Decision{}
	}

	pool := runbatch.NewPool(cmds, poolOptions(opts)...)

	if _, err := killothers.Attach(ctx, pool); err != nil {
		ctxlog.Error(ctx, "could not attach kill-others policy", "error", err)
		return outcome.Failed()
	}

	ctxlog.Info(ctx, fmt.Sprintf("running %d command(s)", len(cmds)))

	if _, err := pool.Start(ctx); err != nil {
		ctxlog.Error(ctx, "could not start commands", "error", err)
		return outcome.Failed()
	}

	outcomes := pool.Wait()
	d := outcome.Aggregate(outcomes, outcome.Options{Strict: opts.Strict})

	if d.ShouldRunPostAction {
		ctxlog.Info(ctx, "All commands finished successfully")
	} else {
		ctxlog.Warn(ctx, "Some commands exit", summary(outcomes)...)
	}

	if !postrun.ShouldRun(d, key, cfg, opts.SkipPostRun) {
		return d
	}

	if err := postrun.NewRunner(build).Run(ctx, cfg.PostRun, cfg.Root); err != nil {
		ctxlog.Error(ctx, "post-run action failed", "error", err)
		return outcome.Failed()
	}

	return d
}

func poolOptions(opts Options) []runbatch.Option {
	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}

	if stderr == nil {
		stderr = os.Stderr
	}

	po := []runbatch.Option{
		runbatch.WithOutput(stdout, stderr),
		runbatch.WithKillOthersOnFailure(!opts.NoKillOthersOnFailure),
	}

	if opts.Shell != nil {
		po = append(po, runbatch.WithShell(*opts.Shell))
	}

	return po
}

// summary renders the outcomes as log attributes keyed by command label.
func summary(outcomes runbatch.Outcomes) []any {
	attrs := make([]any, 0, len(outcomes)*2)

	for i, o := range outcomes {
		label := runbatch.ResolvedCommand{Index: o.Index, Name: o.Name}.Label()

		state := fmt.Sprintf("exit %d", o.ExitCode)
		if o.Killed {
			state = "killed"
		}

		attrs = append(attrs, fmt.Sprintf("%d:%s", i, label), state)
	}

	return attrs
}
