// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the conrun command-line interface (CLI).
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/conrun"
	"github.com/matt-FFFFFF/conrun/cmd/conrun/run"
	"github.com/matt-FFFFFF/conrun/cmd/conrun/show"
	"github.com/matt-FFFFFF/conrun/internal/ctxlog"
	"github.com/matt-FFFFFF/conrun/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

// rootCmd is the root command for the CLI.
var rootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
		show.ShowCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "conrun",
	Description: `Conrun runs named commands from several project directories at the same time.
Every group in the configuration file contributes the command stored under the requested
name, or the first command listing it as an alias. Output is prefixed with the group name.
A command marked kill_others_when_exit stops all the others when it exits.`,
	Usage:     "conrun run dev",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
	// Exit codes are returned to main, which is the only caller of os.Exit.
	ExitErrHandler: func(context.Context, *cli.Command, error) {},
}

func main() {
	os.Exit(realMain())
}

func realMain() int {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)

	defer cancel()

	sigCh := signalbroker.New(ctx)
	defer signalbroker.Stop(sigCh)

	go signalbroker.Watch(ctx, sigCh, cancel)

	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", conrun.Version, conrun.Commit)

	err := rootCmd.Run(ctx, os.Args)
	if err == nil {
		return 0
	}

	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		if msg := ec.Error(); msg != "" {
			ctxlog.Error(ctx, msg)
		}

		return ec.ExitCode()
	}

	ctxlog.Error(ctx, "command execution failed", "error", err)

	return 1
}
