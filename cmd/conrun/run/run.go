// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run implements the run subcommand.
package run

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/conrun/internal/config"
	"github.com/matt-FFFFFF/conrun/internal/ctxlog"
	"github.com/matt-FFFFFF/conrun/internal/orchestrator"
	"github.com/urfave/cli/v3"
)

const (
	commandArg                = "command"
	configFlag                = "config"
	rootFlag                  = "root"
	strictFlag                = "strict"
	noPostRunFlag             = "no-post-run"
	noKillOthersOnFailureFlag = "no-kill-others-on-failure"
	cliExitStr                = ""
)

// RunCmd is the command that runs every command matching a name in parallel.
var RunCmd = newRunCmd()

func newRunCmd() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run a named command in every group at once",
		Description: `Run the command with the given name (or alias) from every group of the configuration file.
All matching commands start at the same time and their output is prefixed with the group name.

The exit code is 1 when every command failed, or when the run could not be set up.
A run stopped by a kill_others_when_exit command, or by a failing command, exits 0.

Config file URLs use Hashicorp's go-getter syntax, which allows for fetching files from various sources.
See https://github.com/hashicorp/go-getter.
`,
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: commandArg,
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      configFlag,
				Aliases:   []string{"c"},
				Usage:     "Path or go-getter URL of the configuration file",
				Value:     config.DefaultFileName,
				TakesFile: true,
				OnlyOnce:  true,
			},
			&cli.StringFlag{
				Name:      rootFlag,
				Usage:     "Override the root directory from the configuration file",
				TakesFile: true,
				OnlyOnce:  true,
			},
			&cli.BoolFlag{
				Name:        strictFlag,
				Usage:       "Exit with 1 when any command failed, not only when all of them did",
				Value:       false,
				DefaultText: "false",
				OnlyOnce:    true,
			},
			&cli.BoolFlag{
				Name:        noPostRunFlag,
				Usage:       "Do not run the post_run action",
				Value:       false,
				DefaultText: "false",
				OnlyOnce:    true,
			},
			&cli.BoolFlag{
				Name:        noKillOthersOnFailureFlag,
				Usage:       "Keep the other commands running when one of them fails",
				Value:       false,
				DefaultText: "false",
				OnlyOnce:    true,
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	logger.Debug("Running run command")

	key := cmd.StringArg(commandArg)
	if key == "" {
		logger.Error("Please specify the name of the command to run, e.g. conrun run dev")
		return cli.Exit(cliExitStr, 1)
	}

	cfg, err := config.Load(ctx, cmd.String(configFlag))
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to load config %s: %s", cmd.String(configFlag), err.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	cfg.SetRoot(cmd.String(rootFlag))

	code := orchestrator.Run(ctx, key, cfg, orchestrator.Options{
		Strict:                cmd.Bool(strictFlag),
		SkipPostRun:           cmd.Bool(noPostRunFlag),
		NoKillOthersOnFailure: cmd.Bool(noKillOthersOnFailureFlag),
		Stdout:                cmd.Root().Writer,
		Stderr:                cmd.Root().ErrWriter,
	})

	if code != 0 {
		return cli.Exit(cliExitStr, code)
	}

	return nil
}
