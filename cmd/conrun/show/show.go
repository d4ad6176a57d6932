// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package show implements the show subcommand.
package show

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/matt-FFFFFF/conrun/internal/config"
	"github.com/matt-FFFFFF/conrun/internal/ctxlog"
	"github.com/urfave/cli/v3"
)

const (
	configFlag = "config"
	cliExitStr = ""
)

// ErrWriteConfig is returned when the summary cannot be written.
var ErrWriteConfig = errors.New("failed to write configuration summary")

// ShowCmd lists the configured groups and commands.
var ShowCmd = newShowCmd()

func newShowCmd() *cli.Command {
	return &cli.Command{
		Name:        "show",
		Usage:       "List the configured groups and commands",
		Description: "Show every group of the configuration file with its commands, aliases and kill flags.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      configFlag,
				Aliases:   []string{"c"},
				Usage:     "Path or go-getter URL of the configuration file",
				Value:     config.DefaultFileName,
				TakesFile: true,
				OnlyOnce:  true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(ctx, cmd.String(configFlag))
			if err != nil {
				ctxlog.Error(ctx, fmt.Sprintf("Failed to load config %s: %s", cmd.String(configFlag), err.Error()))
				return cli.Exit(cliExitStr, 1)
			}

			if err := Write(cmd.Root().Writer, cfg); err != nil {
				return errors.Join(ErrWriteConfig, err)
			}

			return nil
		},
	}
}

// Write renders cfg as a table.
func Write(w io.Writer, cfg *config.Config) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("GROUP", "KEY", "NAME", "ALIASES", "KILL OTHERS", "CWD", "COMMAND")

	for gi, g := range cfg.Run {
		group := strconv.Itoa(gi)
		if g.Name != "" {
			group = g.Name
		}

		cwd := g.Cwd
		if cwd == "" {
			cwd = cfg.Root
		}

		for _, nc := range g.Commands {
			t.Row(
				group,
				nc.Key,
				nc.Spec.Name,
				strings.Join(nc.Spec.Alias, ", "),
				strconv.FormatBool(!nc.Spec.Bare && nc.Spec.KillOthersWhenExit),
				cwd,
				strings.Join(nc.Spec.Command.Lines, " ; "),
			)
		}
	}

	if _, err := fmt.Fprintf(w, "root: %s\n%s\n", cfg.Root, t.Render()); err != nil {
		return err //nolint:wrapcheck
	}

	if pr := cfg.PostRun; pr != nil {
		state := "enabled"
		if pr.Disabled {
			state = "disabled"
		}

		if _, err := fmt.Fprintf(w, "post_run (%s): after %q run %q\n", state, pr.CommandName, pr.Command.String()); err != nil {
			return err //nolint:wrapcheck
		}
	}

	return nil
}
