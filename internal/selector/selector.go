// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package selector resolves a requested command key against the configured groups.
package selector

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/matt-FFFFFF/conrun/internal/config"
	"github.com/matt-FFFFFF/conrun/internal/ctxlog"
	"github.com/matt-FFFFFF/conrun/internal/invocation"
	"github.com/matt-FFFFFF/conrun/internal/runbatch"
)

// ErrBuildInvocation is returned when a matched command cannot be turned into a shell invocation.
var ErrBuildInvocation = errors.New("could not build invocation")

// Select returns at most one command per group for key, in group order.
// A group contributes its command stored under key if there is one, otherwise its
// first structured command listing key as an alias. Bare command strings never
// match by alias. No match in any group is not an error.
func Select(ctx context.Context, key string, cfg *config.Config, build invocation.Builder) ([]runbatch.ResolvedCommand, error) {
	var out []runbatch.ResolvedCommand

	for gi, group := range cfg.Run {
		if len(group.Commands) == 0 {
			continue
		}

		matchedKey, spec, ok := match(key, group.Commands)
		if !ok {
			continue
		}

		inv, err := build(spec.Command.Lines...)
		if err != nil {
			return nil, fmt.Errorf("%w: group %d command %q: %w", ErrBuildInvocation, gi, matchedKey, err)
		}

		rc := runbatch.ResolvedCommand{
			Index:       len(out),
			Name:        displayName(group, spec),
			Cwd:         group.Cwd,
			Invocation:  inv,
			PrefixColor: group.PrefixColor,
			Env:         spec.Env,
		}

		if rc.Cwd == "" {
			rc.Cwd = cfg.Root
		}

		if !spec.Bare {
			rc.KillOthersOnExit = spec.KillOthersWhenExit
		}

		ctxlog.Debug(ctx, "command selected",
			"group", gi,
			"key", matchedKey,
			"name", rc.Name,
			"cwd", rc.Cwd,
			"killOthers", rc.KillOthersOnExit)

		out = append(out, rc)
	}

	return out, nil
}

func match(key string, cmds config.Commands) (string, config.CommandSpec, bool) {
	if spec, ok := cmds.Lookup(key); ok {
		return key, spec, true
	}

	for _, nc := range cmds {
		if nc.Spec.Bare {
			continue
		}

		if slices.Contains(nc.Spec.Alias, key) {
			return nc.Key, nc.Spec, true
		}
	}

	return "", config.CommandSpec{}, false
}

func displayName(group config.CommandGroup, spec config.CommandSpec) string {
	switch {
	case !spec.Bare && spec.Name != "":
		return spec.Name
	case group.Name != "":
		return group.Name
	case group.Cwd != "":
		return filepath.Base(group.Cwd)
	default:
		return ""
	}
}
