// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

var (
	// ErrEmptyCommand is returned when a command has no command line.
	ErrEmptyCommand = errors.New("command line is empty")
	// ErrEmptyAlias is returned when an alias list contains an empty string.
	ErrEmptyAlias = errors.New("alias is empty")
	// ErrEmptyKey is returned when a command key is empty.
	ErrEmptyKey = errors.New("command key is empty")
	// ErrDuplicateKey is returned when a command key appears twice in one group.
	ErrDuplicateKey = errors.New("duplicate command key")
	// ErrPostRunIncomplete is returned when an enabled post-run action lacks a trigger or command.
	ErrPostRunIncomplete = errors.New("post_run needs command_name and command")
)

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var result error

	for gi, g := range c.Run {
		where := groupRef(gi, g)
		seen := make(map[string]struct{}, len(g.Commands))

		for _, nc := range g.Commands {
			if strings.TrimSpace(nc.Key) == "" {
				result = multierror.Append(result, fmt.Errorf("%s: %w", where, ErrEmptyKey))
				continue
			}

			if _, dup := seen[nc.Key]; dup {
				result = multierror.Append(result, fmt.Errorf("%s: %w: %q", where, ErrDuplicateKey, nc.Key))
			}

			seen[nc.Key] = struct{}{}

			if nc.Spec.Command.IsZero() {
				result = multierror.Append(result, fmt.Errorf("%s command %q: %w", where, nc.Key, ErrEmptyCommand))
			}

			for _, a := range nc.Spec.Alias {
				if strings.TrimSpace(a) == "" {
					result = multierror.Append(result, fmt.Errorf("%s command %q: %w", where, nc.Key, ErrEmptyAlias))
				}
			}
		}
	}

	if pr := c.PostRun; pr != nil && !pr.Disabled {
		if pr.CommandName == "" || pr.Command.IsZero() {
			result = multierror.Append(result, ErrPostRunIncomplete)
		}
	}

	return result
}

func groupRef(i int, g CommandGroup) string {
	if g.Name != "" {
		return fmt.Sprintf("run[%d] (%s)", i, g.Name)
	}

	return fmt.Sprintf("run[%d]", i)
}
