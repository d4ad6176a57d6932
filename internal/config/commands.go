// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

var (
	// ErrUnsupportedCommand is returned when a command is neither a string nor a mapping.
	ErrUnsupportedCommand = errors.New("command must be a string or a mapping")
	// ErrUnsupportedInvocation is returned when an invocation is neither a string nor a list of strings.
	ErrUnsupportedInvocation = errors.New("command line must be a string or a list of strings")
)

// Commands is an ordered set of named command specs.
// Declaration order is kept because alias lookup scans it in order.
type Commands []NamedCommand

// NamedCommand is a command spec together with its key in the group.
type NamedCommand struct {
	Key  string
	Spec CommandSpec
}

// Lookup returns the command spec stored under key.
func (c Commands) Lookup(key string) (CommandSpec, bool) {
	for _, nc := range c {
		if nc.Key == key {
			return nc.Spec, true
		}
	}

	return CommandSpec{}, false
}

// UnmarshalYAML decodes a mapping while keeping the key order.
func (c *Commands) UnmarshalYAML(data []byte) error {
	var ms yaml.MapSlice
	if err := yaml.Unmarshal(data, &ms); err != nil {
		return err //nolint:wrapcheck
	}

	out := make(Commands, 0, len(ms))

	for _, item := range ms {
		raw, err := yaml.Marshal(item.Value)
		if err != nil {
			return fmt.Errorf("command %v: %w", item.Key, err)
		}

		var spec CommandSpec
		if err := spec.UnmarshalYAML(raw); err != nil {
			return fmt.Errorf("command %v: %w", item.Key, err)
		}

		out = append(out, NamedCommand{Key: fmt.Sprint(item.Key), Spec: spec})
	}

	*c = out

	return nil
}

// MarshalYAML writes the commands back as an ordered mapping.
func (c Commands) MarshalYAML() (any, error) {
	ms := make(yaml.MapSlice, 0, len(c))
	for _, nc := range c {
		ms = append(ms, yaml.MapItem{Key: nc.Key, Value: nc.Spec})
	}

	return ms, nil
}

// CommandSpec is either a bare command line or a structured definition.
type CommandSpec struct {
	// Bare is true when the spec was written as a plain string.
	// A bare spec has no aliases, name or kill flag.
	Bare bool `yaml:"-"`
	// Command is the command line, a multi-line script or a list of steps.
	Command Invocation `yaml:"command"`
	// Alias lists the other keys this command can be requested by.
	Alias []string `yaml:"alias,omitempty"`
	// Name overrides the display name of the group for this command.
	Name string `yaml:"name,omitempty"`
	// KillOthersWhenExit terminates all sibling commands when this command exits.
	KillOthersWhenExit bool `yaml:"kill_others_when_exit,omitempty"`
	// Env is added to the environment of the command.
	Env map[string]string `yaml:"env,omitempty"`
}

type commandSpecAlias CommandSpec

// UnmarshalYAML accepts both the string and the mapping form.
func (s *CommandSpec) UnmarshalYAML(data []byte) error {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return err //nolint:wrapcheck
	}

	switch t := v.(type) {
	case string:
		*s = CommandSpec{Bare: true, Command: Invocation{Lines: []string{t}}}
		return nil
	case map[string]any:
		var a commandSpecAlias
		if err := yaml.Unmarshal(data, &a); err != nil {
			return err //nolint:wrapcheck
		}

		*s = CommandSpec(a)
		s.Bare = false

		return nil
	default:
		return fmt.Errorf("%w: got %T", ErrUnsupportedCommand, v)
	}
}

// MarshalYAML writes bare specs back as strings.
func (s CommandSpec) MarshalYAML() (any, error) {
	if s.Bare {
		return s.Command.String(), nil
	}

	return commandSpecAlias(s), nil
}

// Invocation is a command line as written in the configuration.
// A string becomes a single element; a list keeps one element per step.
type Invocation struct {
	Lines []string
}

// IsZero reports whether no command line was given.
func (i Invocation) IsZero() bool {
	for _, l := range i.Lines {
		if l != "" {
			return false
		}
	}

	return true
}

// IsSequence reports whether the invocation was written as a list of steps.
func (i Invocation) IsSequence() bool {
	return len(i.Lines) > 1
}

// String returns the raw lines joined by newlines.
func (i Invocation) String() string {
	return strings.Join(i.Lines, "\n")
}

// UnmarshalYAML accepts a string or a list of strings.
func (i *Invocation) UnmarshalYAML(data []byte) error {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return err //nolint:wrapcheck
	}

	switch t := v.(type) {
	case nil:
		i.Lines = nil
	case string:
		i.Lines = []string{t}
	case []any:
		lines := make([]string, 0, len(t))

		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return fmt.Errorf("%w: list element is %T", ErrUnsupportedInvocation, e)
			}

			lines = append(lines, s)
		}

		i.Lines = lines
	default:
		return fmt.Errorf("%w: got %T", ErrUnsupportedInvocation, v)
	}

	return nil
}

// MarshalYAML writes single line invocations as a string.
func (i Invocation) MarshalYAML() (any, error) {
	if len(i.Lines) == 1 {
		return i.Lines[0], nil
	}

	return i.Lines, nil
}
