// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/conrun/internal/ctxlog"
)

// DefaultFileName is the configuration file looked up when none is given.
const DefaultFileName = "conrun.yaml"

var (
	// ErrInvalidYAML is returned when the configuration cannot be decoded.
	ErrInvalidYAML = errors.New("invalid YAML")
	// ErrInvalidConfig is returned when the configuration decodes but fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config is the root of the configuration file.
type Config struct {
	// Root is the default working directory for groups that do not set one.
	// Relative values are resolved against the directory of the configuration file.
	Root string `yaml:"root,omitempty"`
	// Run holds the command groups in declaration order.
	Run []CommandGroup `yaml:"run"`
	// PostRun is the optional action run after a fully successful run.
	PostRun *PostRun `yaml:"post_run,omitempty"`
}

// CommandGroup is a named collection of commands sharing a working directory.
type CommandGroup struct {
	Name        string   `yaml:"name,omitempty"`
	Cwd         string   `yaml:"cwd,omitempty"`
	PrefixColor string   `yaml:"prefix_color,omitempty"`
	Commands    Commands `yaml:"commands,omitempty"`
}

// PostRun configures the action run after every command finished successfully.
type PostRun struct {
	// CommandName is the requested command key that triggers the action.
	CommandName string `yaml:"command_name"`
	// Disabled switches the action off without removing it.
	Disabled bool `yaml:"disabled,omitempty"`
	// ProjectDir is the working directory of the action, defaults to the root.
	ProjectDir string `yaml:"project_dir,omitempty"`
	// Command is the shell command line to execute.
	Command Invocation `yaml:"command"`
	// Env is added to the environment of the action.
	Env map[string]string `yaml:"env,omitempty"`
}

// Parse decodes and validates YAML configuration.
// baseDir is used to resolve a relative or empty root.
func Parse(ctx context.Context, data []byte, baseDir string) (*Config, error) {
	cfg := new(Config)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidYAML, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	cfg.resolvePaths(baseDir)

	ctxlog.Debug(ctx, "configuration parsed", "root", cfg.Root, "groups", len(cfg.Run))

	return cfg, nil
}

// SetRoot overrides the root directory. Group and post-run directories that
// were resolved against the old root are not changed.
func (c *Config) SetRoot(root string) {
	if root == "" {
		return
	}

	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	c.Root = root
}

func (c *Config) resolvePaths(baseDir string) {
	if baseDir == "" {
		baseDir = "."
	}

	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}

	switch {
	case c.Root == "":
		c.Root = baseDir
	case !filepath.IsAbs(c.Root):
		c.Root = filepath.Join(baseDir, c.Root)
	}

	for i := range c.Run {
		if c.Run[i].Cwd != "" && !filepath.IsAbs(c.Run[i].Cwd) {
			c.Run[i].Cwd = filepath.Join(c.Root, c.Run[i].Cwd)
		}
	}

	if c.PostRun != nil && c.PostRun.ProjectDir != "" && !filepath.IsAbs(c.PostRun.ProjectDir) {
		c.PostRun.ProjectDir = filepath.Join(c.Root, c.PostRun.ProjectDir)
	}
}
