// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import "strconv"

// ResolvedCommand is the launch-ready form of a configured command.
// It is built once before launch and never modified afterwards.
type ResolvedCommand struct {
	Index            int               // Position in the run, stable for its duration.
	Name             string            // Display name, may be empty.
	Cwd              string            // Working directory.
	Invocation       string            // Single line passed to the shell.
	KillOthersOnExit bool              // Terminate all siblings when this command exits.
	PrefixColor      string            // Colour of the output prefix, see color.ParseSpec.
	Env              map[string]string // Added to the inherited environment.
}

// Label returns the display name, or the index when no name is set.
func (c ResolvedCommand) Label() string {
	if c.Name != "" {
		return c.Name
	}

	return strconv.Itoa(c.Index)
}

// SameAs reports whether both values identify the same launched command.
// Names are not unique across groups, so identity is the index and invocation.
func (c ResolvedCommand) SameAs(other ResolvedCommand) bool {
	return c.Index == other.Index && c.Invocation == other.Invocation
}

// Outcome is the final state of one command.
type Outcome struct {
	Index    int
	Name     string
	ExitCode int   // -1 when the process could not start or was ended by a signal.
	Killed   bool  // Died from a termination issued through its handle.
	Err      error // Launch or wait error, nil for a plain non-zero exit.
}

// Outcomes holds one Outcome per command in index order.
type Outcomes []Outcome
