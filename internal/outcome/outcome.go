// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package outcome reduces the per-command outcomes of a run to a single decision.
package outcome

import (
	"github.com/matt-FFFFFF/conrun/internal/runbatch"
)

const (
	exitSuccess = 0
	exitFailure = 1
)

// Decision is the final verdict of a run.
type Decision struct {
	ExitCode            int
	ShouldRunPostAction bool
}

// Options tune the aggregation.
type Options struct {
	// Strict makes a run where some but not all commands failed exit with 1.
	Strict bool
}

// Aggregate reduces the outcomes of a run to a decision. Any killed command makes
// the run exit 0 without the post-run action, whatever the other exit codes were.
func Aggregate(outcomes runbatch.Outcomes, opts Options) Decision {
	if len(outcomes) == 0 {
		return Decision{ExitCode: exitSuccess}
	}

	failing := 0

	for _, o := range outcomes {
		if o.Killed {
			return Decision{ExitCode: exitSuccess}
		}

		if o.ExitCode != 0 {
			failing++
		}
	}

	switch {
	case failing == 0:
		return Decision{ExitCode: exitSuccess, ShouldRunPostAction: true}
	case failing == len(outcomes), opts.Strict:
		return Decision{ExitCode: exitFailure}
	default:
		return Decision{ExitCode: exitSuccess}
	}
}

// Failed is the decision for a run that could not be orchestrated.
func Failed() Decision {
	return Decision{ExitCode: exitFailure}
}
