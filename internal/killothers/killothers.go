// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package killothers applies the kill-others policy: when a command flagged with
// kill_others_when_exit exits, for any reason, every other running command is killed.
package killothers

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/conrun/internal/ctxlog"
	"github.com/matt-FFFFFF/conrun/internal/runbatch"
)

// Attach registers an exit observer on pool for the commands flagged with KillOthersOnExit.
// It must be called before the pool is started. It returns the number of flagged commands.
func Attach(ctx context.Context, pool *runbatch.Pool) (int, error) {
	procs := pool.Processes()

	flagged := 0

	for _, p := range procs {
		if p.Resolved.KillOthersOnExit {
			flagged++
		}
	}

	if flagged == 0 {
		return 0, nil
	}

	ctxlog.Debug(ctx, "kill-others policy attached", "flagged", flagged)

	err := pool.OnExit(func(ctx context.Context, self *runbatch.Process, _ runbatch.Outcome) {
		if !self.Resolved.KillOthersOnExit {
			return
		}

		ctxlog.Info(ctx, fmt.Sprintf("command %q exited, killing others", self.Resolved.Label()))

		for _, other := range procs {
			if other.Resolved.SameAs(self.Resolved) || !other.Alive() {
				continue
			}

			// Failures are logged by Terminate and are not retried.
			_ = other.Terminate(ctx)
		}
	})
	if err != nil {
		return 0, err
	}

	return flagged, nil
}
