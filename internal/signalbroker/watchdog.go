// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/conrun/internal/ctxlog"
)

// Watch monitors the signal channel and cancels the context on the second
// signal of a given type. It returns when the channel is closed, the context
// is done, or after cancelling.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if _, dup := seen[sig]; dup {
				ctxlog.Warn(ctx, "received second signal, killing all commands", "signal", sig.String())
				cancel()

				return
			}

			ctxlog.Info(ctx, "received signal, press again to kill all commands", "signal", sig.String())

			seen[sig] = struct{}{}
		}
	}
}
