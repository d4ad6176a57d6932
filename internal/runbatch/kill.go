// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"os"

	"github.com/matt-FFFFFF/conrun/internal/ctxlog"
	"github.com/shirou/gopsutil/v4/process"
)

// ErrCouldNotKillProcess is returned when the operating system refused to signal the process.
var ErrCouldNotKillProcess = errors.New("could not kill process")

// descendants lists every process below pid, children before grandchildren.
// Errors are ignored: a process that cannot be inspected is simply not part of the tree.
var descendants = func(ctx context.Context, pid int) []*process.Process {
	root, err := process.NewProcessWithContext(ctx, int32(pid)) //nolint:gosec
	if err != nil {
		return nil
	}

	var out []*process.Process

	queue := []*process.Process{root}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		children, err := p.ChildrenWithContext(ctx)
		if err != nil {
			continue
		}

		out = append(out, children...)
		queue = append(queue, children...)
	}

	return out
}

// killTree kills the shell first so it cannot start anything new, then every
// process that was below it. It reports false without error when the shell had
// already been reaped.
func killTree(ctx context.Context, ps *os.Process) (bool, error) {
	logger := ctxlog.Logger(ctx).With("pid", ps.Pid)
	tree := descendants(ctx, ps.Pid)

	if err := ps.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			logger.Debug("process already done")
			return false, nil
		}

		logger.Error("process kill error", "error", err)

		return false, errors.Join(ErrCouldNotKillProcess, err)
	}

	for _, child := range tree {
		if err := child.KillWithContext(ctx); err != nil {
			logger.Debug("could not kill descendant", "childPid", child.Pid, "error", err)
		}
	}

	logger.Debug("process killed", "descendants", len(tree))

	return true, nil
}
