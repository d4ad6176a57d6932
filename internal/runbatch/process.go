// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"os"
	"sync"

	"github.com/matt-FFFFFF/conrun/internal/ctxlog"
)

type processState int

const (
	statePending processState = iota
	stateRunning
	stateExited
)

// Process is the handle of one launched command.
type Process struct {
	Resolved ResolvedCommand

	slot       int
	mu         sync.Mutex
	state      processState
	ps         *os.Process
	terminated bool
	outcome    Outcome
}

func newProcess(slot int, rc ResolvedCommand) *Process {
	return &Process{Resolved: rc, slot: slot}
}

// Alive reports whether the process has been started and its exit not yet processed.
func (p *Process) Alive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state == stateRunning
}

// Outcome returns the final state once the exit has been processed.
func (p *Process) Outcome() (Outcome, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.outcome, p.state == stateExited
}

// Terminate kills the process and all of its descendants.
// It is a no-op for processes that are not running or were already terminated.
// Failures are logged and returned but leave the handle unchanged.
func (p *Process) Terminate(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != stateRunning || p.terminated {
		return nil
	}

	ctx = ctxlog.With(ctx, "command", p.Resolved.Label(), "index", p.Resolved.Index)

	signalled, err := killTree(ctx, p.ps)
	if err != nil {
		return err
	}

	if signalled {
		p.terminated = true

		ctxlog.Debug(ctx, "command terminated")
	}

	return nil
}

func (p *Process) started(ps *os.Process) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ps = ps
	p.state = stateRunning
}

// exited records the outcome and returns it with the Killed flag set.
// A process that was terminated but had already exited on its own keeps its
// natural outcome: only a death by signal after Terminate counts as killed.
func (p *Process) exited(o Outcome, signalled bool) Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()

	o.Killed = p.terminated && signalled
	p.outcome = o
	p.state = stateExited

	return o
}
