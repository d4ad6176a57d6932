// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"os/exec"
	"slices"
	"sync"
	"time"

	"github.com/matt-FFFFFF/conrun/internal/ctxlog"
	"github.com/matt-FFFFFF/conrun/internal/prefixwriter"
)

const (
	// exitCodeNotStarted is the synthetic exit code of a command that could not be launched.
	exitCodeNotStarted = -1
	// waitDelay bounds how long output pipes held open by orphaned descendants may delay an exit.
	waitDelay = 2 * time.Second
)

var (
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrAlreadyStarted is returned when Start or OnExit is called on a started pool.
	ErrAlreadyStarted = errors.New("pool already started")
)

// Observer is called on the pool's event loop after a process exit has been recorded.
type Observer func(ctx context.Context, p *Process, o Outcome)

// Pool launches a set of commands concurrently and serialises their exit handling.
type Pool struct {
	procs               []*Process
	observers           []Observer
	shell               Shell
	stdout              *prefixwriter.Sink
	stderr              *prefixwriter.Sink
	killOthersOnFailure bool

	mu       sync.Mutex
	started  bool
	events   chan exitEvent
	done     chan struct{}
	outcomes Outcomes
}

type exitEvent struct {
	proc      *Process
	outcome   Outcome
	signalled bool // The process was ended by a signal rather than exiting.
}

// Option configures a Pool.
type Option func(*Pool)

// WithKillOthersOnFailure controls whether a failing command terminates all other commands.
// It is enabled by default.
func WithKillOthersOnFailure(enabled bool) Option {
	return func(p *Pool) {
		p.killOthersOnFailure = enabled
	}
}

// WithOutput sets where the prefixed stdout and stderr of the commands are written.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(p *Pool) {
		p.stdout = prefixwriter.NewSink(stdout)
		p.stderr = prefixwriter.NewSink(stderr)
	}
}

// WithShell overrides the interpreter used to run invocations.
func WithShell(s Shell) Option {
	return func(p *Pool) {
		p.shell = s
	}
}

// NewPool creates an unstarted pool with one handle per command.
func NewPool(cmds []ResolvedCommand, opts ...Option) *Pool {
	p := &Pool{
		procs:               make([]*Process, len(cmds)),
		shell:               DefaultShell(),
		stdout:              prefixwriter.NewSink(os.Stdout),
		stderr:              prefixwriter.NewSink(os.Stderr),
		killOthersOnFailure: true,
	}

	for i, c := range cmds {
		p.procs[i] = newProcess(i, c)
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Processes returns the handles in index order.
func (p *Pool) Processes() []*Process {
	return slices.Clone(p.procs)
}

// OnExit registers an observer. Observers run in registration order after the
// pool's own failure handling.
func (p *Pool) OnExit(obs Observer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return ErrAlreadyStarted
	}

	p.observers = append(p.observers, obs)

	return nil
}

// Start launches every command without waiting for any of them and returns the handles.
// A command that cannot be launched is reported as an exit with code -1.
// Cancelling ctx forcefully terminates all running commands.
func (p *Pool) Start(ctx context.Context) ([]*Process, error) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return nil, ErrAlreadyStarted
	}

	p.started = true
	p.events = make(chan exitEvent, len(p.procs))
	p.done = make(chan struct{})
	p.outcomes = make(Outcomes, len(p.procs))
	p.mu.Unlock()

	for _, proc := range p.procs {
		p.launch(ctx, proc)
	}

	go p.loop(ctx)

	return p.Processes(), nil
}

// Wait blocks until every process has exited and all observers have returned.
// Outcomes are in the order the commands were given to NewPool.
// It returns nil if the pool was never started.
func (p *Pool) Wait() Outcomes {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()

	if done == nil {
		return nil
	}

	<-done

	return p.outcomes
}

func (p *Pool) launch(ctx context.Context, proc *Process) {
	rc := proc.Resolved
	logger := ctxlog.Logger(ctx).With("command", rc.Label(), "index", rc.Index)

	prefix := prefixwriter.Prefix(rc.Label(), rc.PrefixColor)
	stdout := p.stdout.Writer(prefix)
	stderr := p.stderr.Writer(prefix)

	//nolint:gosec // running configured commands is the purpose of this tool
	cmd := exec.Command(p.shell.Path, p.shell.argv(rc.Invocation)...)
	cmd.Dir = rc.Cwd
	cmd.Env = environ(rc.Env)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay

	logger.Debug("starting process", "cwd", rc.Cwd, "invocation", rc.Invocation)

	if err := cmd.Start(); err != nil {
		logger.Error("could not start command", "error", err)

		p.events <- exitEvent{proc: proc, outcome: Outcome{
			Index:    rc.Index,
			Name:     rc.Name,
			ExitCode: exitCodeNotStarted,
			Err:      errors.Join(ErrCouldNotStartProcess, err),
		}}

		return
	}

	proc.started(cmd.Process)
	logger.Debug("process started", "pid", cmd.Process.Pid)

	go func() {
		err := cmd.Wait()

		_ = stdout.Flush()
		_ = stderr.Flush()

		o := Outcome{Index: rc.Index, Name: rc.Name, ExitCode: cmd.ProcessState.ExitCode()}

		var exitErr *exec.ExitError

		switch {
		case err == nil, errors.As(err, &exitErr):
		case errors.Is(err, exec.ErrWaitDelay):
			logger.Debug("output still held open by a descendant after exit")
		default:
			o.Err = err
		}

		p.events <- exitEvent{proc: proc, outcome: o, signalled: diedFromSignal(cmd.ProcessState)}
	}()
}

// loop is the only place exits are processed, so observers never run concurrently.
func (p *Pool) loop(ctx context.Context) {
	defer close(p.done)

	cancelled := ctx.Done()
	// Termination must still work after the run context is cancelled.
	ctx = context.WithoutCancel(ctx)

	for pending := len(p.procs); pending > 0; {
		select {
		case ev := <-p.events:
			pending--

			p.handleExit(ctx, ev)
		case <-cancelled:
			cancelled = nil

			ctxlog.Warn(ctx, "run cancelled, killing all commands")
			p.terminateOthers(ctx, nil)
		}
	}
}

func (p *Pool) handleExit(ctx context.Context, ev exitEvent) {
	o := ev.proc.exited(ev.outcome, ev.signalled)
	p.outcomes[ev.proc.slot] = o

	ctxlog.Debug(ctx, "command exited",
		"command", ev.proc.Resolved.Label(),
		"index", o.Index,
		"exitCode", o.ExitCode,
		"killed", o.Killed,
		"error", o.Err)

	if p.killOthersOnFailure && o.ExitCode != 0 && !o.Killed {
		ctxlog.Warn(ctx, fmt.Sprintf("command %q failed, killing others", ev.proc.Resolved.Label()),
			"exitCode", o.ExitCode)
		p.terminateOthers(ctx, ev.proc)
	}

	for _, obs := range p.observers {
		obs(ctx, ev.proc, o)
	}
}

// terminateOthers terminates every live process except self, which may be nil.
func (p *Pool) terminateOthers(ctx context.Context, self *Process) {
	for _, proc := range p.procs {
		if self != nil && proc.Resolved.SameAs(self.Resolved) {
			continue
		}

		if !proc.Alive() {
			continue
		}

		// Failures are logged by Terminate and are not retried.
		_ = proc.Terminate(ctx)
	}
}

func environ(extra map[string]string) []string {
	env := os.Environ()

	for _, k := range slices.Sorted(maps.Keys(extra)) {
		env = append(env, k+"="+extra[k])
	}

	return env
}
