// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runbatch runs a batch of resolved commands in parallel as child processes.
//
// A Pool owns one Process handle per command. All exit handling happens on a
// single event loop goroutine: each child is waited for on its own goroutine,
// which only reports the exit into the loop. Observers registered with OnExit
// therefore run one at a time and may freely inspect or terminate other handles.
//
// When any command fails (non-zero exit that was not caused by a termination
// issued through its handle) the pool terminates every other live command.
// Terminate is idempotent, so observers that also terminate handles are safe.
package runbatch
