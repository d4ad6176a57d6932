// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"os"
	"runtime"
	"syscall"
)

// diedFromSignal reports whether the process ended because it was killed.
// On Windows TerminateProcess leaves a plain exit code, so any failed exit counts.
func diedFromSignal(st *os.ProcessState) bool {
	if st == nil {
		return false
	}

	if runtime.GOOS == goosWindows {
		return !st.Success()
	}

	ws, ok := st.Sys().(syscall.WaitStatus)

	return ok && ws.Signaled()
}
