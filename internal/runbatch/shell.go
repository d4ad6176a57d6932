// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"fmt"
	"os"
	"runtime"
)

const (
	goosWindows          = "windows"
	commandSwitchWindows = "/C"
	commandSwitchUnix    = "-c"
	winSystem32          = "System32"
	cmdExe               = "cmd.exe"
	binSh                = "/bin/sh"
	winSystemRootEnv     = "SystemRoot"
)

// Shell is the interpreter used to run invocations.
type Shell struct {
	Path string
	Args []string // Placed before the invocation, e.g. "-c".
}

// DefaultShell returns /bin/sh on Unix-like systems and cmd.exe on Windows.
// The invocation builder emits POSIX syntax, so the user's login shell is not used.
func DefaultShell() Shell {
	if runtime.GOOS == goosWindows {
		systemRoot := os.Getenv(winSystemRootEnv)
		if systemRoot == "" {
			systemRoot = `C:\Windows`
		}

		return Shell{
			Path: fmt.Sprintf(`%s\%s\%s`, systemRoot, winSystem32, cmdExe),
			Args: []string{commandSwitchWindows},
		}
	}

	return Shell{Path: binSh, Args: []string{commandSwitchUnix}}
}

func (s Shell) argv(invocation string) []string {
	args := make([]string, 0, len(s.Args)+1)
	args = append(args, s.Args...)

	return append(args, invocation)
}
