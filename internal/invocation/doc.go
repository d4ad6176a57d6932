// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package invocation turns the command lines written in the configuration into
// a single line that can be handed to "sh -c".
//
// Multi-line scripts and lists of steps are parsed with mvdan.cc/sh, so line
// continuations, quoting and comments are handled by a real shell parser.
// Every top level statement is printed on one line and the statements are
// chained with "&&", which stops at the first failing step.
package invocation
