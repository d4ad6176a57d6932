// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color provides functions to determine if color output is enabled
// and to colorize strings with ANSI escape codes.
// NO_COLOR disables colour, FORCE_COLOR enables it, otherwise colour is used
// only when stdout is a terminal (detected with golang.org/x/term).
//
// It also parses the prefix colour names used in the configuration file.
package color
