// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"strconv"
	"strings"
)

// Spec is a parsed prefix colour from the configuration, e.g. "blue", "magentaBright.bold" or "#ff8800".
type Spec struct {
	// Foreground is an ANSI colour number ("0"-"255") or a "#rrggbb" hex string.
	// It is empty when no colour was requested or the name was not recognised.
	Foreground string
	Bold       bool
}

var ansiNames = map[string]Code{
	"black":   FgBlack,
	"red":     FgRed,
	"green":   FgGreen,
	"yellow":  FgYellow,
	"blue":    FgBlue,
	"magenta": FgMagenta,
	"cyan":    FgCyan,
	"white":   FgWhite,
	"gray":    FgHiBlack,
	"grey":    FgHiBlack,
}

// ParseSpec converts a configuration colour string into a Spec.
// Modifiers are separated by dots; only "bold" is understood, others are ignored.
func ParseSpec(s string) Spec {
	var spec Spec

	for i, part := range strings.Split(strings.TrimSpace(s), ".") {
		if part == "" {
			continue
		}

		if strings.EqualFold(part, "bold") {
			spec.Bold = true
			continue
		}

		if i == 0 {
			spec.Foreground = foreground(part)
		}
	}

	return spec
}

func foreground(name string) string {
	if strings.HasPrefix(name, "#") {
		return name
	}

	if n, err := strconv.Atoi(name); err == nil && n >= 0 && n <= 255 {
		return name
	}

	lower := strings.ToLower(name)
	bright := strings.HasSuffix(lower, "bright")
	lower = strings.TrimSuffix(lower, "bright")

	code, ok := ansiNames[lower]
	if !ok {
		return ""
	}

	// Convert the SGR code to the 256 colour palette index: 30-37 -> 0-7, 90-97 -> 8-15.
	idx := int(code - FgBlack)
	if code >= FgHiBlack {
		idx = int(code-FgHiBlack) + 8 //nolint:mnd
	} else if bright {
		idx += 8
	}

	return strconv.Itoa(idx)
}
