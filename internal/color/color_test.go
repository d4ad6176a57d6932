// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsColorCapable(t *testing.T) {
	t.Setenv(NoColor, "1")
	assert.False(t, isColorCapable(), "Expected color output to be disabled")

	t.Setenv(ForceColor, "1")
	assert.False(t, isColorCapable(), "Expected color output to be disabled as NO_COLOR is still set")

	t.Setenv(NoColor, "")
	assert.True(t, isColorCapable(), "Expected color output to be enabled as FORCE_COLOR is set and NO_COLOR is unset")
}

func TestColorize(t *testing.T) {
	orig := enabled
	defer func() { enabled = orig }()

	enabled = false
	assert.Equal(t, "plain", Colorize("plain", FgRed))

	enabled = true
	assert.Equal(t, "\033[31mred\033[0m", Colorize("red", FgRed))
	assert.Equal(t, "\033[1;36mboth\033[0m", Colorize("both", Bold, FgCyan))
	assert.Equal(t, "none", Colorize("none"))
}

func TestParseSpec(t *testing.T) {
	tests := []struct {
		in   string
		want Spec
	}{
		{in: "", want: Spec{}},
		{in: "blue", want: Spec{Foreground: "4"}},
		{in: "Blue", want: Spec{Foreground: "4"}},
		{in: "magentaBright", want: Spec{Foreground: "13"}},
		{in: "gray", want: Spec{Foreground: "8"}},
		{in: "green.bold", want: Spec{Foreground: "2", Bold: true}},
		{in: "bold", want: Spec{Bold: true}},
		{in: "#ff8800", want: Spec{Foreground: "#ff8800"}},
		{in: "208", want: Spec{Foreground: "208"}},
		{in: "300", want: Spec{}},
		{in: "chartreuse.underline", want: Spec{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSpec(tt.in))
		})
	}
}
