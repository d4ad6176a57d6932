// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package invocation

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

const stepSeparator = " && "

var (
	// ErrEmptyInvocation is returned when the lines contain no statements.
	ErrEmptyInvocation = errors.New("command line contains no statements")
	// ErrParse is returned when a line is not valid shell syntax.
	ErrParse = errors.New("failed to parse command line")
	// ErrHeredoc is returned for here-documents, which cannot be written on one line.
	ErrHeredoc = errors.New("here-documents cannot be joined into one line")
	// ErrBackground is returned for statements ending in "&", which would escape process tracking.
	ErrBackground = errors.New("background statements are not supported")
)

// Builder converts configured command lines into a single shell invocation.
type Builder func(lines ...string) (string, error)

// OneLine parses each line as a shell script and joins every statement with "&&".
// A line may itself span several lines (a YAML block scalar).
func OneLine(lines ...string) (string, error) {
	parser := syntax.NewParser()
	printer := syntax.NewPrinter(syntax.SingleLine(true))

	var steps []string

	for i, line := range lines {
		f, err := parser.Parse(strings.NewReader(line), fmt.Sprintf("step %d", i+1))
		if err != nil {
			return "", errors.Join(ErrParse, err)
		}

		for _, stmt := range f.Stmts {
			if err := check(stmt); err != nil {
				return "", err
			}

			var buf bytes.Buffer
			if err := printer.Print(&buf, stmt); err != nil {
				return "", errors.Join(ErrParse, err)
			}

			steps = append(steps, strings.TrimSpace(buf.String()))
		}
	}

	if len(steps) == 0 {
		return "", ErrEmptyInvocation
	}

	return strings.Join(steps, stepSeparator), nil
}

func check(stmt *syntax.Stmt) error {
	if stmt.Background {
		return fmt.Errorf("%w: at %s", ErrBackground, stmt.Pos())
	}

	var err error

	syntax.Walk(stmt, func(node syntax.Node) bool {
		if err != nil {
			return false
		}

		if r, ok := node.(*syntax.Redirect); ok && r.Hdoc != nil {
			err = fmt.Errorf("%w: at %s", ErrHeredoc, r.Pos())
			return false
		}

		return true
	})

	return err
}
