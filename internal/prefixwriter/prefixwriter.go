// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package prefixwriter interleaves the output of several commands line by line,
// starting every line with the coloured name of the command that wrote it.
package prefixwriter

import (
	"bytes"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/conrun/internal/color"
)

// Sink serialises complete lines from many Writers onto one io.Writer.
type Sink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewSink creates a Sink writing to w.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: w}
}

func (s *Sink) writeLine(prefix string, line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, 0, len(prefix)+1+len(line)+1)
	buf = append(buf, prefix...)
	buf = append(buf, ' ')
	buf = append(buf, line...)
	buf = append(buf, '\n')

	_, err := s.w.Write(buf)

	return err //nolint:wrapcheck
}

// Writer buffers partial lines and forwards complete ones to its Sink.
type Writer struct {
	mu      sync.Mutex
	sink    *Sink
	prefix  string
	partial []byte
}

// Writer returns a Writer whose lines start with prefix.
func (s *Sink) Writer(prefix string) *Writer {
	return &Writer{sink: s, prefix: prefix}
}

// Write implements io.Writer. It always consumes all of p.
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	data := p
	if len(w.partial) > 0 {
		data = append(w.partial, p...)
		w.partial = nil
	}

	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}

		if err := w.sink.writeLine(w.prefix, bytes.TrimSuffix(data[:i], []byte{'\r'})); err != nil {
			return 0, err
		}

		data = data[i+1:]
	}

	if len(data) > 0 {
		w.partial = append([]byte(nil), data...)
	}

	return len(p), nil
}

// Flush writes any buffered partial line followed by a newline.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.partial) == 0 {
		return nil
	}

	line := w.partial
	w.partial = nil

	return w.sink.writeLine(w.prefix, line)
}

// Prefix renders "[label]" in the configured colour.
// Colour is dropped when the output is not a terminal or NO_COLOR is set.
func Prefix(label, colour string) string {
	text := "[" + label + "]"
	spec := color.ParseSpec(colour)

	if !color.Enabled() || (spec.Foreground == "" && !spec.Bold) {
		return text
	}

	style := lipgloss.NewStyle().Bold(spec.Bold)
	if spec.Foreground != "" {
		style = style.Foreground(lipgloss.Color(spec.Foreground))
	}

	return style.Render(text)
}
