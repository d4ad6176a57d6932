// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrettyHandler_Handle(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(NewPrettyHandler(&slog.HandlerOptions{Level: slog.LevelDebug},
		WithDestinationWriter(&buf),
	))

	logger.Info("command exited", "command", "web", "exitCode", 0)

	out := buf.String()
	assert.Contains(t, out, "INFO:")
	assert.Contains(t, out, "command exited")
	assert.Contains(t, out, `"command"`)
	assert.Contains(t, out, `"web"`)
	assert.Contains(t, out, `"exitCode"`)
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.NotContains(t, out, "\033[", "colour codes must not be written without WithColour")
}

func TestPrettyHandler_NoAttrs(t *testing.T) {
	var buf bytes.Buffer

	slog.New(NewPrettyHandler(nil, WithDestinationWriter(&buf))).Info("plain")
	assert.NotContains(t, buf.String(), "{}")

	buf.Reset()
	slog.New(NewPrettyHandler(nil, WithDestinationWriter(&buf), WithOutputEmptyAttrs())).Info("plain")
	assert.Contains(t, buf.String(), "{}")
}

func TestPrettyHandler_Enabled(t *testing.T) {
	h := NewPrettyHandler(&slog.HandlerOptions{Level: slog.LevelWarn})

	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestPrettyHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(NewPrettyHandler(nil, WithDestinationWriter(&buf))).
		With("runID", "r1").
		WithGroup("proc")

	logger.Info("started", "pid", 42)

	assert.Contains(t, buf.String(), `"runID"`)
	assert.Contains(t, buf.String(), `"r1"`)
	assert.Contains(t, buf.String(), `"proc"`)
	assert.Contains(t, buf.String(), `"pid"`)
}

func TestPrettyHandler_ReplaceAttrDropsLevel(t *testing.T) {
	var buf bytes.Buffer

	h := NewPrettyHandler(&slog.HandlerOptions{
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				return slog.Attr{}
			}

			return a
		},
	}, WithDestinationWriter(&buf))

	slog.New(h).Warn("quiet")
	assert.NotContains(t, buf.String(), "WARN")
	assert.Contains(t, buf.String(), "quiet")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("boom") }

func TestPrettyHandler_WriteError(t *testing.T) {
	h := NewPrettyHandler(nil, WithDestinationWriter(failingWriter{}))

	err := h.Handle(context.Background(), slog.Record{Message: "x", Level: slog.LevelInfo})
	require.ErrorIs(t, err, ErrIoWrite)
}

func TestPrettyHandler_Concurrent(t *testing.T) {
	var (
		buf bytes.Buffer
		mu  sync.Mutex
	)

	w := writerFunc(func(p []byte) (int, error) {
		mu.Lock()
		defer mu.Unlock()

		return buf.Write(p)
	})
	logger := slog.New(NewPrettyHandler(nil, WithDestinationWriter(w)))

	var wg sync.WaitGroup

	for i := range 20 {
		wg.Add(1)

		go func() {
			defer wg.Done()
			logger.Info("line", "i", i)
		}()
	}

	wg.Wait()
	assert.Equal(t, 20, strings.Count(buf.String(), "\n"))
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
