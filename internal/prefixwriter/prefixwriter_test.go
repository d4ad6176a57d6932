// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package prefixwriter

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_CompleteLines(t *testing.T) {
	var buf bytes.Buffer

	w := NewSink(&buf).Writer("[web]")

	n, err := w.Write([]byte("one\ntwo\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 9, n)
	assert.Equal(t, "[web] one\n[web] two\n", buf.String())
}

func TestWriter_PartialLinesAreBuffered(t *testing.T) {
	var buf bytes.Buffer

	w := NewSink(&buf).Writer("[0]")

	_, _ = w.Write([]byte("hel"))
	assert.Empty(t, buf.String())

	_, _ = w.Write([]byte("lo\nwor"))
	assert.Equal(t, "[0] hello\n", buf.String())

	require.NoError(t, w.Flush())
	assert.Equal(t, "[0] hello\n[0] wor\n", buf.String())

	require.NoError(t, w.Flush(), "flushing an empty buffer is a no-op")
	assert.Equal(t, "[0] hello\n[0] wor\n", buf.String())
}

func TestSink_LinesNeverInterleave(t *testing.T) {
	var buf bytes.Buffer

	sink := NewSink(&buf)

	var wg sync.WaitGroup

	for i := range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			w := sink.Writer(fmt.Sprintf("[%d]", i))
			for range 50 {
				_, _ = w.Write([]byte("abcdefghij\n"))
			}
		}()
	}

	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 400)

	for _, l := range lines {
		assert.True(t, strings.HasSuffix(l, "] abcdefghij"), "corrupt line %q", l)
	}
}

func TestPrefix_PlainWithoutColour(t *testing.T) {
	assert.Equal(t, "[web]", Prefix("web", ""))
	assert.Contains(t, Prefix("api", "blue"), "[api]")
}
