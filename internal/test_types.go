// Copyright (c) 2026, The quizzig Authors
// See LICENSE for licensing information

package internal

import (
	"bytes"
	"io"
	"strings"
	"sync"
)

// ConcBuffer wraps a bytes.Buffer in a mutex so that concurrent writes
// to it don't upset the race detector.
type ConcBuffer struct {
	buf bytes.Buffer
	sync.Mutex
}

func (c *ConcBuffer) Write(p []byte) (int, error) {
	c.Lock()
	n, err := c.buf.Write(p)
	c.Unlock()
	return n, err
}

func (c *ConcBuffer) WriteString(s string) (int, error) {
	c.Lock()
	n, err := c.buf.WriteString(s)
	c.Unlock()
	return n, err
}

func (c *ConcBuffer) String() string {
	c.Lock()
	s := c.buf.String()
	c.Unlock()
	return s
}

func (c *ConcBuffer) Reset() {
	c.Lock()
	c.buf.Reset()
	c.Unlock()
}

// LineWriter calls fn once per '\n'-terminated line written to it, without
// the trailing newline. Tests use it to assert on individual lines of
// captured shell output as they arrive.
type LineWriter struct {
	fn  func(string)
	buf strings.Builder
}

func NewLineWriter(fn func(string)) *LineWriter {
	return &LineWriter{fn: fn}
}

func (w *LineWriter) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			w.buf.Write(p)
			break
		}
		w.buf.Write(p[:i])
		w.fn(w.buf.String())
		w.buf.Reset()
		p = p[i+1:]
	}
	return n, nil
}

var _ io.Writer = (*LineWriter)(nil)
