package backend

import (
	"fmt"
	"io"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding"

	"github.com/lixenwraith/xtermjs/logger"
	"github.com/lixenwraith/xtermjs/xterm"
)

// Backend buffers output for an xterm.js widget and delivers it in batches
type Backend struct {
	*state
	cleanup runtime.Cleanup
}

// state is split from Backend so the teardown cleanup can reach the buffer
// without keeping the Backend itself reachable
type state struct {
	term   xterm.Terminal
	buf    []byte
	enc    encoding.Encoding
	retain bool
	closed bool
	log    zerolog.Logger
}

var (
	_ io.Writer       = (*Backend)(nil)
	_ io.StringWriter = (*Backend)(nil)
	_ io.Closer       = (*Backend)(nil)
)

// New wraps a widget handle. The handle stays shared: Backend never closes it.
func New(term xterm.Terminal, opts ...Option) *Backend {
	s := &state{
		term: term,
		log:  logger.WithComponent("backend"),
	}
	for _, opt := range opts {
		opt(s)
	}

	b := &Backend{state: s}
	b.cleanup = runtime.AddCleanup(b, finalFlush, s)
	return b
}

// Write appends p to the pending buffer. Nothing reaches the widget until a flush.
func (b *Backend) Write(p []byte) (int, error) {
	if b.closed {
		return 0, ErrClosed
	}
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// WriteString is Write for strings
func (b *Backend) WriteString(s string) (int, error) {
	if b.closed {
		return 0, ErrClosed
	}
	b.buf = append(b.buf, s...)
	return len(s), nil
}

// Flush delivers all pending output in one Terminal.Write call.
// An empty buffer is a no-op. On a transcoding failure the batch is dropped
// (or kept, with WithRetainOnError) and an *EncodingError is returned.
func (b *Backend) Flush() error {
	return b.flush()
}

// Terminal flushes pending output and returns the widget handle.
// It panics with an *EncodingError when the pending output cannot be
// transcoded; use Borrow to receive that error instead.
func (b *Backend) Terminal() xterm.Terminal {
	if err := b.flush(); err != nil {
		panic(err)
	}
	return b.term
}

// Borrow flushes pending output and returns the widget handle. The handle is
// returned even when the flush fails, since the failed batch can no longer
// reorder with later calls.
func (b *Backend) Borrow() (xterm.Terminal, error) {
	err := b.flush()
	return b.term, err
}

// Buffered returns the number of pending bytes
func (b *Backend) Buffered() int {
	return len(b.buf)
}

// Discard drops pending output without delivering it and returns its size
func (b *Backend) Discard() int {
	n := len(b.buf)
	b.buf = nil
	if n > 0 {
		b.log.Debug().Int("bytes", n).Msg("discarded pending output")
	}
	return n
}

// Close performs the final flush. Later writes fail with ErrClosed; closing
// twice is a no-op. The widget itself is left untouched.
func (b *Backend) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	b.cleanup.Stop()

	if err := b.flush(); err != nil {
		return fmt.Errorf("final flush: %w", err)
	}
	return nil
}

// flush swaps the live buffer for a fresh one before transcoding so the taken
// batch is detached from anything written afterwards
func (s *state) flush() error {
	if len(s.buf) == 0 {
		return nil
	}
	taken := s.buf
	s.buf = nil

	text, err := s.transcode(taken)
	if err != nil {
		if s.retain {
			s.buf = append(taken, s.buf...)
		}
		s.log.Warn().Err(err).Int("bytes", len(taken)).Bool("retained", s.retain).Msg("flush failed")
		return err
	}

	if text != "" {
		s.term.Write(text)
	}
	s.log.Trace().Int("bytes", len(taken)).Msg("flushed")
	return nil
}

// finalFlush runs when a Backend is collected without Close. There is no
// caller left to receive an error, so a failed flush is fatal.
func finalFlush(s *state) {
	if s.closed || len(s.buf) == 0 {
		return
	}
	s.log.Warn().Int("bytes", len(s.buf)).Msg("backend collected without Close, flushing")
	if err := s.flush(); err != nil {
		s.log.Error().Err(err).Msg("pending output lost at teardown")
		panic(err)
	}
}
