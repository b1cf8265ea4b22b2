// Package tty lets tcell drive an xterm.js widget.
//
// Tty implements tcell.Tty on top of a backend.Backend: tcell's output is
// buffered by the backend, widget input is fed back through Read, and widget
// resizes are reported through NotifyResize. Screen wraps the resulting
// tcell.Screen so each Show or Sync reaches the widget as a single write.
package tty

import (
	"io"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/xtermjs/backend"
	"github.com/lixenwraith/xtermjs/logger"
	"github.com/lixenwraith/xtermjs/xterm"
)

// DefaultInputQueue is the number of pending input chunks held before new input is dropped
const DefaultInputQueue = 256

// Tty adapts a Backend to tcell.Tty. The backend stays owned by the caller.
type Tty struct {
	mu sync.Mutex // serialises backend access; tcell writes from several goroutines
	be *backend.Backend

	inCh    chan []byte
	readMu  sync.Mutex
	pending []byte

	stateMu   sync.Mutex
	started   bool
	drainCh   chan struct{}
	closeCh   chan struct{}
	closeOnce sync.Once
	resizeCb  func()
	subs      []xterm.Disposable

	log zerolog.Logger
}

var _ tcell.Tty = (*Tty)(nil)

// New creates a Tty writing through be. inputQueue <= 0 selects DefaultInputQueue.
func New(be *backend.Backend, inputQueue int) *Tty {
	if inputQueue <= 0 {
		inputQueue = DefaultInputQueue
	}
	return &Tty{
		be:      be,
		inCh:    make(chan []byte, inputQueue),
		drainCh: make(chan struct{}),
		closeCh: make(chan struct{}),
		log:     logger.WithComponent("tty"),
	}
}

// Start subscribes to widget input and resize events
func (t *Tty) Start() error {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()

	select {
	case <-t.closeCh:
		return io.ErrClosedPipe
	default:
	}
	if t.started {
		return nil
	}

	term, err := t.borrow()
	if err != nil {
		return err
	}
	t.drainCh = make(chan struct{})
	t.subs = append(t.subs,
		term.OnData(t.onData),
		term.OnResize(t.onResize),
	)
	t.started = true
	return nil
}

// Stop flushes remaining output and unsubscribes from the widget
func (t *Tty) Stop() error {
	t.stateMu.Lock()
	t.started = false
	subs := t.subs
	t.subs = nil
	t.stateMu.Unlock()

	for _, d := range subs {
		d.Dispose()
	}
	return t.Flush()
}

// Drain wakes a blocked Read; reads return empty until the next Start
func (t *Tty) Drain() error {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()
	select {
	case <-t.drainCh:
	default:
		close(t.drainCh)
	}
	return nil
}

// NotifyResize registers the callback fired on widget resize; nil unregisters
func (t *Tty) NotifyResize(cb func()) {
	t.stateMu.Lock()
	t.resizeCb = cb
	t.stateMu.Unlock()
}

// WindowSize reports the widget dimensions. Pending output is flushed first.
func (t *Tty) WindowSize() (tcell.WindowSize, error) {
	term, err := t.borrow()
	if err != nil {
		return tcell.WindowSize{}, err
	}
	return tcell.WindowSize{Width: term.Cols(), Height: term.Rows()}, nil
}

// Read returns widget input. It blocks until input arrives, Drain is called, or
// the Tty is closed (io.EOF).
func (t *Tty) Read(p []byte) (int, error) {
	t.readMu.Lock()
	defer t.readMu.Unlock()

	if len(t.pending) > 0 {
		n := copy(p, t.pending)
		t.pending = t.pending[n:]
		return n, nil
	}

	t.stateMu.Lock()
	drainCh := t.drainCh
	t.stateMu.Unlock()

	select {
	case <-t.closeCh:
		return 0, io.EOF
	case <-drainCh:
		return 0, nil
	case data := <-t.inCh:
		n := copy(p, data)
		t.pending = data[n:]
		return n, nil
	}
}

// Write buffers tcell output in the backend without delivering it
func (t *Tty) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.be.Write(p)
}

// Flush delivers buffered output to the widget
func (t *Tty) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.be.Flush()
}

// Close ends input delivery; later reads return io.EOF. Buffered output is flushed.
func (t *Tty) Close() error {
	t.closeOnce.Do(func() {
		close(t.closeCh)
	})
	t.stateMu.Lock()
	subs := t.subs
	t.subs = nil
	t.started = false
	t.stateMu.Unlock()

	for _, d := range subs {
		d.Dispose()
	}
	return t.Flush()
}

// borrow is the backend read-through under the write lock
func (t *Tty) borrow() (xterm.Terminal, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.be.Borrow()
}

func (t *Tty) onData(data string) {
	select {
	case t.inCh <- []byte(data):
	default:
		t.log.Warn().Int("bytes", len(data)).Msg("input queue full, dropping input")
	}
}

func (t *Tty) onResize(cols, rows int) {
	t.stateMu.Lock()
	cb := t.resizeCb
	t.stateMu.Unlock()

	t.log.Debug().Int("cols", cols).Int("rows", rows).Msg("widget resized")
	if cb != nil {
		cb()
	}
}
