// Package xtermtest provides an in-memory xterm.Terminal for tests.
package xtermtest

import (
	"fmt"
	"strings"
	"sync"

	"github.com/lixenwraith/xtermjs/xterm"
)

// Call is one recorded method invocation on the Recorder
type Call struct {
	Method string
	Arg    string
}

func (c Call) String() string {
	if c.Arg == "" {
		return c.Method
	}
	return fmt.Sprintf("%s(%q)", c.Method, c.Arg)
}

// Recorder implements xterm.Terminal and records every call in order.
// Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	calls  []Call
	cols   int
	rows   int
	nextID int

	dataHandlers   map[int]func(string)
	resizeHandlers map[int]func(int, int)
}

var _ xterm.Terminal = (*Recorder)(nil)

// NewRecorder creates a recorder with default 80x24 dimensions
func NewRecorder() *Recorder {
	return &Recorder{
		cols:           xterm.DefaultCols,
		rows:           xterm.DefaultRows,
		dataHandlers:   make(map[int]func(string)),
		resizeHandlers: make(map[int]func(int, int)),
	}
}

func (r *Recorder) record(method, arg string) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Method: method, Arg: arg})
	r.mu.Unlock()
}

// Write implements xterm.Terminal
func (r *Recorder) Write(data string) { r.record("write", data) }

// Cols implements xterm.Terminal
func (r *Recorder) Cols() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Method: "cols"})
	return r.cols
}

// Rows implements xterm.Terminal
func (r *Recorder) Rows() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Method: "rows"})
	return r.rows
}

// Resize implements xterm.Terminal; registered resize handlers are notified
func (r *Recorder) Resize(cols, rows int) {
	r.record("resize", fmt.Sprintf("%dx%d", cols, rows))
	r.EmitResize(cols, rows)
}

func (r *Recorder) Clear()          { r.record("clear", "") }
func (r *Recorder) Reset()          { r.record("reset", "") }
func (r *Recorder) ScrollToBottom() { r.record("scrollToBottom", "") }
func (r *Recorder) Focus()          { r.record("focus", "") }
func (r *Recorder) Blur()           { r.record("blur", "") }

// OnData implements xterm.Terminal
func (r *Recorder) OnData(handler func(data string)) xterm.Disposable {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.dataHandlers[id] = handler
	return xterm.DisposableFunc(func() {
		r.mu.Lock()
		delete(r.dataHandlers, id)
		r.mu.Unlock()
	})
}

// OnResize implements xterm.Terminal
func (r *Recorder) OnResize(handler func(cols, rows int)) xterm.Disposable {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.resizeHandlers[id] = handler
	return xterm.DisposableFunc(func() {
		r.mu.Lock()
		delete(r.resizeHandlers, id)
		r.mu.Unlock()
	})
}

// EmitData simulates user input arriving from the widget
func (r *Recorder) EmitData(data string) {
	r.mu.Lock()
	handlers := make([]func(string), 0, len(r.dataHandlers))
	for _, h := range r.dataHandlers {
		handlers = append(handlers, h)
	}
	r.mu.Unlock()

	for _, h := range handlers {
		h(data)
	}
}

// EmitResize updates dimensions and notifies resize handlers without recording a call
func (r *Recorder) EmitResize(cols, rows int) {
	r.mu.Lock()
	r.cols, r.rows = cols, rows
	handlers := make([]func(int, int), 0, len(r.resizeHandlers))
	for _, h := range r.resizeHandlers {
		handlers = append(handlers, h)
	}
	r.mu.Unlock()

	for _, h := range handlers {
		h(cols, rows)
	}
}

// Calls returns a copy of all recorded calls
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Writes returns the arguments of every write call, in order
func (r *Recorder) Writes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, c := range r.calls {
		if c.Method == "write" {
			out = append(out, c.Arg)
		}
	}
	return out
}

// Output returns all written text concatenated
func (r *Recorder) Output() string {
	return strings.Join(r.Writes(), "")
}

// Handlers reports the number of live data and resize registrations
func (r *Recorder) Handlers() (data, resize int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.dataHandlers), len(r.resizeHandlers)
}

// ResetCalls clears the call log
func (r *Recorder) ResetCalls() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}
