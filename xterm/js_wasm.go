//go:build js && wasm

package xterm

import (
	"fmt"
	"sync"
	"syscall/js"
)

// jsTerminal binds a live xterm.js Terminal object
type jsTerminal struct {
	v js.Value
}

// FromValue wraps an xterm.js Terminal instance
func FromValue(v js.Value) Terminal {
	return &jsTerminal{v: v}
}

// FromGlobal looks up an xterm.js Terminal stored on globalThis under name
func FromGlobal(name string) (Terminal, error) {
	v := js.Global().Get(name)
	if v.IsUndefined() || v.IsNull() {
		return nil, fmt.Errorf("xterm: global %q is not set", name)
	}
	if v.Get("write").Type() != js.TypeFunction {
		return nil, fmt.Errorf("xterm: global %q is not an xterm.js Terminal", name)
	}
	return FromValue(v), nil
}

func (t *jsTerminal) Write(data string) {
	t.v.Call("write", data)
}

func (t *jsTerminal) Cols() int {
	if c := t.v.Get("cols"); c.Type() == js.TypeNumber {
		return c.Int()
	}
	return DefaultCols
}

func (t *jsTerminal) Rows() int {
	if r := t.v.Get("rows"); r.Type() == js.TypeNumber {
		return r.Int()
	}
	return DefaultRows
}

func (t *jsTerminal) Resize(cols, rows int) { t.v.Call("resize", cols, rows) }
func (t *jsTerminal) Clear()                { t.v.Call("clear") }
func (t *jsTerminal) Reset()                { t.v.Call("reset") }
func (t *jsTerminal) ScrollToBottom()       { t.v.Call("scrollToBottom") }
func (t *jsTerminal) Focus()                { t.v.Call("focus") }
func (t *jsTerminal) Blur()                 { t.v.Call("blur") }

func (t *jsTerminal) OnData(handler func(data string)) Disposable {
	cb := js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) > 0 {
			handler(args[0].String())
		}
		return nil
	})
	return t.subscribe("onData", cb)
}

func (t *jsTerminal) OnResize(handler func(cols, rows int)) Disposable {
	// xterm.js passes a single {cols, rows} object
	cb := js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) > 0 {
			handler(args[0].Get("cols").Int(), args[0].Get("rows").Int())
		}
		return nil
	})
	return t.subscribe("onResize", cb)
}

// subscribe registers cb with an xterm.js event emitter and ties release of the Go
// callback to the returned IDisposable
func (t *jsTerminal) subscribe(event string, cb js.Func) Disposable {
	d := t.v.Call(event, cb)
	var once sync.Once
	return DisposableFunc(func() {
		once.Do(func() {
			if d.Type() == js.TypeObject {
				d.Call("dispose")
			}
			cb.Release()
		})
	})
}
