package xterm

// Terminal is the subset of the xterm.js Terminal API consumed by this module.
// Handles are shared: holders must never assume exclusive ownership.
type Terminal interface {
	// Write hands text to the widget. No failure is observable to the caller.
	Write(data string)

	// Size
	Cols() int
	Rows() int
	Resize(cols, rows int)

	// Screen control
	Clear()
	Reset()
	ScrollToBottom()

	// Focus
	Focus()
	Blur()

	// Events
	// OnData registers a handler for user input (keystrokes, paste)
	OnData(handler func(data string)) Disposable
	// OnResize registers a handler for widget dimension changes
	OnResize(handler func(cols, rows int)) Disposable
}

// Disposable releases an event registration, mirrors xterm.js IDisposable
type Disposable interface {
	Dispose()
}

// DisposableFunc adapts a plain function to Disposable
type DisposableFunc func()

// Dispose implements Disposable
func (f DisposableFunc) Dispose() {
	if f != nil {
		f()
	}
}

// Default dimensions used until a widget reports its real size
const (
	DefaultCols = 80
	DefaultRows = 24
)
