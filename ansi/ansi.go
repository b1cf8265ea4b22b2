// Package ansi holds pre-built escape sequences and small writers for
// producers that emit raw ANSI to the widget instead of going through tcell.
package ansi

import (
	"io"
	"strconv"
)

// Fixed sequences
const (
	CSI   = "\x1b["
	Reset = "\x1b[0m"
	Clear = "\x1b[2J\x1b[H"
	Home  = "\x1b[H"
	RIS   = "\x1bc" // Reset to Initial State

	CursorHide = "\x1b[?25l"
	CursorShow = "\x1b[?25h"

	AltScreenEnter = "\x1b[?1049h"
	AltScreenExit  = "\x1b[?1049l"
	// DECAWM; off keeps the cursor at the right edge instead of scrolling from the last cell
	AutoWrapOn  = "\x1b[?7h"
	AutoWrapOff = "\x1b[?7l"

	DefaultFg = "\x1b[39m"
	DefaultBg = "\x1b[49m"

	Bold      = "\x1b[1m"
	Dim       = "\x1b[2m"
	Italic    = "\x1b[3m"
	Underline = "\x1b[4m"
	Blink     = "\x1b[5m"
	Reverse   = "\x1b[7m"

	CRLF = "\r\n"
)

// seq assembles one CSI sequence in a stack buffer: CSI p0;p1;...final
func seq(w io.Writer, final byte, params ...int) error {
	var arr [48]byte
	b := append(arr[:0], CSI...)
	for i, p := range params {
		if i > 0 {
			b = append(b, ';')
		}
		if p < 0 {
			p = 0
		}
		b = strconv.AppendInt(b, int64(p), 10)
	}
	b = append(b, final)
	_, err := w.Write(b)
	return err
}

// CursorPos moves the cursor to column x, row y (0-indexed)
func CursorPos(w io.Writer, x, y int) error {
	return seq(w, 'H', y+1, x+1)
}

// CursorForward moves the cursor right by n columns; n <= 0 writes nothing
func CursorForward(w io.Writer, n int) error {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		_, err := io.WriteString(w, "\x1b[C")
		return err
	}
	return seq(w, 'C', n)
}

// SGR writes a Select Graphic Rendition sequence with the given parameters
func SGR(w io.Writer, params ...int) error {
	return seq(w, 'm', params...)
}

// FgRGB sets a 24-bit foreground colour
func FgRGB(w io.Writer, r, g, b uint8) error {
	return seq(w, 'm', 38, 2, int(r), int(g), int(b))
}

// BgRGB sets a 24-bit background colour
func BgRGB(w io.Writer, r, g, b uint8) error {
	return seq(w, 'm', 48, 2, int(r), int(g), int(b))
}

// Fg256 sets a palette foreground colour
func Fg256(w io.Writer, n uint8) error {
	return seq(w, 'm', 38, 5, int(n))
}

// Bg256 sets a palette background colour
func Bg256(w io.Writer, n uint8) error {
	return seq(w, 'm', 48, 5, int(n))
}

// Title sets the window title (OSC 2)
func Title(w io.Writer, title string) error {
	_, err := io.WriteString(w, "\x1b]2;"+title+"\x07")
	return err
}

// WindowSize requests a text area of cols x rows (xterm window manipulation)
func WindowSize(w io.Writer, cols, rows int) error {
	return seq(w, 't', 8, rows, cols)
}
