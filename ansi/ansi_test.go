package ansi

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequences(t *testing.T) {
	tests := []struct {
		name  string
		write func(*bytes.Buffer) error
		want  string
	}{
		{"origin", func(b *bytes.Buffer) error { return CursorPos(b, 0, 0) }, "\x1b[1;1H"},
		{"cursor pos", func(b *bytes.Buffer) error { return CursorPos(b, 9, 4) }, "\x1b[5;10H"},
		{"large pos", func(b *bytes.Buffer) error { return CursorPos(b, 1233, 999) }, "\x1b[1000;1234H"},
		{"forward one", func(b *bytes.Buffer) error { return CursorForward(b, 1) }, "\x1b[C"},
		{"forward many", func(b *bytes.Buffer) error { return CursorForward(b, 12) }, "\x1b[12C"},
		{"forward none", func(b *bytes.Buffer) error { return CursorForward(b, 0) }, ""},
		{"sgr", func(b *bytes.Buffer) error { return SGR(b, 1, 4) }, "\x1b[1;4m"},
		{"sgr reset", func(b *bytes.Buffer) error { return SGR(b) }, "\x1b[m"},
		{"fg rgb", func(b *bytes.Buffer) error { return FgRGB(b, 255, 128, 0) }, "\x1b[38;2;255;128;0m"},
		{"bg rgb", func(b *bytes.Buffer) error { return BgRGB(b, 20, 20, 30) }, "\x1b[48;2;20;20;30m"},
		{"fg 256", func(b *bytes.Buffer) error { return Fg256(b, 196) }, "\x1b[38;5;196m"},
		{"bg 256", func(b *bytes.Buffer) error { return Bg256(b, 17) }, "\x1b[48;5;17m"},
		{"title", func(b *bytes.Buffer) error { return Title(b, "xtermjs") }, "\x1b]2;xtermjs\x07"},
		{"window size", func(b *bytes.Buffer) error { return WindowSize(b, 132, 43) }, "\x1b[8;43;132t"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tt.write(&buf))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}
