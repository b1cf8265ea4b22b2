//go:build !(js && wasm)

package tty

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/xtermjs/backend"
	"github.com/lixenwraith/xtermjs/xterm/xtermtest"
)

func newTestScreen(t *testing.T) (*Screen, *xtermtest.Recorder) {
	t.Helper()
	rec := xtermtest.NewRecorder()
	be := backend.New(rec)
	s, err := NewScreen(New(be, 0), "")
	require.NoError(t, err)
	require.NoError(t, s.Init())
	t.Cleanup(func() {
		s.Fini()
		_ = be.Close()
	})
	return s, rec
}

func TestScreenInitDeliversSetupInOneWrite(t *testing.T) {
	_, rec := newTestScreen(t)

	writes := rec.Writes()
	require.Len(t, writes, 1)
	assert.Contains(t, writes[0], "\x1b[?1049h", "alternate screen")
}

func TestScreenShowIsOneWritePerFrame(t *testing.T) {
	s, rec := newTestScreen(t)
	before := len(rec.Writes())

	s.SetContent(0, 0, 'X', nil, tcell.StyleDefault)
	s.SetContent(1, 0, 'Y', nil, tcell.StyleDefault)
	s.Show()

	writes := rec.Writes()
	require.Len(t, writes, before+1)
	frame := writes[len(writes)-1]
	assert.True(t, strings.Contains(frame, "XY"), "frame %q", frame)

	s.SetContent(2, 0, 'Z', nil, tcell.StyleDefault)
	s.Show()
	assert.Len(t, rec.Writes(), before+2)
}

func TestScreenSizeFollowsWidget(t *testing.T) {
	s, _ := newTestScreen(t)
	w, h := s.Size()
	assert.Equal(t, 80, w)
	assert.Equal(t, 24, h)
}

func TestScreenReceivesWidgetKeys(t *testing.T) {
	s, rec := newTestScreen(t)

	events := make(chan tcell.Event, 8)
	go func() {
		for {
			ev := s.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	rec.EmitData("q")

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			if k, ok := ev.(*tcell.EventKey); ok {
				assert.Equal(t, 'q', k.Rune())
				return
			}
		case <-deadline:
			t.Fatal("key event not received")
		}
	}
}
