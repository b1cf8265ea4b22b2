//go:build !(js && wasm)

package demo

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/xtermjs/backend"
	"github.com/lixenwraith/xtermjs/tty"
	"github.com/lixenwraith/xtermjs/xterm/xtermtest"
)

func TestRunsOnWidget(t *testing.T) {
	rec := xtermtest.NewRecorder()
	be := backend.New(rec)
	s, err := tty.NewScreen(tty.New(be, 0), "")
	require.NoError(t, err)
	require.NoError(t, s.Init())
	defer func() { _ = be.Close() }()
	defer s.Fini()

	_, done := runApp(t, s)

	require.Eventually(t, func() bool {
		return strings.Contains(rec.Output(), "Size: 80x24")
	}, 2*time.Second, 10*time.Millisecond)

	rec.EmitData("q")
	waitExit(t, done)

	for _, w := range rec.Writes() {
		assert.NotEmpty(t, w, "flushes never write empty text")
	}
}
