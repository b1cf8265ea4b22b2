package tty

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/xtermjs/backend"
	"github.com/lixenwraith/xtermjs/xterm/xtermtest"
)

func newTestTty(t *testing.T, queue int) (*Tty, *xtermtest.Recorder) {
	t.Helper()
	rec := xtermtest.NewRecorder()
	be := backend.New(rec)
	t.Cleanup(func() { _ = be.Close() })
	return New(be, queue), rec
}

func TestWriteBuffersUntilFlush(t *testing.T) {
	tt, rec := newTestTty(t, 0)

	_, err := tt.Write([]byte("\x1b[H"))
	require.NoError(t, err)
	_, err = tt.Write([]byte("frame"))
	require.NoError(t, err)
	assert.Empty(t, rec.Writes())

	require.NoError(t, tt.Flush())
	assert.Equal(t, []string{"\x1b[Hframe"}, rec.Writes())
}

func TestStartSubscribesAndStopDisposes(t *testing.T) {
	tt, rec := newTestTty(t, 0)

	require.NoError(t, tt.Start())
	require.NoError(t, tt.Start(), "second start is a no-op")
	data, resize := rec.Handlers()
	assert.Equal(t, 1, data)
	assert.Equal(t, 1, resize)

	_, _ = tt.Write([]byte("restore"))
	require.NoError(t, tt.Stop())
	data, resize = rec.Handlers()
	assert.Zero(t, data)
	assert.Zero(t, resize)
	assert.Equal(t, []string{"restore"}, rec.Writes())
}

func TestReadReturnsWidgetInput(t *testing.T) {
	tt, rec := newTestTty(t, 0)
	require.NoError(t, tt.Start())

	rec.EmitData("abcdef")

	buf := make([]byte, 4)
	n, err := tt.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(buf[:n]))

	n, err = tt.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "ef", string(buf[:n]))
}

func TestInputDroppedWhenQueueFull(t *testing.T) {
	tt, rec := newTestTty(t, 1)
	require.NoError(t, tt.Start())

	rec.EmitData("a")
	rec.EmitData("b")

	buf := make([]byte, 8)
	n, err := tt.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "a", string(buf[:n]))

	require.NoError(t, tt.Drain())
	n, err = tt.Read(buf)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDrainWakesBlockedRead(t *testing.T) {
	tt, _ := newTestTty(t, 0)
	require.NoError(t, tt.Start())

	done := make(chan int, 1)
	go func() {
		n, _ := tt.Read(make([]byte, 8))
		done <- n
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, tt.Drain())
	select {
	case n := <-done:
		assert.Zero(t, n)
	case <-time.After(time.Second):
		t.Fatal("read not woken by drain")
	}
}

func TestCloseEndsReads(t *testing.T) {
	tt, rec := newTestTty(t, 0)
	require.NoError(t, tt.Start())

	_, _ = tt.Write([]byte("last"))
	require.NoError(t, tt.Close())
	assert.Equal(t, []string{"last"}, rec.Writes())

	_, err := tt.Read(make([]byte, 8))
	assert.ErrorIs(t, err, io.EOF)
	assert.ErrorIs(t, tt.Start(), io.ErrClosedPipe)
}

func TestNotifyResize(t *testing.T) {
	tt, rec := newTestTty(t, 0)
	require.NoError(t, tt.Start())

	fired := 0
	tt.NotifyResize(func() { fired++ })
	rec.EmitResize(120, 40)
	assert.Equal(t, 1, fired)

	ws, err := tt.WindowSize()
	require.NoError(t, err)
	assert.Equal(t, 120, ws.Width)
	assert.Equal(t, 40, ws.Height)

	tt.NotifyResize(nil)
	rec.EmitResize(100, 30)
	assert.Equal(t, 1, fired)
}

func TestWindowSizeFlushesFirst(t *testing.T) {
	tt, rec := newTestTty(t, 0)

	_, _ = tt.Write([]byte("pending"))
	_, err := tt.WindowSize()
	require.NoError(t, err)

	calls := rec.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, xtermtest.Call{Method: "write", Arg: "pending"}, calls[0])
	assert.Equal(t, "cols", calls[1].Method)
	assert.Equal(t, "rows", calls[2].Method)
}
