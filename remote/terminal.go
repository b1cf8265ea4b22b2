package remote

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/xtermjs/logger"
	"github.com/lixenwraith/xtermjs/xterm"
)

var (
	// ErrSessionClosed is reported once the page or the server ends the session
	ErrSessionClosed = errors.New("session closed")
	// ErrQueueFull is reported when output outpaces the socket; the session is closed
	ErrQueueFull = errors.New("send queue full")
)

// Terminal is an xterm.js widget in a browser tab, driven over a WebSocket.
// All frames go through one write pump so calls reach the page in call order.
type Terminal struct {
	id     uuid.UUID
	conn   *websocket.Conn
	config *Config

	cols atomic.Int64
	rows atomic.Int64

	sendCh    chan *Message
	stopCh    chan struct{} // stop requested
	stopOnce  sync.Once
	doneCh    chan struct{} // socket torn down
	doneOnce  sync.Once
	helloCh   chan struct{}
	helloOnce sync.Once

	errMu sync.Mutex
	err   error

	mu             sync.Mutex
	nextID         int
	dataHandlers   map[int]func(string)
	resizeHandlers map[int]func(int, int)

	log zerolog.Logger
}

var _ xterm.Terminal = (*Terminal)(nil)

// newTerminal wraps an upgraded connection; run starts its I/O loops
func newTerminal(id uuid.UUID, conn *websocket.Conn, cfg *Config) *Terminal {
	t := &Terminal{
		id:             id,
		conn:           conn,
		config:         cfg,
		sendCh:         make(chan *Message, cfg.SendQueueSize),
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
		helloCh:        make(chan struct{}),
		dataHandlers:   make(map[int]func(string)),
		resizeHandlers: make(map[int]func(int, int)),
		log: logger.WithComponent("remote").With().
			Str("session", id.String()).
			Str("remote_addr", conn.RemoteAddr().String()).
			Logger(),
	}
	t.cols.Store(xterm.DefaultCols)
	t.rows.Store(xterm.DefaultRows)
	return t
}

func (t *Terminal) run() {
	go t.readLoop()
	go t.writeLoop()
}

// ID returns the session identifier
func (t *Terminal) ID() uuid.UUID { return t.id }

// Write queues text for term.write on the page
func (t *Terminal) Write(data string) {
	t.send(&Message{Type: MsgOutput, Data: data})
}

func (t *Terminal) Cols() int { return int(t.cols.Load()) }
func (t *Terminal) Rows() int { return int(t.rows.Load()) }

// Resize asks the page to resize the widget; handlers fire when the page confirms
func (t *Terminal) Resize(cols, rows int) {
	t.send(&Message{Type: MsgResize, Cols: cols, Rows: rows})
}

func (t *Terminal) Clear()          { t.send(&Message{Type: MsgClear}) }
func (t *Terminal) Reset()          { t.send(&Message{Type: MsgReset}) }
func (t *Terminal) ScrollToBottom() { t.send(&Message{Type: MsgScroll}) }
func (t *Terminal) Focus()          { t.send(&Message{Type: MsgFocus}) }
func (t *Terminal) Blur()           { t.send(&Message{Type: MsgBlur}) }

func (t *Terminal) OnData(handler func(data string)) xterm.Disposable {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	t.dataHandlers[id] = handler
	return xterm.DisposableFunc(func() {
		t.mu.Lock()
		delete(t.dataHandlers, id)
		t.mu.Unlock()
	})
}

func (t *Terminal) OnResize(handler func(cols, rows int)) xterm.Disposable {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	t.resizeHandlers[id] = handler
	return xterm.DisposableFunc(func() {
		t.mu.Lock()
		delete(t.resizeHandlers, id)
		t.mu.Unlock()
	})
}

// Closed is closed when the session starts shutting down for any reason
func (t *Terminal) Closed() <-chan struct{} { return t.stopCh }

// Done is closed once the socket has been torn down
func (t *Terminal) Done() <-chan struct{} { return t.doneCh }

// Err returns the reason the session ended, nil while it is open
func (t *Terminal) Err() error {
	t.errMu.Lock()
	defer t.errMu.Unlock()
	return t.err
}

// Close sends queued frames, then a close frame, and waits for teardown
func (t *Terminal) Close() error {
	t.stop(ErrSessionClosed)
	<-t.doneCh
	return nil
}

// waitHello blocks until the page reports its size, the session ends, or d elapses
func (t *Terminal) waitHello(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-t.helloCh:
		return true
	case <-t.stopCh:
		return false
	case <-timer.C:
		return false
	}
}

// send enqueues a frame. A full queue ends the session rather than dropping output.
func (t *Terminal) send(msg *Message) {
	select {
	case <-t.stopCh:
		t.log.Debug().Str("type", string(msg.Type)).Msg("frame after close dropped")
		return
	default:
	}

	select {
	case t.sendCh <- msg:
	default:
		t.log.Error().Int("queue", cap(t.sendCh)).Msg("send queue full, closing session")
		t.stop(ErrQueueFull)
	}
}

// stop records the first cause and signals both loops
func (t *Terminal) stop(cause error) {
	t.stopOnce.Do(func() {
		t.errMu.Lock()
		t.err = cause
		t.errMu.Unlock()
		close(t.stopCh)
	})
}

func (t *Terminal) teardown() {
	t.doneOnce.Do(func() {
		t.conn.Close()
		close(t.doneCh)
	})
}

// readLoop dispatches page frames until the socket fails or closes
func (t *Terminal) readLoop() {
	defer t.stop(ErrSessionClosed)

	t.conn.SetReadLimit(t.config.MaxMessageSize)
	_ = t.conn.SetReadDeadline(time.Now().Add(t.config.PongTimeout))
	t.conn.SetPongHandler(func(string) error {
		return t.conn.SetReadDeadline(time.Now().Add(t.config.PongTimeout))
	})

	for {
		kind, p, err := t.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				t.log.Warn().Err(err).Msg("socket read failed")
			}
			return
		}
		_ = t.conn.SetReadDeadline(time.Now().Add(t.config.PongTimeout))
		if kind != websocket.TextMessage {
			continue
		}

		msg, err := Decode(p, t.config.MaxCols, t.config.MaxRows)
		if err != nil {
			t.log.Warn().Err(err).Msg("bad frame ignored")
			continue
		}
		t.dispatch(msg)
	}
}

func (t *Terminal) dispatch(msg *Message) {
	switch msg.Type {
	case MsgInput:
		t.mu.Lock()
		handlers := make([]func(string), 0, len(t.dataHandlers))
		for _, h := range t.dataHandlers {
			handlers = append(handlers, h)
		}
		t.mu.Unlock()
		for _, h := range handlers {
			h(msg.Data)
		}

	case MsgHello, MsgResize:
		t.cols.Store(int64(msg.Cols))
		t.rows.Store(int64(msg.Rows))
		if msg.Type == MsgHello {
			t.helloOnce.Do(func() { close(t.helloCh) })
			return
		}
		t.mu.Lock()
		handlers := make([]func(int, int), 0, len(t.resizeHandlers))
		for _, h := range t.resizeHandlers {
			handlers = append(handlers, h)
		}
		t.mu.Unlock()
		for _, h := range handlers {
			h(msg.Cols, msg.Rows)
		}
	}
}

// writeLoop is the only writer on the socket
func (t *Terminal) writeLoop() {
	defer t.teardown()

	ticker := time.NewTicker(t.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-t.sendCh:
			if err := t.writeFrame(msg); err != nil {
				t.stop(err)
				return
			}
		case <-ticker.C:
			_ = t.conn.SetWriteDeadline(time.Now().Add(t.config.WriteTimeout))
			if err := t.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				t.stop(err)
				return
			}
		case <-t.stopCh:
			t.drain()
			return
		}
	}
}

// drain writes frames queued before stop, then the close frame
func (t *Terminal) drain() {
	for {
		select {
		case msg := <-t.sendCh:
			if err := t.writeFrame(msg); err != nil {
				return
			}
		default:
			_ = t.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(t.config.WriteTimeout))
			return
		}
	}
}

func (t *Terminal) writeFrame(msg *Message) error {
	_ = t.conn.SetWriteDeadline(time.Now().Add(t.config.WriteTimeout))
	if err := t.conn.WriteJSON(msg); err != nil {
		t.log.Warn().Err(err).Str("type", string(msg.Type)).Msg("socket write failed")
		return err
	}
	return nil
}
