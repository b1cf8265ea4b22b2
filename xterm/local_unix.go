//go:build unix

package xterm

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/lixenwraith/xtermjs/ansi"
)

// Local presents the host terminal through the Terminal interface so programs
// written against the widget can run natively during development
type Local struct {
	in    *os.File
	out   *os.File
	inFd  int
	outFd int

	oldTerm *term.State

	mu             sync.Mutex
	nextID         int
	dataHandlers   map[int]func(string)
	resizeHandlers map[int]func(int, int)

	stopCh  chan struct{}
	readWg  sync.WaitGroup
	sigCh   chan os.Signal
	started bool
}

var _ Terminal = (*Local)(nil)

// NewLocal creates a Local bound to stdin/stdout
func NewLocal() *Local {
	return &Local{
		in:             os.Stdin,
		out:            os.Stdout,
		inFd:           int(os.Stdin.Fd()),
		outFd:          int(os.Stdout.Fd()),
		dataHandlers:   make(map[int]func(string)),
		resizeHandlers: make(map[int]func(int, int)),
	}
}

// Start enters raw mode and begins delivering input and resize events
func (l *Local) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return nil
	}

	if !term.IsTerminal(l.inFd) {
		return fmt.Errorf("stdin is not a terminal")
	}
	old, err := term.MakeRaw(l.inFd)
	if err != nil {
		return fmt.Errorf("raw mode: %w", err)
	}
	l.oldTerm = old

	l.stopCh = make(chan struct{})
	l.sigCh = make(chan os.Signal, 1)
	signal.Notify(l.sigCh, syscall.SIGWINCH)

	l.readWg.Add(2)
	go l.readLoop(l.stopCh)
	go l.resizeLoop(l.stopCh)
	l.started = true
	return nil
}

// Close stops event delivery and restores the terminal mode saved by Start
func (l *Local) Close() error {
	l.mu.Lock()
	if !l.started {
		l.mu.Unlock()
		return nil
	}
	l.started = false
	signal.Stop(l.sigCh)
	close(l.stopCh)
	l.mu.Unlock()

	l.readWg.Wait()

	if l.oldTerm != nil {
		return term.Restore(l.inFd, l.oldTerm)
	}
	return nil
}

func (l *Local) Write(data string) {
	if _, err := l.out.WriteString(data); err != nil {
		log.Debug().Err(err).Str("component", "xterm.local").Msg("stdout write failed")
	}
}

func (l *Local) Cols() int {
	w, _ := l.size()
	return w
}

func (l *Local) Rows() int {
	_, h := l.size()
	return h
}

// Resize asks the host emulator to resize through the xterm window manipulation sequence
func (l *Local) Resize(cols, rows int) {
	var b strings.Builder
	_ = ansi.WindowSize(&b, cols, rows)
	l.Write(b.String())
}

func (l *Local) Clear()          { l.Write(ansi.Clear) }
func (l *Local) Reset()          { l.Write(ansi.RIS) }
func (l *Local) ScrollToBottom() {}
func (l *Local) Focus()          {}
func (l *Local) Blur()           {}

func (l *Local) OnData(handler func(data string)) Disposable {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	l.dataHandlers[id] = handler
	return DisposableFunc(func() {
		l.mu.Lock()
		delete(l.dataHandlers, id)
		l.mu.Unlock()
	})
}

func (l *Local) OnResize(handler func(cols, rows int)) Disposable {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	l.resizeHandlers[id] = handler
	return DisposableFunc(func() {
		l.mu.Lock()
		delete(l.resizeHandlers, id)
		l.mu.Unlock()
	})
}

// size returns the host terminal size for the output fd
func (l *Local) size() (int, int) {
	ws, err := unix.IoctlGetWinsize(l.outFd, unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 || ws.Row == 0 {
		return DefaultCols, DefaultRows // Fallback
	}
	return int(ws.Col), int(ws.Row)
}

// readLoop polls stdin so the stop channel is observed between reads
func (l *Local) readLoop(stopCh <-chan struct{}) {
	defer l.readWg.Done()
	buf := make([]byte, 256)

	for {
		select {
		case <-stopCh:
			return
		default:
		}

		fds := []unix.PollFd{{Fd: int32(l.inFd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, 100)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			log.Error().Err(err).Str("component", "xterm.local").Msg("stdin poll failed")
			return
		}
		if n == 0 {
			continue // Timeout
		}

		rn, err := unix.Read(l.inFd, buf)
		if err != nil {
			if err == unix.EINTR || err == unix.EAGAIN {
				continue
			}
			log.Error().Err(err).Str("component", "xterm.local").Msg("stdin read failed")
			return
		}
		if rn == 0 {
			return // EOF
		}

		data := string(buf[:rn])
		l.mu.Lock()
		handlers := make([]func(string), 0, len(l.dataHandlers))
		for _, h := range l.dataHandlers {
			handlers = append(handlers, h)
		}
		l.mu.Unlock()
		for _, h := range handlers {
			h(data)
		}
	}
}

// resizeLoop converts SIGWINCH into resize notifications
func (l *Local) resizeLoop(stopCh <-chan struct{}) {
	defer l.readWg.Done()
	for {
		select {
		case <-stopCh:
			return
		case <-l.sigCh:
			w, h := l.size()
			l.mu.Lock()
			handlers := make([]func(int, int), 0, len(l.resizeHandlers))
			for _, fn := range l.resizeHandlers {
				handlers = append(handlers, fn)
			}
			l.mu.Unlock()
			for _, fn := range handlers {
				fn(w, h)
			}
		}
	}
}
