// Package demo is a small tcell application used to exercise the xterm.js
// backend: a framed event log, a live clock and a size status bar.
package demo

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/xtermjs/logger"
)

const maxLog = 10

var (
	styleBase   = tcell.StyleDefault.Background(tcell.NewRGBColor(20, 20, 30)).Foreground(tcell.NewRGBColor(180, 180, 180))
	styleTitle  = tcell.StyleDefault.Background(tcell.NewRGBColor(40, 40, 60)).Foreground(tcell.NewRGBColor(200, 200, 200)).Bold(true)
	styleFrame  = styleBase.Foreground(tcell.NewRGBColor(60, 60, 80))
	styleStatus = styleBase.Foreground(tcell.NewRGBColor(140, 140, 160))
	styleClock  = styleBase.Foreground(tcell.NewRGBColor(100, 255, 100)).Bold(true)
)

// Option configures an App
type Option func(*App)

// WithTitle sets the title bar text
func WithTitle(title string) Option {
	return func(a *App) { a.title = title }
}

// WithClock replaces time.Now, used by tests for stable output
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// WithTick sets the clock redraw interval
func WithTick(d time.Duration) Option {
	return func(a *App) { a.tick = d }
}

// App draws onto a tcell.Screen the caller has already initialised
type App struct {
	screen tcell.Screen
	title  string
	now    func() time.Time
	tick   time.Duration

	w, h     int
	eventLog []string
	keys     int

	log zerolog.Logger
}

// New creates an App for screen
func New(screen tcell.Screen, opts ...Option) *App {
	a := &App{
		screen: screen,
		title:  "xtermjs demo - type to log keys - q or Ctrl+C to quit",
		now:    time.Now,
		tick:   time.Second,
		log:    logger.WithComponent("demo"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run processes events until q, Ctrl+C, ctx cancellation or screen shutdown.
// It does not call Fini; the screen belongs to the caller.
func (a *App) Run(ctx context.Context) error {
	a.w, a.h = a.screen.Size()

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go a.screen.ChannelEvents(events, quit)

	ticker := time.NewTicker(a.tick)
	defer ticker.Stop()

	a.render()
	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			a.render()

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if done := a.handle(ev); done {
				return nil
			}
		}
	}
}

// handle applies one event and reports whether the app should exit
func (a *App) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyCtrlC || (ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
			a.log.Debug().Msg("quit requested")
			return true
		}
		a.keys++
		a.addLog("KEY: " + ev.Name())

	case *tcell.EventMouse:
		x, y := ev.Position()
		a.addLog(fmt.Sprintf("MOUSE: %d,%d buttons=%d", x, y, ev.Buttons()))

	case *tcell.EventResize:
		w, h := ev.Size()
		if w == a.w && h == a.h {
			return false
		}
		a.w, a.h = w, h
		a.addLog(fmt.Sprintf("RESIZE: %dx%d", w, h))
		// Full repaint; tcell only redraws damaged cells on Show
		a.draw()
		a.screen.Sync()
		return false

	case *tcell.EventFocus:
		a.addLog(fmt.Sprintf("FOCUS: %v", ev.Focused))

	case *tcell.EventPaste:
		if ev.Start() {
			a.addLog("PASTE")
		}

	case *tcell.EventError:
		a.addLog("ERROR: " + ev.Error())
	}

	a.render()
	return false
}

func (a *App) addLog(s string) {
	if len(a.eventLog) >= maxLog {
		copy(a.eventLog, a.eventLog[1:])
		a.eventLog = a.eventLog[:maxLog-1]
	}
	a.eventLog = append(a.eventLog, s)
}

func (a *App) render() {
	a.draw()
	a.screen.Show()
}

func (a *App) draw() {
	s, w, h := a.screen, a.w, a.h
	s.SetStyle(styleBase)
	s.Fill(' ', styleBase)
	if w < 16 || h < 4 {
		return
	}

	// Title
	for x := 0; x < w; x++ {
		s.SetContent(x, 0, ' ', nil, styleTitle)
	}
	text(s, max((w-len(a.title))/2, 0), 0, a.title, styleTitle)

	// Frame around the event log
	box(s, 0, 1, w-1, h-2, styleFrame)
	text(s, w-12, 1, " "+a.now().Format("15:04:05")+" ", styleClock)
	for i, entry := range a.eventLog {
		y := 2 + i
		if y >= h-2 {
			break
		}
		text(s, 2, y, entry, styleBase)
	}

	// Status bar
	status := fmt.Sprintf("Size: %dx%d | Keys: %d", w, h, a.keys)
	text(s, 1, h-1, status, styleStatus)
}

func text(s tcell.Screen, x, y int, str string, style tcell.Style) {
	for _, r := range str {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

func box(s tcell.Screen, x1, y1, x2, y2 int, style tcell.Style) {
	for x := x1 + 1; x < x2; x++ {
		s.SetContent(x, y1, tcell.RuneHLine, nil, style)
		s.SetContent(x, y2, tcell.RuneHLine, nil, style)
	}
	for y := y1 + 1; y < y2; y++ {
		s.SetContent(x1, y, tcell.RuneVLine, nil, style)
		s.SetContent(x2, y, tcell.RuneVLine, nil, style)
	}
	s.SetContent(x1, y1, tcell.RuneULCorner, nil, style)
	s.SetContent(x2, y1, tcell.RuneURCorner, nil, style)
	s.SetContent(x1, y2, tcell.RuneLLCorner, nil, style)
	s.SetContent(x2, y2, tcell.RuneLRCorner, nil, style)
}
