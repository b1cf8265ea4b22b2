//go:build !(js && wasm)

package tty

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// DefaultTermName selects the terminfo entry matching xterm.js
const DefaultTermName = "xterm-256color"

// Screen is a tcell.Screen whose frames are flushed to the widget as they are shown
type Screen struct {
	tcell.Screen
	tty *Tty
}

// NewScreen builds a terminfo screen on tty. An empty termName selects DefaultTermName.
// The returned screen still needs Init.
func NewScreen(tty *Tty, termName string) (*Screen, error) {
	if termName == "" {
		termName = DefaultTermName
	}
	ti, err := tcell.LookupTerminfo(termName)
	if err != nil {
		return nil, fmt.Errorf("terminfo %q: %w", termName, err)
	}
	s, err := tcell.NewTerminfoScreenFromTtyTerminfo(tty, ti)
	if err != nil {
		return nil, fmt.Errorf("tcell screen: %w", err)
	}
	return &Screen{Screen: s, tty: tty}, nil
}

// Init engages the screen and delivers the setup sequences
func (s *Screen) Init() error {
	if err := s.Screen.Init(); err != nil {
		return err
	}
	if cs := s.CharacterSet(); !strings.EqualFold(cs, "UTF-8") {
		s.tty.log.Warn().Str("charset", cs).Msg("screen charset is not UTF-8, widget output may fail to transcode")
	}
	s.flush()
	return nil
}

// Show renders pending cell changes and flushes them as one widget write
func (s *Screen) Show() {
	s.Screen.Show()
	s.flush()
}

// Sync redraws the full screen and flushes it
func (s *Screen) Sync() {
	s.Screen.Sync()
	s.flush()
}

// Beep rings the widget bell immediately
func (s *Screen) Beep() error {
	if err := s.Screen.Beep(); err != nil {
		return err
	}
	return s.tty.Flush()
}

func (s *Screen) flush() {
	if err := s.tty.Flush(); err != nil {
		s.tty.log.Error().Err(err).Msg("frame flush failed")
	}
}
