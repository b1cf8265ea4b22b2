//go:build js && wasm

// Command xtermjs-wasm is a line-editing echo shell for an xterm.js Terminal
// exposed on globalThis.term, compiled with GOOS=js GOARCH=wasm.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lixenwraith/xtermjs/ansi"
	"github.com/lixenwraith/xtermjs/backend"
	"github.com/lixenwraith/xtermjs/logger"
	"github.com/lixenwraith/xtermjs/xterm"
)

const prompt = "\x1b[1;32m$\x1b[0m "

type shell struct {
	be   *backend.Backend
	line []rune
}

func main() {
	if err := logger.Init("info", logger.FormatConsole); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	term, err := xterm.FromGlobal("term")
	if err != nil {
		log.Fatal().Err(err).Msg("no terminal")
	}

	sh := &shell{be: backend.New(term)}
	sh.banner()
	sh.flush()
	sh.be.Terminal().Focus()

	term.OnData(sh.input)
	term.OnResize(func(cols, rows int) {
		_, _ = fmt.Fprintf(sh.be, "\r\n\x1b[2m[resized to %dx%d]\x1b[0m\r\n%s%s", cols, rows, prompt, string(sh.line))
		sh.flush()
	})

	select {}
}

func (sh *shell) banner() {
	_ = ansi.Title(sh.be, "xtermjs")
	_ = ansi.FgRGB(sh.be, 100, 200, 255)
	_, _ = sh.be.WriteString("xtermjs" + ansi.Reset + " echo shell")
	_, _ = sh.be.WriteString(ansi.CRLF)
	t := sh.be.Terminal()
	_, _ = fmt.Fprintf(sh.be, "%dx%d, type and press enter%s", t.Cols(), t.Rows(), ansi.CRLF)
	_, _ = sh.be.WriteString(prompt)
}

// input handles one onData event; its output is delivered in one write
func (sh *shell) input(data string) {
	for _, r := range data {
		switch r {
		case '\r':
			line := strings.TrimSpace(string(sh.line))
			sh.line = sh.line[:0]
			_, _ = sh.be.WriteString(ansi.CRLF)
			sh.run(line)
			_, _ = sh.be.WriteString(prompt)
		case 0x7f, '\b':
			if len(sh.line) > 0 {
				sh.line = sh.line[:len(sh.line)-1]
				_, _ = sh.be.WriteString("\b \b")
			}
		case 0x0c: // Ctrl+L
			sh.be.Terminal().Clear()
		default:
			if r >= ' ' {
				sh.line = append(sh.line, r)
				_, _ = sh.be.WriteString(string(r))
			}
		}
	}
	sh.flush()
}

func (sh *shell) run(line string) {
	switch line {
	case "":
	case "clear":
		_, _ = sh.be.WriteString(ansi.Clear + ansi.Home)
	case "reset":
		sh.be.Terminal().Reset()
	default:
		_, _ = sh.be.WriteString(ansi.Bold + line)
		_, _ = sh.be.WriteString(ansi.Reset + ansi.CRLF)
	}
}

func (sh *shell) flush() {
	if err := sh.be.Flush(); err != nil {
		log.Error().Err(err).Msg("flush failed")
	}
}
