// Package xterm describes the xterm.js terminal widget as seen from Go.
//
// Terminal is the handle the rest of the module writes to. Implementations:
//   - FromValue / FromGlobal (js/wasm): a live xterm.js object through syscall/js
//   - Local (unix): the host terminal, for running the same program natively
//   - remote.Terminal: a widget in a browser tab reached over a WebSocket
//   - xtermtest.Recorder: in-memory fake for tests
//
// The widget interprets escape sequences itself; nothing here parses output.
package xterm
