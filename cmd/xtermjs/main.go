//go:build !(js && wasm)

// Command xtermjs runs the demo application in xterm.js widgets served over
// WebSocket, or in the host terminal through the same backend.
package main

func main() {
	Execute()
}
