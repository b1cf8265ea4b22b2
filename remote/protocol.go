package remote

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType identifies the semantic meaning of a frame
type MessageType string

const (
	// Server to page
	MsgOutput MessageType = "output" // text for term.write
	MsgClear  MessageType = "clear"
	MsgReset  MessageType = "reset"
	MsgFocus  MessageType = "focus"
	MsgBlur   MessageType = "blur"
	MsgScroll MessageType = "scroll" // scrollToBottom

	// Both directions
	MsgResize MessageType = "resize"

	// Page to server
	MsgInput MessageType = "input" // term.onData payload
	MsgHello MessageType = "hello" // initial dimensions after open
)

var (
	// ErrUnknownMessage is returned by Decode for unrecognised frame types
	ErrUnknownMessage = errors.New("unknown message type")
	// ErrBadSize is returned by Decode for dimensions outside 1..max
	ErrBadSize = errors.New("invalid terminal size")
)

// Message is one JSON text frame on the socket
type Message struct {
	Type MessageType `json:"type"`
	Data string      `json:"data,omitempty"`
	Cols int         `json:"cols,omitempty"`
	Rows int         `json:"rows,omitempty"`
}

// Decode parses and validates a frame received from the page. Sizes must lie
// within 1..maxCols and 1..maxRows.
func Decode(p []byte, maxCols, maxRows int) (*Message, error) {
	var m Message
	if err := json.Unmarshal(p, &m); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	switch m.Type {
	case MsgInput:
	case MsgHello, MsgResize:
		if m.Cols <= 0 || m.Rows <= 0 || m.Cols > maxCols || m.Rows > maxRows {
			return nil, fmt.Errorf("%w: %s frame %dx%d, limit %dx%d", ErrBadSize, m.Type, m.Cols, m.Rows, maxCols, maxRows)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, m.Type)
	}
	return &m, nil
}
