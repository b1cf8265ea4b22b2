package remote

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/lixenwraith/xtermjs/backend"
)

// Session is one connected page: the widget handle plus the backend writing to it
type Session struct {
	ID       uuid.UUID
	Terminal *Terminal
	Backend  *backend.Backend

	ctx context.Context
}

// Context is cancelled when the page disconnects or the server stops
func (s *Session) Context() context.Context { return s.ctx }

// Close performs the backend's final flush, then closes the socket after
// queued frames are written
func (s *Session) Close() error {
	flushErr := s.Backend.Close()
	closeErr := s.Terminal.Close()
	return errors.Join(flushErr, closeErr)
}
