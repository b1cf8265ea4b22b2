package backend

import (
	"github.com/rs/zerolog"
	"golang.org/x/text/encoding"
)

// Option configures a Backend
type Option func(*state)

// WithEncoding decodes buffered output from enc instead of validating it as
// UTF-8. Decoders that substitute U+FFFD for bad input never fail.
func WithEncoding(enc encoding.Encoding) Option {
	return func(s *state) {
		s.enc = enc
	}
}

// WithRetainOnError keeps a batch that failed to transcode at the head of the
// buffer so a later Flush can retry it. Without it the batch is dropped.
func WithRetainOnError() Option {
	return func(s *state) {
		s.retain = true
	}
}

// WithLogger replaces the component logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *state) {
		s.log = l
	}
}
