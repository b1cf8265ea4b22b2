package backend

import (
	"errors"
	"fmt"
)

// ErrMalformedOutputEncoding reports buffered output that is not valid text in
// the configured encoding. Match with errors.Is.
var ErrMalformedOutputEncoding = errors.New("malformed output encoding")

// ErrClosed is returned by Write after Close
var ErrClosed = errors.New("backend closed")

// EncodingError describes a failed transcode of one flush batch
type EncodingError struct {
	Encoding string // name of the source encoding
	Offset   int    // byte offset of the first undecodable input, -1 if unknown
	Len      int    // size of the batch
	Retained bool   // batch kept for retry instead of discarded
	Err      error  // underlying x/text error
}

func (e *EncodingError) Error() string {
	fate := "discarded"
	if e.Retained {
		fate = "retained"
	}
	if e.Offset >= 0 {
		return fmt.Sprintf("%s: %d bytes of %s output %s, first invalid byte at offset %d",
			ErrMalformedOutputEncoding, e.Len, e.Encoding, fate, e.Offset)
	}
	return fmt.Sprintf("%s: %d bytes of %s output %s: %v",
		ErrMalformedOutputEncoding, e.Len, e.Encoding, fate, e.Err)
}

// Is makes errors.Is(err, ErrMalformedOutputEncoding) hold
func (e *EncodingError) Is(target error) bool {
	return target == ErrMalformedOutputEncoding
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}
