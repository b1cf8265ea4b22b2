package backend

import (
	"errors"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

const utf8Name = "UTF-8"

// transcode converts one flush batch to text. p is owned by the caller and
// never aliased by the result.
func (s *state) transcode(p []byte) (string, error) {
	var t transform.Transformer = encoding.UTF8Validator
	if s.enc != nil {
		t = s.enc.NewDecoder()
	}

	out, n, err := transform.Bytes(t, p)
	if err != nil {
		offset := -1
		if errors.Is(err, encoding.ErrInvalidUTF8) || s.enc == nil {
			offset = n
		}
		return "", &EncodingError{
			Encoding: s.encodingName(),
			Offset:   offset,
			Len:      len(p),
			Retained: s.retain,
			Err:      err,
		}
	}
	return string(out), nil
}

func (s *state) encodingName() string {
	if s.enc == nil {
		return utf8Name
	}
	if st, ok := s.enc.(fmt.Stringer); ok {
		return st.String()
	}
	return fmt.Sprintf("%T", s.enc)
}
