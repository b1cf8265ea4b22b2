// Package backend batches terminal output for an xterm.js widget.
//
// A Backend is an io.Writer that never talks to the widget on Write. Bytes
// accumulate until Flush, which transcodes them to text and hands them over in
// a single Terminal.Write call. Reaching the widget through Terminal or Borrow
// flushes first, so output written before a direct widget call is always
// delivered before that call.
//
// Bytes that fail to transcode are dropped by Flush and reported as
// ErrMalformedOutputEncoding. WithRetainOnError keeps them instead.
//
// A Backend is not safe for concurrent use.
package backend
