package slimproto

import "errors"

// Sentinel errors implementing the taxonomy from the protocol design:
// Truncated and Malformed are decode-time failures, NotConnected and
// SocketClosed and IoFailure are session-time failures, InvalidArgument
// guards against bad caller input before any I/O happens. Unsupported
// opcodes are deliberately not an error — see Unknown in messages.go.
var (
	ErrTruncated       = errors.New("slimproto: truncated input")
	ErrMalformed       = errors.New("slimproto: malformed payload")
	ErrNotConnected    = errors.New("slimproto: not connected")
	ErrSocketClosed    = errors.New("slimproto: socket closed mid-frame")
	ErrIoFailure       = errors.New("slimproto: i/o failure")
	ErrInvalidArgument = errors.New("slimproto: invalid argument")
)
