package format

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for the header.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrReservedNonZero indicates the reserved header area holds data.
	ErrReservedNonZero = errors.New("format: reserved header bytes not zero")
	// ErrCounterRange indicates the allocated-size counter points past the window.
	ErrCounterRange = errors.New("format: allocated size exceeds capacity")
)
