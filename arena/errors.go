package arena

import (
	"errors"
	"fmt"
)

var (
	// ErrExhausted indicates the request does not fit in the unused part of
	// the arena. It is the only allocation failure an arena can report.
	ErrExhausted = errors.New("arena: exhausted")

	// ErrBadAlign indicates an alignment that is zero or not a power of two.
	ErrBadAlign = errors.New("arena: alignment must be a power of two")

	// ErrBadRegion indicates a window with base >= limit or one that wraps
	// the address space.
	ErrBadRegion = errors.New("arena: invalid region")

	// ErrTooSmall indicates the window cannot hold the persisted header.
	ErrTooSmall = errors.New("arena: region smaller than header")

	// ErrTooLarge indicates the usable capacity does not fit the 32-bit
	// allocated-size counter.
	ErrTooLarge = errors.New("arena: region too large for 32-bit header")

	// ErrBacking indicates the host memory does not match the window.
	ErrBacking = errors.New("arena: backing memory does not match region")

	// ErrHeaderCorrupt indicates an attached header failed validation.
	ErrHeaderCorrupt = errors.New("arena: header corrupt")

	// ErrOutOfRange indicates an address range outside the user area.
	ErrOutOfRange = errors.New("arena: address out of range")

	// ErrNoBacking indicates the allocator has no host memory to expose.
	ErrNoBacking = errors.New("arena: allocator has no backing memory")

	// ErrClosed indicates use of a closed file-backed arena.
	ErrClosed = errors.New("arena: closed")
)

// ExhaustedError describes a failed Acquire. The allocator state is exactly
// as it was before the call.
type ExhaustedError struct {
	Layout   Layout
	Used     uintptr // bytes consumed before the call, padding included
	Capacity uintptr // usable bytes in the arena
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("arena: exhausted: cannot fit size=%d align=%d (used %d of %d bytes)",
		e.Layout.Size, e.Layout.Align, e.Used, e.Capacity)
}

// Is makes errors.Is(err, ErrExhausted) match.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrExhausted
}
