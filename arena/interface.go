package arena

// Allocator hands out non-overlapping, aligned ranges of an arena window.
//
// Implementations:
//   - Bump: cursor held in the allocator value
//   - Header: cursor persisted as a counter at the window base
//   - File: Header over a memory-mapped file
//   - Locked: mutex wrapper for ports with more than one execution context
type Allocator interface {
	// Acquire returns the start of a fresh range satisfying l, or an
	// *ExhaustedError matching ErrExhausted. On failure nothing changes.
	Acquire(l Layout) (Addr, error)

	// Release accepts a previously returned range. Arenas never reclaim,
	// so this is a no-op in every implementation.
	Release(p Addr, l Layout)

	// Used returns the bytes consumed so far, alignment padding included.
	Used() uintptr

	// Remaining returns the bytes still available before the limit.
	Remaining() uintptr

	// Region returns the window the allocator governs.
	Region() Region
}

// Memory converts a returned range to host memory. This is the only place an
// arena address turns into something the caller can read and write.
type Memory interface {
	Bytes(p Addr, n uintptr) ([]byte, error)
}

// Backend is an allocator whose ranges can be read and written.
type Backend interface {
	Allocator
	Memory
}
