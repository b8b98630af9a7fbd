// Package arena provides bump allocators over a fixed address window.
//
// # Overview
//
// An arena owns a contiguous window [base, limit) reserved at configuration
// time and answers two requests: acquire N bytes aligned to A, and release.
// Release never reclaims anything. Memory pressure is resolved only by
// exhaustion, never by compaction or reuse; callers that need reclamation
// layer a pool on top instead of extending this package.
//
// # Variants
//
// Bump keeps the next-free cursor in the allocator value:
//
//	r, _ := arena.NewRegion(0x0100_0000, 16<<20)
//	b, _ := arena.NewBump(r)
//	p, err := b.Acquire(arena.Layout{Size: 64, Align: 8})
//
// Header persists the cursor as a 32-bit allocated_size counter in the first
// word of the window, followed by a reserved area up to 0x100:
//
//	h, _ := arena.InitHeader(r, mem)       // first boot: zero the header
//	h, _ = arena.NewHeader(r, mem)         // later: attach, keep the counter
//
// File is a Header over a memory-mapped file, so the counter survives the
// process:
//
//	f, _ := arena.CreateFile("heap.arena", r)
//	defer f.Close()
//
// # Exhaustion
//
// Acquire returns *ExhaustedError (matching ErrExhausted) when the padded
// request does not fit before the limit. The allocator state is left
// untouched. Whether exhaustion halts the process is decided by the caller;
// see package heap for the fatal policy.
//
// # Concurrency
//
// Bump and Header perform no synchronization: they are meant for a single
// execution context. Wrap them with Locked, or build Header with
// WithSharedCursor, before allocating from more than one goroutine.
//
// # Addresses
//
// Allocators speak in Addr values inside the window. Host memory is reached
// only through Memory.Bytes, which bounds-checks the range against the
// window.
package arena
