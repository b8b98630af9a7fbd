// Package format describes the on-arena header of a persisted arena. The
// header occupies the first HeaderSize bytes of the window and is followed
// directly by user allocations.
package format

const (
	// HeaderSize is the number of bytes reserved at the arena base before the
	// first user allocation.
	HeaderSize = 0x100

	// AllocatedSizeOffset is the offset of the cumulative allocated-bytes
	// counter. The counter includes alignment padding.
	AllocatedSizeOffset = 0x000

	// AllocatedSizeWidth is the width of the counter in bytes.
	AllocatedSizeWidth = 4

	// ReservedOffset is the first byte of the reserved area. Everything from
	// here up to HeaderSize must be zero.
	ReservedOffset = AllocatedSizeOffset + AllocatedSizeWidth

	// ReservedSize is the length of the reserved area (0x004-0x0FF).
	ReservedSize = HeaderSize - ReservedOffset

	// DataOffset is the offset of the first byte available to callers.
	DataOffset = HeaderSize

	// MaxCapacity is the largest usable capacity the 32-bit counter can describe.
	MaxCapacity = 1<<32 - 1

	// WordSize is the natural word size of the host.
	WordSize = 4 << (^uintptr(0) >> 63)

	// PageSize is the granularity used when syncing a file-backed arena.
	PageSize = 0x1000
)
