package format

import "fmt"

// Header is a decoded copy of the arena header.
//
//	Offset  Size  Description
//	------  ----  ----------------------------------------------------------
//	 0x000   4    allocated_size: bytes consumed since Init, padding included
//	 0x004  252   reserved, zero
//	 0x100   -    first byte of user data
//
// A decoded Header is a snapshot. Live readers of a running arena must go
// through the volatile accessor instead of re-parsing.
type Header struct {
	AllocatedSize uint32
	ReservedClean bool
}

// ParseHeader decodes the header at the start of b. It does not validate the
// reserved area; check ReservedClean or call Validate.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("arena header: %w", ErrTruncated)
	}
	return Header{
		AllocatedSize: ReadU32(b, AllocatedSizeOffset),
		ReservedClean: ReservedClean(b),
	}, nil
}

// Validate checks the header against the usable capacity of its window.
func (h Header) Validate(capacity uint64) error {
	if !h.ReservedClean {
		return ErrReservedNonZero
	}
	if uint64(h.AllocatedSize) > capacity {
		return fmt.Errorf("%w (allocated=%d, capacity=%d)", ErrCounterRange, h.AllocatedSize, capacity)
	}
	return nil
}

// ReservedClean reports whether bytes 0x004-0x0FF of b are all zero.
func ReservedClean(b []byte) bool {
	if len(b) < HeaderSize {
		return false
	}
	for _, c := range b[ReservedOffset:HeaderSize] {
		if c != 0 {
			return false
		}
	}
	return true
}

// ClearHeader zeroes the whole header region, counter included.
func ClearHeader(b []byte) {
	clear(b[:HeaderSize])
}
