package format

// Alignment arithmetic for power-of-two alignments. Callers validate the
// alignment with IsPowerOfTwo before using the other helpers; a zero or
// non-power-of-two align produces meaningless results.

// IsPowerOfTwo reports whether align is a non-zero power of two.
func IsPowerOfTwo(align uintptr) bool {
	return align != 0 && align&(align-1) == 0
}

// Padding returns the number of bytes needed to move n up to the next
// multiple of align. It is zero when n is already aligned.
//
// Example:
//
//	Padding(4, 8)  = 4
//	Padding(8, 8)  = 0
//	Padding(13, 1) = 0
func Padding(n, align uintptr) uintptr {
	res := n & (align - 1)
	if res == 0 {
		return 0
	}
	return align - res
}

// AlignUp returns n rounded up to the next multiple of align. The result
// wraps if n is within align of the top of the address space; use Padding
// with an overflow-checked add when that matters.
//
// Example:
//
//	AlignUp(1, 8)  = 8
//	AlignUp(8, 8)  = 8
//	AlignUp(9, 16) = 16
func AlignUp(n, align uintptr) uintptr {
	return (n + align - 1) &^ (align - 1)
}

// IsAligned reports whether n is a multiple of align.
func IsAligned(n, align uintptr) bool {
	return n&(align-1) == 0
}
