// Package buf contains overflow-checked address arithmetic.
package buf

// AddOverflowSafe adds a and b, returning ok = false when the result would
// wrap around the address space.
func AddOverflowSafe(a, b uintptr) (uintptr, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

// SubUnderflowSafe subtracts b from a, returning ok = false when b > a.
func SubUnderflowSafe(a, b uintptr) (uintptr, bool) {
	if b > a {
		return 0, false
	}
	return a - b, true
}

// Span returns the end of [off, off+n) if it fits within limit.
func Span(off, n, limit uintptr) (uintptr, bool) {
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > limit {
		return 0, false
	}
	return end, true
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n uintptr) ([]byte, bool) {
	end, ok := Span(off, n, uintptr(len(b)))
	if !ok {
		return nil, false
	}
	return b[off:end], true
}
