package arena

import (
	"fmt"
	"unsafe"

	"github.com/joshuapare/arenakit/internal/buf"
	"github.com/joshuapare/arenakit/internal/format"
)

// window binds an address range to the host bytes that back it. mem[0]
// corresponds to region.Base.
type window struct {
	region Region
	mem    []byte
}

func newWindow(r Region, mem []byte) (window, error) {
	if err := r.Validate(); err != nil {
		return window{}, err
	}
	if uintptr(len(mem)) != r.Size() {
		return window{}, fmt.Errorf("%w: have %d bytes, region spans %d", ErrBacking, len(mem), r.Size())
	}
	// Address alignment only carries over to host pointers if both agree
	// modulo the word size.
	host := uintptr(unsafe.Pointer(&mem[0]))
	if host%format.WordSize != uintptr(r.Base)%format.WordSize {
		return window{}, fmt.Errorf("%w: host %#x and base %#x disagree modulo %d",
			ErrBacking, host, uintptr(r.Base), format.WordSize)
	}
	return window{region: r, mem: mem}, nil
}

// slice returns the host bytes for [p, p+n), which must lie in [lo, limit).
func (w window) slice(p Addr, n uintptr, lo Addr) ([]byte, error) {
	if w.mem == nil {
		return nil, ErrNoBacking
	}
	if p < lo {
		return nil, fmt.Errorf("%w: %#x below %#x", ErrOutOfRange, uintptr(p), uintptr(lo))
	}
	if _, ok := buf.Span(uintptr(p), n, uintptr(w.region.Limit)); !ok {
		return nil, fmt.Errorf("%w: [%#x, +%d) past %#x", ErrOutOfRange, uintptr(p), n, uintptr(w.region.Limit))
	}
	off := uintptr(p - w.region.Base)
	b, _ := buf.Slice(w.mem, off, n)
	return b[:n:n], nil
}
