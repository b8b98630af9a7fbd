package arena

import (
	"fmt"
	"unsafe"

	"github.com/joshuapare/arenakit/internal/buf"
	"github.com/joshuapare/arenakit/internal/format"
)

// Addr is a platform address inside an arena window. Arithmetic on Addr
// values belongs inside this package; callers convert to host memory with
// Memory.Bytes.
type Addr uintptr

// Region is the reserved window [Base, Limit).
type Region struct {
	Base  Addr
	Limit Addr
}

// NewRegion returns the window starting at base spanning size bytes.
func NewRegion(base Addr, size uintptr) (Region, error) {
	limit, ok := buf.AddOverflowSafe(uintptr(base), size)
	if !ok {
		return Region{}, fmt.Errorf("%w: base=%#x size=%#x wraps", ErrBadRegion, base, size)
	}
	r := Region{Base: base, Limit: Addr(limit)}
	if err := r.Validate(); err != nil {
		return Region{}, err
	}
	return r, nil
}

// Validate checks base < limit.
func (r Region) Validate() error {
	if r.Base >= r.Limit {
		return fmt.Errorf("%w: base=%#x limit=%#x", ErrBadRegion, r.Base, r.Limit)
	}
	return nil
}

// Size returns limit - base.
func (r Region) Size() uintptr {
	if r.Limit <= r.Base {
		return 0
	}
	return uintptr(r.Limit - r.Base)
}

// Contains reports whether a lies in [Base, Limit).
func (r Region) Contains(a Addr) bool {
	return a >= r.Base && a < r.Limit
}

// Overlaps reports whether the two windows share at least one byte.
func (r Region) Overlaps(o Region) bool {
	return r.Base < o.Limit && o.Base < r.Limit
}

func (r Region) String() string {
	return fmt.Sprintf("[%#x, %#x)", uintptr(r.Base), uintptr(r.Limit))
}

// Layout is an allocation request: Size bytes aligned to Align.
type Layout struct {
	Size  uintptr
	Align uintptr
}

// NewLayout validates align and returns the layout.
func NewLayout(size, align uintptr) (Layout, error) {
	l := Layout{Size: size, Align: align}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// Validate checks that Align is a power of two.
func (l Layout) Validate() error {
	if !format.IsPowerOfTwo(l.Align) {
		return fmt.Errorf("%w: %d", ErrBadAlign, l.Align)
	}
	return nil
}

// LayoutOf returns the layout of a single T.
func LayoutOf[T any]() Layout {
	var zero T
	return Layout{Size: unsafe.Sizeof(zero), Align: unsafe.Alignof(zero)}
}

// ArrayLayout returns the layout of n contiguous T values. ok is false when
// the total size overflows.
func ArrayLayout[T any](n int) (Layout, bool) {
	l := LayoutOf[T]()
	if n < 0 {
		return Layout{}, false
	}
	if n != 0 && l.Size > ^uintptr(0)/uintptr(n) {
		return Layout{}, false
	}
	l.Size *= uintptr(n)
	return l, true
}
