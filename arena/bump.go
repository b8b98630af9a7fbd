package arena

import (
	"github.com/joshuapare/arenakit/internal/buf"
	"github.com/joshuapare/arenakit/internal/format"
)

// AdvancePolicy selects how far a successful Acquire moves the cursor.
type AdvancePolicy uint8

const (
	// AdvanceBySize moves the cursor past the returned range: padding plus
	// the requested size.
	AdvanceBySize AdvancePolicy = iota

	// AdvanceByAlign reproduces the legacy firmware arithmetic, which
	// checks and advances by the alignment instead of the size. It
	// under-reserves whenever size > align, so ranges can overlap. Kept for
	// comparison only.
	AdvanceByAlign
)

func (p AdvancePolicy) String() string {
	switch p {
	case AdvanceBySize:
		return "size"
	case AdvanceByAlign:
		return "align"
	default:
		return "unknown"
	}
}

// BumpOption configures a Bump allocator.
type BumpOption func(*Bump)

// WithAdvance sets the cursor advance policy.
func WithAdvance(p AdvancePolicy) BumpOption {
	return func(b *Bump) { b.advance = p }
}

// WithBacking attaches host memory covering the whole window, making the
// allocator usable as a Backend. len(mem) must equal the region size.
func WithBacking(mem []byte) BumpOption {
	return func(b *Bump) { b.mem = mem }
}

// Bump is the transient-cursor arena: the next free address lives in the
// allocator value and is lost with it.
//
//   - O(1) Acquire: one modulo, one compare, one store
//   - Release is a no-op; memory is never reclaimed
//   - not safe for concurrent use; wrap with Locked if needed
type Bump struct {
	region  Region
	head    Addr // next free address, only increases
	end     Addr // copy of region.Limit
	advance AdvancePolicy
	mem     []byte
	win     window
}

// NewBump binds a fresh cursor to r with head = r.Base.
func NewBump(r Region, opts ...BumpOption) (*Bump, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	b := &Bump{region: r, head: r.Base, end: r.Limit}
	for _, opt := range opts {
		opt(b)
	}
	if b.mem != nil {
		win, err := newWindow(r, b.mem)
		if err != nil {
			return nil, err
		}
		b.win = win
	}
	return b, nil
}

// Acquire returns head rounded up to l.Align and moves head past the range.
// On exhaustion head is left untouched.
func (b *Bump) Acquire(l Layout) (Addr, error) {
	if err := l.Validate(); err != nil {
		return 0, err
	}

	start, ok := buf.AddOverflowSafe(uintptr(b.head), format.Padding(uintptr(b.head), l.Align))
	if !ok {
		return 0, b.exhausted(l)
	}

	consumed := l.Size
	if b.advance == AdvanceByAlign {
		consumed = l.Align
	}
	next, ok := buf.Span(start, consumed, uintptr(b.end))
	if !ok {
		return 0, b.exhausted(l)
	}

	b.head = Addr(next)
	return Addr(start), nil
}

// Release does nothing: the arena never reclaims memory.
func (b *Bump) Release(Addr, Layout) {}

// Used returns head - base.
func (b *Bump) Used() uintptr { return uintptr(b.head - b.region.Base) }

// Remaining returns end - head.
func (b *Bump) Remaining() uintptr { return uintptr(b.end - b.head) }

// Capacity returns limit - base.
func (b *Bump) Capacity() uintptr { return b.region.Size() }

// Head returns the next free address.
func (b *Bump) Head() Addr { return b.head }

// Region returns the governed window.
func (b *Bump) Region() Region { return b.region }

// Policy returns the configured advance policy.
func (b *Bump) Policy() AdvancePolicy { return b.advance }

// Bytes returns the host memory behind [p, p+n). It requires WithBacking.
func (b *Bump) Bytes(p Addr, n uintptr) ([]byte, error) {
	return b.win.slice(p, n, b.region.Base)
}

func (b *Bump) exhausted(l Layout) error {
	return &ExhaustedError{Layout: l, Used: b.Used(), Capacity: b.Capacity()}
}

var (
	_ Allocator = (*Bump)(nil)
	_ Backend   = (*Bump)(nil)
)
