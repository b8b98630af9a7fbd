package arena

import (
	"fmt"

	"github.com/joshuapare/arenakit/internal/buf"
	"github.com/joshuapare/arenakit/internal/format"
	"github.com/joshuapare/arenakit/internal/volatile"
)

// HeaderOption configures a Header allocator.
type HeaderOption func(*Header)

// WithSharedCursor makes Acquire publish the new counter with a
// compare-and-swap, retrying if another context moved it first. Without it
// the counter is read and written with separate volatile accesses, which is
// only correct with a single execution context.
func WithSharedCursor() HeaderOption {
	return func(h *Header) { h.shared = true }
}

// WithObserver registers a callback invoked after every counter store with
// the byte range of the window that changed. File uses it for dirty tracking.
func WithObserver(fn func(off, n int)) HeaderOption {
	return func(h *Header) { h.observe = fn }
}

// Header is the persisted-header arena. The cursor is the allocated_size
// counter stored in the first word of the window, so it survives
// re-creation of the allocator value and can be read by outside inspectors.
//
// Layout of the window:
//
//	base+0x000  allocated_size (u32, host order)
//	base+0x004  reserved, zero
//	base+0x100  user data
//
// Every counter access is volatile. Inspectors may read the counter but must
// never write it.
type Header struct {
	win      window
	word     volatile.Word32
	data     Addr    // base + HeaderSize
	capacity uintptr // limit - data
	shared   bool
	observe  func(off, n int)
}

// NewHeader attaches to a window whose header was initialized earlier,
// possibly by a previous incarnation of the process. The counter is left as
// found; the reserved area must be zero and the counter within capacity.
func NewHeader(r Region, mem []byte, opts ...HeaderOption) (*Header, error) {
	h, err := bindHeader(r, mem, opts)
	if err != nil {
		return nil, err
	}
	hdr, err := format.ParseHeader(mem)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHeaderCorrupt, err)
	}
	hdr.AllocatedSize = h.word.Load()
	if err := hdr.Validate(uint64(h.capacity)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHeaderCorrupt, err)
	}
	return h, nil
}

// InitHeader binds to the window and zeroes its header. Any range handed
// out from this window before is no longer protected from overlap.
func InitHeader(r Region, mem []byte, opts ...HeaderOption) (*Header, error) {
	h, err := bindHeader(r, mem, opts)
	if err != nil {
		return nil, err
	}
	h.Init()
	return h, nil
}

func bindHeader(r Region, mem []byte, opts []HeaderOption) (*Header, error) {
	win, err := newWindow(r, mem)
	if err != nil {
		return nil, err
	}
	if r.Size() < format.HeaderSize {
		return nil, fmt.Errorf("%w: %d < %d", ErrTooSmall, r.Size(), format.HeaderSize)
	}
	capacity := r.Size() - format.HeaderSize
	if uint64(capacity) > format.MaxCapacity {
		return nil, fmt.Errorf("%w: capacity %d", ErrTooLarge, capacity)
	}
	word, err := volatile.NewWord32(mem[format.AllocatedSizeOffset:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBacking, err)
	}
	h := &Header{
		win:      win,
		word:     word,
		data:     r.Base + format.HeaderSize,
		capacity: capacity,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Init zeroes the reserved area and the counter. Call it once per arena
// lifetime, before the first Acquire.
func (h *Header) Init() {
	clear(h.win.mem[format.ReservedOffset:format.HeaderSize])
	h.word.Store(0)
	h.notify(0, format.HeaderSize)
}

// Acquire reads allocated_size, pads the candidate address up to l.Align and
// stores allocated_size + padding + size. On exhaustion nothing is stored.
func (h *Header) Acquire(l Layout) (Addr, error) {
	if err := l.Validate(); err != nil {
		return 0, err
	}
	for {
		used := h.word.Load()
		p, next, err := h.place(used, l)
		if err != nil {
			return 0, err
		}
		if !h.shared {
			h.word.Store(next)
		} else if !h.word.CompareAndSwap(used, next) {
			continue
		}
		h.notify(format.AllocatedSizeOffset, format.AllocatedSizeWidth)
		return p, nil
	}
}

// place computes the candidate address and the counter value after it.
func (h *Header) place(used uint32, l Layout) (Addr, uint32, error) {
	cursor, ok := buf.AddOverflowSafe(uintptr(h.data), uintptr(used))
	if !ok {
		return 0, 0, h.exhausted(l, used)
	}
	start, ok := buf.AddOverflowSafe(cursor, format.Padding(cursor, l.Align))
	if !ok {
		return 0, 0, h.exhausted(l, used)
	}
	end, ok := buf.Span(start, l.Size, uintptr(h.win.region.Limit))
	if !ok {
		return 0, 0, h.exhausted(l, used)
	}
	// end <= limit and capacity fits in 32 bits, so the new counter does too.
	return Addr(start), uint32(end - uintptr(h.data)), nil
}

// Release does nothing: the arena never reclaims memory.
func (h *Header) Release(Addr, Layout) {}

// AllocatedSize returns the counter through a volatile load.
func (h *Header) AllocatedSize() uint32 { return h.word.Load() }

// Used returns the counter.
func (h *Header) Used() uintptr { return uintptr(h.word.Load()) }

// Remaining returns capacity - allocated_size, or 0 if the counter was
// pushed past the window by an outside writer.
func (h *Header) Remaining() uintptr {
	used := h.Used()
	if used > h.capacity {
		return 0
	}
	return h.capacity - used
}

// Capacity returns limit - base - HeaderSize.
func (h *Header) Capacity() uintptr { return h.capacity }

// DataStart returns the first address available to callers.
func (h *Header) DataStart() Addr { return h.data }

// Region returns the governed window, header included.
func (h *Header) Region() Region { return h.win.region }

// Bytes returns the host memory behind [p, p+n). The header itself is not
// reachable through Bytes.
func (h *Header) Bytes(p Addr, n uintptr) ([]byte, error) {
	return h.win.slice(p, n, h.data)
}

func (h *Header) notify(off, n int) {
	if h.observe != nil {
		h.observe(off, n)
	}
}

func (h *Header) exhausted(l Layout, used uint32) error {
	return &ExhaustedError{Layout: l, Used: uintptr(used), Capacity: h.capacity}
}

var (
	_ Allocator = (*Header)(nil)
	_ Backend   = (*Header)(nil)
)
