package heap

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/joshuapare/arenakit/arena"
	"github.com/joshuapare/arenakit/internal/logger"
)

// Heap couples an arena backend with the out-of-memory policy.
type Heap struct {
	backend arena.Backend
	oom     OOMHandler
}

// Option configures a Heap.
type Option func(*Heap)

// WithOOMHandler replaces the default PanicOnOOM policy.
func WithOOMHandler(fn OOMHandler) Option {
	return func(h *Heap) {
		if fn != nil {
			h.oom = fn
		}
	}
}

// New builds a heap over b without installing it process-wide.
func New(b arena.Backend, opts ...Option) (*Heap, error) {
	if b == nil {
		return nil, ErrNilBackend
	}
	h := &Heap{backend: b, oom: PanicOnOOM}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Alloc acquires l from the backend. Exhaustion is fatal: the OOM handler is
// invoked and Alloc never returns to the caller. A malformed layout is a
// programming error and panics.
func (h *Heap) Alloc(l arena.Layout) arena.Addr {
	p, err := h.backend.Acquire(l)
	if err == nil {
		return p
	}
	if !errors.Is(err, arena.ErrExhausted) {
		panic(err)
	}
	h.outOfMemory(l, err)
	return 0
}

// outOfMemory hands err to the OOM handler and panics if the handler
// returns.
func (h *Heap) outOfMemory(l arena.Layout, err error) {
	h.oom(l, err)
	panic(fmt.Sprintf("heap: OOM handler returned after %v", err))
}

// TryAlloc acquires l and returns exhaustion as an error instead of invoking
// the OOM handler.
func (h *Heap) TryAlloc(l arena.Layout) (arena.Addr, error) {
	return h.backend.Acquire(l)
}

// Free hands the range back. The arena never reclaims it.
func (h *Heap) Free(p arena.Addr, l arena.Layout) {
	h.backend.Release(p, l)
}

// Bytes returns the host memory behind an allocated range.
func (h *Heap) Bytes(p arena.Addr, n uintptr) ([]byte, error) {
	return h.backend.Bytes(p, n)
}

// Backend returns the underlying arena.
func (h *Heap) Backend() arena.Backend { return h.backend }

var global atomic.Pointer[Heap]

// Install binds the process-wide heap. It succeeds once per process.
func Install(b arena.Backend, opts ...Option) (*Heap, error) {
	h, err := New(b, opts...)
	if err != nil {
		return nil, err
	}
	if !global.CompareAndSwap(nil, h) {
		return nil, ErrAlreadyInstalled
	}
	logger.Info("heap: installed",
		"region", b.Region().String(),
		"remaining", b.Remaining())
	return h, nil
}

// Default returns the installed heap, or nil before Install.
func Default() *Heap { return global.Load() }

// Alloc allocates from the installed heap. It panics with ErrNotInstalled
// before Install.
func Alloc(l arena.Layout) arena.Addr {
	h := global.Load()
	if h == nil {
		panic(ErrNotInstalled)
	}
	return h.Alloc(l)
}

// TryAlloc allocates from the installed heap without the fatal policy.
func TryAlloc(l arena.Layout) (arena.Addr, error) {
	h := global.Load()
	if h == nil {
		return 0, ErrNotInstalled
	}
	return h.TryAlloc(l)
}

// Free releases through the installed heap.
func Free(p arena.Addr, l arena.Layout) {
	if h := global.Load(); h != nil {
		h.Free(p, l)
	}
}
