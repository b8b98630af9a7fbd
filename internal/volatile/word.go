// Package volatile provides non-cacheable access to words that live in
// memory shared with code outside the current call stack: a previous
// process incarnation, a debugger, or another execution context.
//
// Every access goes through sync/atomic, so the compiler can neither elide,
// merge, nor reorder it relative to other atomic accesses.
package volatile

import (
	"errors"
	"sync/atomic"
	"unsafe"
)

// ErrMisaligned indicates the backing bytes are not suitably aligned for a
// native 32-bit atomic access.
var ErrMisaligned = errors.New("volatile: word is not 4-byte aligned")

// ErrShort indicates fewer than four bytes were supplied.
var ErrShort = errors.New("volatile: need 4 bytes for a word")

// Word32 is a 32-bit word inside a byte slice.
type Word32 struct {
	p *uint32
}

// NewWord32 binds a Word32 to b[0:4]. The slice must stay reachable (or the
// mapping stay alive) for as long as the word is used.
func NewWord32(b []byte) (Word32, error) {
	if len(b) < 4 {
		return Word32{}, ErrShort
	}
	p := unsafe.Pointer(&b[0])
	if uintptr(p)%4 != 0 {
		return Word32{}, ErrMisaligned
	}
	return Word32{p: (*uint32)(p)}, nil
}

// Load reads the current value.
func (w Word32) Load() uint32 { return atomic.LoadUint32(w.p) }

// Store writes v.
func (w Word32) Store(v uint32) { atomic.StoreUint32(w.p, v) }

// CompareAndSwap writes next only if the word still holds prev.
func (w Word32) CompareAndSwap(prev, next uint32) bool {
	return atomic.CompareAndSwapUint32(w.p, prev, next)
}

// Valid reports whether the word is bound to memory.
func (w Word32) Valid() bool { return w.p != nil }
