package heap

import (
	"fmt"
	"unsafe"

	"github.com/joshuapare/arenakit/arena"
)

// Scalar lists the element types a Vec may hold. None of them contain Go
// pointers, which the garbage collector could not see inside an arena.
type Scalar interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~int |
		~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint | ~uintptr |
		~float32 | ~float64
}

// Vec is a growable array whose storage lives in a heap's arena. When full,
// it acquires a region twice as large, copies the elements over and releases
// the old region.
type Vec[T Scalar] struct {
	h     *Heap
	addr  arena.Addr
	buf   []T // len(buf) is the capacity
	n     int
	grows int
}

// NewVec returns an empty vector. No memory is acquired until the first push.
func NewVec[T Scalar](h *Heap) *Vec[T] {
	return &Vec[T]{h: h}
}

// WithCapacity returns an empty vector with room for n elements.
func WithCapacity[T Scalar](h *Heap, n int) *Vec[T] {
	v := NewVec[T](h)
	v.Reserve(n)
	return v
}

// minCapacity mirrors the usual growth floor: tiny elements start at 8,
// everything else at 4.
func minCapacity[T Scalar]() int {
	var zero T
	if unsafe.Sizeof(zero) == 1 {
		return 8
	}
	return 4
}

// Push appends x, growing the storage if needed.
func (v *Vec[T]) Push(x T) {
	if v.n == len(v.buf) {
		v.grow(v.n + 1)
	}
	v.buf[v.n] = x
	v.n++
}

// Append pushes every element of xs.
func (v *Vec[T]) Append(xs ...T) {
	v.Reserve(len(xs))
	for _, x := range xs {
		v.Push(x)
	}
}

// Reserve makes room for at least extra more elements.
func (v *Vec[T]) Reserve(extra int) {
	if extra <= 0 {
		return
	}
	need := v.n + extra
	if need < v.n {
		panic(ErrCapacityOverflow)
	}
	if need > len(v.buf) {
		v.grow(need)
	}
}

func (v *Vec[T]) grow(need int) {
	newCap := max(2*len(v.buf), need, minCapacity[T]())
	l, ok := arena.ArrayLayout[T](newCap)
	if !ok {
		panic(ErrCapacityOverflow)
	}

	p := v.h.Alloc(l)
	raw, err := v.h.Bytes(p, l.Size)
	if err != nil {
		// The allocator accepted a range the window cannot hold, which the
		// align advance policy does near the limit.
		v.h.outOfMemory(l, fmt.Errorf("%w: vec storage at %#x: %w",
			arena.ErrExhausted, uintptr(p), err))
	}
	next := unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(raw))), newCap)
	copy(next, v.buf[:v.n])

	if len(v.buf) > 0 {
		old, _ := arena.ArrayLayout[T](len(v.buf))
		v.h.Free(v.addr, old)
	}
	v.addr, v.buf = p, next
	v.grows++
}

// Len returns the number of elements.
func (v *Vec[T]) Len() int { return v.n }

// Cap returns the number of elements the current storage can hold.
func (v *Vec[T]) Cap() int { return len(v.buf) }

// At returns element i. It panics if i is out of range.
func (v *Vec[T]) At(i int) T {
	if i < 0 || i >= v.n {
		panic(fmt.Sprintf("heap: index %d out of range [0:%d]", i, v.n))
	}
	return v.buf[i]
}

// Set overwrites element i. It panics if i is out of range.
func (v *Vec[T]) Set(i int, x T) {
	if i < 0 || i >= v.n {
		panic(fmt.Sprintf("heap: index %d out of range [0:%d]", i, v.n))
	}
	v.buf[i] = x
}

// Slice returns the elements. The slice aliases arena memory and is only
// valid until the next grow.
func (v *Vec[T]) Slice() []T { return v.buf[:v.n:v.n] }

// Addr returns the arena address of element 0, or 0 before the first grow.
func (v *Vec[T]) Addr() arena.Addr { return v.addr }

// Grows returns how many times the storage was (re)allocated.
func (v *Vec[T]) Grows() int { return v.grows }
