package heap

import (
	"io"

	"github.com/joshuapare/arenakit/arena"
)

// Buffer is a byte buffer backed by arena memory. It implements io.Writer.
type Buffer struct {
	v *Vec[byte]
}

// NewBuffer returns an empty buffer on h.
func NewBuffer(h *Heap) *Buffer {
	return &Buffer{v: NewVec[byte](h)}
}

// Write appends p. It never fails short of the heap's OOM policy.
func (b *Buffer) Write(p []byte) (int, error) {
	b.v.Append(p...)
	return len(p), nil
}

// WriteString appends s.
func (b *Buffer) WriteString(s string) (int, error) {
	b.v.Reserve(len(s))
	for i := 0; i < len(s); i++ {
		b.v.Push(s[i])
	}
	return len(s), nil
}

// WriteTo writes the contents to w.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.v.Slice())
	return int64(n), err
}

// Bytes returns the contents. The slice aliases arena memory.
func (b *Buffer) Bytes() []byte { return b.v.Slice() }

// String returns a copy of the contents.
func (b *Buffer) String() string { return string(b.v.Slice()) }

// Len returns the number of buffered bytes.
func (b *Buffer) Len() int { return b.v.Len() }

// Addr returns the arena address of the storage.
func (b *Buffer) Addr() arena.Addr { return b.v.Addr() }
