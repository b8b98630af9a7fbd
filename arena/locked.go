package arena

import "sync"

// Locked serializes every call into the wrapped allocator with a mutex. Use
// it when porting to an environment where more than one execution context
// can allocate; Bump and Header perform no synchronization of their own.
type Locked struct {
	mu sync.Mutex
	a  Allocator
}

// NewLocked wraps a.
func NewLocked(a Allocator) *Locked {
	return &Locked{a: a}
}

// Acquire runs the wrapped read-modify-write under the lock.
func (l *Locked) Acquire(layout Layout) (Addr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Acquire(layout)
}

// Release forwards to the wrapped allocator.
func (l *Locked) Release(p Addr, layout Layout) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.a.Release(p, layout)
}

// Used forwards under the lock.
func (l *Locked) Used() uintptr {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Used()
}

// Remaining forwards under the lock.
func (l *Locked) Remaining() uintptr {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Remaining()
}

// Region returns the wrapped window. Regions never change, so no lock.
func (l *Locked) Region() Region { return l.a.Region() }

// Bytes forwards to the wrapped allocator when it exposes memory.
func (l *Locked) Bytes(p Addr, n uintptr) ([]byte, error) {
	m, ok := l.a.(Memory)
	if !ok {
		return nil, ErrNoBacking
	}
	return m.Bytes(p, n)
}

var _ Backend = (*Locked)(nil)
