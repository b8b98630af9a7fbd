package arena

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/joshuapare/arenakit/arena/dirty"
	"github.com/joshuapare/arenakit/internal/mmfile"
)

// File is a persisted-header arena backed by a memory-mapped file. The file
// holds the whole window, header included, so reopening it restores the
// cursor exactly where the previous process left it.
type File struct {
	path  string
	f     *os.File
	data  []byte
	unmap func() error
	hdr   *Header
	dt    *dirty.Tracker
}

// CreateFile creates (or truncates) path to the size of r, maps it and
// initializes the header.
func CreateFile(path string, r Region, opts ...HeaderOption) (*File, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if r.Size() > math.MaxInt {
		return nil, fmt.Errorf("%w: %d bytes cannot be mapped", ErrTooLarge, r.Size())
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(int64(r.Size())); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("arena: size file: %w", err)
	}
	return mapFile(path, f, r, true, opts)
}

// OpenFile maps an existing arena file whose window starts at base and
// attaches to its header without resetting the counter.
func OpenFile(path string, base Addr, opts ...HeaderOption) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if st.Size() == 0 {
		_ = f.Close()
		return nil, fmt.Errorf("arena: empty arena file: %s", path)
	}
	r, err := NewRegion(base, uintptr(st.Size()))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return mapFile(path, f, r, false, opts)
}

func mapFile(path string, f *os.File, r Region, initialize bool, opts []HeaderOption) (*File, error) {
	data, unmap, err := mmfile.MapRW(f, int(r.Size()))
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	af := &File{path: path, f: f, data: data, unmap: unmap}
	af.dt = dirty.NewTracker(fileMapping{af})
	opts = append(opts, WithObserver(af.dt.Add))

	if initialize {
		af.hdr, err = InitHeader(r, data, opts...)
	} else {
		af.hdr, err = NewHeader(r, data, opts...)
	}
	if err != nil {
		_ = unmap()
		_ = f.Close()
		return nil, err
	}
	return af, nil
}

// Acquire forwards to the header allocator.
func (f *File) Acquire(l Layout) (Addr, error) {
	if f.hdr == nil {
		return 0, ErrClosed
	}
	return f.hdr.Acquire(l)
}

// Release does nothing: the arena never reclaims memory.
func (f *File) Release(Addr, Layout) {}

// Used returns the persisted counter, or 0 once closed.
func (f *File) Used() uintptr {
	if f.hdr == nil {
		return 0
	}
	return f.hdr.Used()
}

// Remaining returns the bytes left, or 0 once closed.
func (f *File) Remaining() uintptr {
	if f.hdr == nil {
		return 0
	}
	return f.hdr.Remaining()
}

// Region returns the mapped window.
func (f *File) Region() Region {
	if f.hdr == nil {
		return Region{}
	}
	return f.hdr.Region()
}

// Header returns the underlying allocator, or nil once closed.
func (f *File) Header() *Header { return f.hdr }

// Path returns the file path.
func (f *File) Path() string { return f.path }

// Bytes returns the mapped memory behind [p, p+n) and marks it dirty, since
// the caller is expected to write to it.
func (f *File) Bytes(p Addr, n uintptr) ([]byte, error) {
	if f.hdr == nil {
		return nil, ErrClosed
	}
	b, err := f.hdr.Bytes(p, n)
	if err != nil {
		return nil, err
	}
	f.dt.Add(int(p-f.hdr.Region().Base), int(n))
	return b, nil
}

// Sync flushes dirty pages to the file.
func (f *File) Sync(ctx context.Context, mode dirty.FlushMode) error {
	if f.hdr == nil {
		return ErrClosed
	}
	return f.dt.Flush(ctx, mode)
}

// Close unmaps and closes the file. It is safe to call more than once.
func (f *File) Close() error {
	if f.f == nil {
		return nil
	}
	var errs []error
	if f.unmap != nil {
		errs = append(errs, f.unmap())
	}
	errs = append(errs, f.f.Close())
	f.f, f.data, f.unmap, f.hdr = nil, nil, nil, nil
	return errors.Join(errs...)
}

// fileMapping exposes the raw mapping to the dirty tracker.
type fileMapping struct{ f *File }

func (m fileMapping) Bytes() []byte { return m.f.data }

func (m fileMapping) FD() int {
	if m.f.f == nil {
		return -1
	}
	return int(m.f.f.Fd())
}

var _ Backend = (*File)(nil)
