//go:build darwin

package dirty

import (
	"context"

	"golang.org/x/sys/unix"
)

// flushRanges syncs the whole mapping. msync on macOS wants the original
// mmap address, and the kernel only writes pages that are actually dirty.
func (t *Tracker) flushRanges(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return unix.Msync(data, unix.MS_SYNC)
}

// fdatasync uses F_FULLFSYNC when fullfsync is set, fsync otherwise.
func fdatasync(fd int, fullfsync bool) error {
	if fd < 0 {
		return nil
	}
	if fullfsync {
		_, err := unix.FcntlInt(uintptr(fd), unix.F_FULLFSYNC, 0)
		return err
	}
	return unix.Fsync(fd)
}
