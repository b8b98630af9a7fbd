//go:build linux || freebsd

package dirty

import (
	"context"

	"golang.org/x/sys/unix"
)

// flushRanges msyncs each coalesced range. On Linux and FreeBSD msync
// accepts page-aligned sub-slices of the mapping.
func (t *Tracker) flushRanges(ctx context.Context, data []byte) error {
	for _, r := range t.coalesce() {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := int(r.Off)
		end := min(int(r.Off+r.Len), len(data))
		if start >= end {
			continue
		}
		if err := unix.Msync(data[start:end], unix.MS_SYNC); err != nil {
			return err
		}
	}
	return nil
}

// fdatasync syncs file data. fullfsync is ignored on Linux/FreeBSD.
func fdatasync(fd int, _ bool) error {
	if fd < 0 {
		return nil
	}
	return unix.Fdatasync(fd)
}
