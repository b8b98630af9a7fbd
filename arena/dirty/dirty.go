// Package dirty tracks modified byte ranges of a memory-mapped arena file
// and flushes them to disk.
//
// The tracker keeps raw ranges, coalesces them into page-aligned ranges at
// flush time, and syncs them with msync (plus fdatasync/F_FULLFSYNC
// depending on the FlushMode).
package dirty

import (
	"context"
	"sort"

	"github.com/joshuapare/arenakit/internal/format"
)

// defaultRangeCapacity is the pre-allocated capacity for dirty ranges.
const defaultRangeCapacity = 64

// FlushMode controls durability guarantees for Flush.
type FlushMode int

const (
	// FlushAuto msyncs dirty pages and then fdatasyncs the descriptor.
	FlushAuto FlushMode = iota

	// FlushDataOnly only msyncs dirty pages. The caller is responsible for
	// syncing the descriptor later.
	FlushDataOnly

	// FlushFull msyncs dirty pages and forces them to stable storage; on
	// macOS this uses F_FULLFSYNC.
	FlushFull
)

func (m FlushMode) String() string {
	switch m {
	case FlushAuto:
		return "auto"
	case FlushDataOnly:
		return "data-only"
	case FlushFull:
		return "full"
	default:
		return "unknown"
	}
}

// Mapping is the memory-mapped file a tracker flushes.
type Mapping interface {
	// Bytes returns the current mapping.
	Bytes() []byte
	// FD returns the file descriptor, or -1 if there is none.
	FD() int
}

// Range represents a dirty byte range (offsets from the start of the file).
type Range struct {
	Off int64
	Len int64
}

// Tracker accumulates dirty ranges and flushes them efficiently.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type Tracker struct {
	m        Mapping
	ranges   []Range
	pageSize int64
}

// NewTracker creates a dirty tracker for m.
func NewTracker(m Mapping) *Tracker {
	return &Tracker{
		m:        m,
		ranges:   make([]Range, 0, defaultRangeCapacity),
		pageSize: format.PageSize,
	}
}

// Add records a dirty range. Zero or negative lengths are ignored.
func (t *Tracker) Add(off, length int) {
	if length <= 0 || off < 0 {
		return
	}
	t.ranges = append(t.ranges, Range{Off: int64(off), Len: int64(length)})
}

// Pending reports whether any range is waiting to be flushed.
func (t *Tracker) Pending() bool { return len(t.ranges) > 0 }

// Flush coalesces the recorded ranges, msyncs each one and then syncs the
// descriptor according to mode. The ranges are cleared on success.
//
// The context is checked between ranges. If it is cancelled part-way, some
// ranges may have been flushed while others have not; they stay recorded.
func (t *Tracker) Flush(ctx context.Context, mode FlushMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data := t.m.Bytes()
	if len(t.ranges) == 0 || len(data) == 0 {
		t.ranges = t.ranges[:0]
		return nil
	}

	if err := t.flushRanges(ctx, data); err != nil {
		return err
	}
	t.ranges = t.ranges[:0]

	if mode == FlushDataOnly {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fdatasync(t.m.FD(), mode == FlushFull)
}

// Reset clears all tracked ranges.
func (t *Tracker) Reset() {
	t.ranges = t.ranges[:0]
}

// DebugRanges returns a copy of the raw, uncoalesced ranges.
func (t *Tracker) DebugRanges() []Range {
	result := make([]Range, len(t.ranges))
	copy(result, t.ranges)
	return result
}

// DebugCoalescedRanges returns the page-aligned ranges Flush would sync.
func (t *Tracker) DebugCoalescedRanges() []Range {
	return t.coalesce()
}

// coalesce page-aligns all ranges, sorts them, and merges overlapping or
// adjacent ones.
func (t *Tracker) coalesce() []Range {
	if len(t.ranges) == 0 {
		return nil
	}

	aligned := make([]Range, len(t.ranges))
	for i, r := range t.ranges {
		start := (r.Off / t.pageSize) * t.pageSize
		end := r.Off + r.Len
		if end%t.pageSize != 0 {
			end = ((end / t.pageSize) + 1) * t.pageSize
		}
		aligned[i] = Range{Off: start, Len: end - start}
	}

	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].Off < aligned[j].Off
	})

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]
	for _, next := range aligned[1:] {
		if next.Off <= current.Off+current.Len {
			end := max(current.Off+current.Len, next.Off+next.Len)
			current.Len = end - current.Off
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}
