package dirty

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memMapping struct {
	data []byte
}

func (m *memMapping) Bytes() []byte { return m.data }
func (m *memMapping) FD() int       { return -1 }

func newMemMapping(size int) *memMapping {
	return &memMapping{data: make([]byte, size)}
}

func Test_DirtyTracker_PageAlignment(t *testing.T) {
	tracker := NewTracker(newMemMapping(8192))

	tracker.Add(100, 200)

	coalesced := tracker.DebugCoalescedRanges()
	require.Len(t, coalesced, 1)
	assert.Equal(t, Range{Off: 0, Len: 4096}, coalesced[0])
}

func Test_DirtyTracker_MergesAdjacentAndOverlapping(t *testing.T) {
	tracker := NewTracker(newMemMapping(5 * 4096))

	tracker.Add(4096*3, 10)   // page 3
	tracker.Add(0, 4)         // page 0 (counter word)
	tracker.Add(4000, 200)    // pages 0-1
	tracker.Add(4096*1+8, 16) // page 1

	coalesced := tracker.DebugCoalescedRanges()
	require.Len(t, coalesced, 2)
	assert.Equal(t, Range{Off: 0, Len: 2 * 4096}, coalesced[0])
	assert.Equal(t, Range{Off: 3 * 4096, Len: 4096}, coalesced[1])
}

func Test_DirtyTracker_IgnoresEmptyRanges(t *testing.T) {
	tracker := NewTracker(newMemMapping(4096))
	tracker.Add(10, 0)
	tracker.Add(-1, 4)
	assert.False(t, tracker.Pending())
	assert.Empty(t, tracker.DebugRanges())
}

func Test_DirtyTracker_FlushClearsRanges(t *testing.T) {
	tracker := NewTracker(newMemMapping(4096))
	tracker.Add(0, 4)
	require.True(t, tracker.Pending())

	// A heap-backed mapping cannot be msynced on every platform, so only
	// check the bookkeeping through Reset here; file-backed flushing is
	// covered by the arena package.
	tracker.Reset()
	assert.False(t, tracker.Pending())
	require.NoError(t, tracker.Flush(context.Background(), FlushAuto))
}

func Test_DirtyTracker_FlushHonorsCancellation(t *testing.T) {
	tracker := NewTracker(newMemMapping(4096))
	tracker.Add(0, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tracker.Flush(ctx, FlushAuto)
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, tracker.Pending(), "ranges must survive a cancelled flush")
}

func TestFlushModeString(t *testing.T) {
	assert.Equal(t, "auto", FlushAuto.String())
	assert.Equal(t, "data-only", FlushDataOnly.String())
	assert.Equal(t, "full", FlushFull.String())
	assert.Equal(t, "unknown", FlushMode(42).String())
}
