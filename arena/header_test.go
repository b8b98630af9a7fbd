package arena

import (
	"encoding/binary"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/arenakit/internal/format"
)

// TestHeader_Scenario16MiB is the board layout: 16 MiB at 0x0100_0000 with a
// 0x100-byte header.
func TestHeader_Scenario16MiB(t *testing.T) {
	r := Region{Base: testBase, Limit: testLimit}
	mem := make([]byte, r.Size())
	h, err := InitHeader(r, mem)
	require.NoError(t, err)

	assert.Equal(t, uintptr(testLimit-testBase-format.HeaderSize), h.Remaining())
	assert.Equal(t, testBase+0x100, h.DataStart())

	p, err := h.Acquire(Layout{Size: 4, Align: 4})
	require.NoError(t, err)
	assert.Equal(t, Addr(0x0100_0100), p)
	assert.Equal(t, uint32(4), h.AllocatedSize())

	p, err = h.Acquire(Layout{Size: 8, Align: 8})
	require.NoError(t, err)
	assert.Equal(t, Addr(0x0100_010C), p)
	assert.Equal(t, uint32(16), h.AllocatedSize())

	// The counter is visible to a plain reader of the window.
	assert.Equal(t, uint32(16), binary.NativeEndian.Uint32(mem[0:4]))
}

// TestHeader_ExhaustionScenario: 16 usable bytes, 12 consumed, (8, 1) fails.
func TestHeader_ExhaustionScenario(t *testing.T) {
	h, _ := newTestHeader(t, 16)

	_, err := h.Acquire(Layout{Size: 12, Align: 1})
	require.NoError(t, err)

	_, err = h.Acquire(Layout{Size: 8, Align: 1})
	require.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, uint32(12), h.AllocatedSize())
	assert.Equal(t, uintptr(4), h.Remaining())

	p, err := h.Acquire(Layout{Size: 4, Align: 4})
	require.NoError(t, err)
	assert.Equal(t, h.DataStart()+12, p)
	assert.Zero(t, h.Remaining())
}

func TestHeader_PaddingIsCounted(t *testing.T) {
	h, _ := newTestHeader(t, 64)

	_, err := h.Acquire(Layout{Size: 1, Align: 1})
	require.NoError(t, err)
	p, err := h.Acquire(Layout{Size: 16, Align: 16})
	require.NoError(t, err)

	assert.Equal(t, h.DataStart()+16, p)
	assert.Equal(t, uint32(32), h.AllocatedSize(), "1 byte + 15 padding + 16 bytes")
}

func TestHeader_UnalignedDataStart(t *testing.T) {
	// base+0x100 = 0x1108 is 8- but not 16-aligned, so padding follows the
	// address and not the counter.
	const base Addr = 0x1008
	r, err := NewRegion(base, format.HeaderSize+64)
	require.NoError(t, err)
	backing := make([]byte, r.Size()+16)
	mem := backing[8 : 8+r.Size()]
	h, err := InitHeader(r, mem)
	require.NoError(t, err)
	require.Equal(t, Addr(0x1108), h.DataStart())

	p, err := h.Acquire(Layout{Size: 12, Align: 16})
	require.NoError(t, err)
	assert.Equal(t, Addr(0x1110), p)
	assert.Zero(t, uintptr(p)%16)
	assert.Equal(t, uint32(0x08+12), h.AllocatedSize(), "8 padding + 12 bytes")

	q, err := h.Acquire(Layout{Size: 4, Align: 16})
	require.NoError(t, err)
	assert.Equal(t, Addr(0x1120), q)
	assert.Equal(t, uint32(0x18+4), h.AllocatedSize())
}

func TestHeader_AlignOneNeverPads(t *testing.T) {
	h, _ := newTestHeader(t, 64)
	for i, size := range []uintptr{3, 5, 1, 7} {
		before := h.AllocatedSize()
		p, err := h.Acquire(Layout{Size: size, Align: 1})
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, h.DataStart()+Addr(before), p)
		assert.Equal(t, before+uint32(size), h.AllocatedSize())
	}
}

func TestHeader_AttachKeepsCounter(t *testing.T) {
	h, mem := newTestHeader(t, 256)
	_, err := h.Acquire(Layout{Size: 40, Align: 8})
	require.NoError(t, err)

	// A new allocator value over the same memory resumes where the old one
	// stopped.
	again, err := NewHeader(h.Region(), mem)
	require.NoError(t, err)
	assert.Equal(t, uint32(40), again.AllocatedSize())

	p, err := again.Acquire(Layout{Size: 8, Align: 8})
	require.NoError(t, err)
	assert.Equal(t, again.DataStart()+40, p)
}

func TestHeader_InitResets(t *testing.T) {
	h, mem := newTestHeader(t, 64)
	_, err := h.Acquire(Layout{Size: 32, Align: 1})
	require.NoError(t, err)
	mem[format.ReservedOffset] = 0x55

	h.Init()
	assert.Zero(t, h.AllocatedSize())
	assert.Equal(t, uintptr(64), h.Remaining())
	assert.True(t, format.ReservedClean(mem))
}

func TestHeader_AttachRejectsCorruptHeader(t *testing.T) {
	_, mem := newTestHeader(t, 64)
	r := newTestRegion(t, uintptr(len(mem)))

	mem[format.ReservedOffset+1] = 1
	_, err := NewHeader(r, mem)
	require.ErrorIs(t, err, ErrHeaderCorrupt)
	require.ErrorIs(t, err, format.ErrReservedNonZero)

	mem[format.ReservedOffset+1] = 0
	format.PutU32(mem, format.AllocatedSizeOffset, 65)
	_, err = NewHeader(r, mem)
	require.ErrorIs(t, err, ErrHeaderCorrupt)
	require.ErrorIs(t, err, format.ErrCounterRange)
}

func TestHeader_BindErrors(t *testing.T) {
	r := newTestRegion(t, format.HeaderSize-8)
	_, err := InitHeader(r, make([]byte, r.Size()))
	require.ErrorIs(t, err, ErrTooSmall)

	r = newTestRegion(t, 0x200)
	_, err = InitHeader(r, make([]byte, 0x100))
	require.ErrorIs(t, err, ErrBacking)

	_, err = InitHeader(Region{Base: 2, Limit: 1}, nil)
	require.ErrorIs(t, err, ErrBadRegion)
}

func TestHeader_OutsideWriterPastCapacity(t *testing.T) {
	h, mem := newTestHeader(t, 32)

	// An inspector must never write the counter; if one does, the arena
	// reports nothing left rather than wrapping.
	format.PutU32(mem, format.AllocatedSizeOffset, 100)
	assert.Zero(t, h.Remaining())
	_, err := h.Acquire(Layout{Size: 1, Align: 1})
	require.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, uint32(100), h.AllocatedSize())
}

func TestHeader_Bytes(t *testing.T) {
	h, mem := newTestHeader(t, 64)
	p, err := h.Acquire(Layout{Size: 8, Align: 8})
	require.NoError(t, err)

	b, err := h.Bytes(p, 8)
	require.NoError(t, err)
	b[7] = 0x99
	assert.Equal(t, byte(0x99), mem[format.HeaderSize+7])

	_, err = h.Bytes(h.Region().Base, 4)
	require.ErrorIs(t, err, ErrOutOfRange, "header is not reachable through Bytes")
}

func TestHeader_ObserverSeesCounterStores(t *testing.T) {
	var calls [][2]int
	h, _ := newTestHeader(t, 64, WithObserver(func(off, n int) {
		calls = append(calls, [2]int{off, n})
	}))
	require.Equal(t, [][2]int{{0, format.HeaderSize}}, calls, "Init dirties the header")

	_, err := h.Acquire(Layout{Size: 8, Align: 8})
	require.NoError(t, err)
	_, err = h.Acquire(Layout{Size: 128, Align: 8})
	require.ErrorIs(t, err, ErrExhausted)

	assert.Equal(t, [][2]int{{0, format.HeaderSize}, {0, 4}}, calls, "failed Acquire stores nothing")
}

func TestHeader_SharedCursorConcurrent(t *testing.T) {
	const workers, perWorker = 8, 64
	h, _ := newTestHeader(t, workers*perWorker*16, WithSharedCursor())

	results := make([][]Addr, workers)
	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				p, err := h.Acquire(Layout{Size: 16, Align: 16})
				if err != nil {
					t.Errorf("worker %d: %v", w, err)
					return
				}
				results[w] = append(results[w], p)
			}
		}()
	}
	wg.Wait()

	seen := make(map[Addr]bool)
	for _, ps := range results {
		for _, p := range ps {
			require.False(t, seen[p], "address %#x handed out twice", p)
			seen[p] = true
		}
	}
	assert.Len(t, seen, workers*perWorker)
	assert.Zero(t, h.Remaining())
}
