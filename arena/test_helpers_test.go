package arena

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/arenakit/internal/format"
)

const (
	testBase  Addr = 0x0100_0000
	testLimit Addr = 0x0200_0000
)

// newTestRegion returns a window at testBase spanning size bytes.
func newTestRegion(t testing.TB, size uintptr) Region {
	t.Helper()
	r, err := NewRegion(testBase, size)
	require.NoError(t, err)
	return r
}

// newTestHeader initializes a header arena with the given usable capacity.
func newTestHeader(t testing.TB, capacity uintptr, opts ...HeaderOption) (*Header, []byte) {
	t.Helper()
	r := newTestRegion(t, format.HeaderSize+capacity)
	mem := make([]byte, r.Size())
	h, err := InitHeader(r, mem, opts...)
	require.NoError(t, err)
	return h, mem
}

type span struct {
	start, end uintptr
}

// requireDisjoint fails if any two spans overlap.
func requireDisjoint(t testing.TB, spans []span) {
	t.Helper()
	for i := range spans {
		for j := i + 1; j < len(spans); j++ {
			a, b := spans[i], spans[j]
			if a.start == a.end || b.start == b.end {
				continue
			}
			overlap := a.start < b.end && b.start < a.end
			require.False(t, overlap, "ranges %d [%#x,%#x) and %d [%#x,%#x) overlap",
				i, a.start, a.end, j, b.start, b.end)
		}
	}
}
