package arena

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/arenakit/arena/dirty"
	"github.com/joshuapare/arenakit/internal/format"
)

func TestFile_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heap.arena")
	r := newTestRegion(t, 64*1024)

	f, err := CreateFile(path, r)
	require.NoError(t, err)
	assert.Equal(t, path, f.Path())
	assert.Equal(t, r.Size()-format.HeaderSize, f.Remaining())

	p, err := f.Acquire(Layout{Size: 4, Align: 4})
	require.NoError(t, err)
	assert.Equal(t, r.Base+0x100, p)

	b, err := f.Bytes(p, 4)
	require.NoError(t, err)
	copy(b, []byte{1, 2, 3, 4})

	_, err = f.Acquire(Layout{Size: 8, Align: 8})
	require.NoError(t, err)
	require.NoError(t, f.Sync(context.Background(), dirty.FlushAuto))
	require.NoError(t, f.Close())
	require.NoError(t, f.Close(), "Close is idempotent")

	reopened, err := OpenFile(path, r.Base)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, uintptr(16), reopened.Used())
	got, err := reopened.Bytes(p, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, got)

	next, err := reopened.Acquire(Layout{Size: 8, Align: 8})
	require.NoError(t, err)
	assert.Equal(t, r.Base+0x100+16, next)
}

func TestFile_OnDiskHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heap.arena")
	r := newTestRegion(t, 4096)

	f, err := CreateFile(path, r)
	require.NoError(t, err)
	_, err = f.Acquire(Layout{Size: 24, Align: 8})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, raw, 4096)
	hdr, err := format.ParseHeader(raw)
	require.NoError(t, err)
	assert.Equal(t, uint32(24), hdr.AllocatedSize)
	assert.True(t, hdr.ReservedClean)
}

func TestFile_ExhaustionPersistsNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.arena")
	r := newTestRegion(t, format.HeaderSize+16)

	f, err := CreateFile(path, r)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Acquire(Layout{Size: 12, Align: 1})
	require.NoError(t, err)
	_, err = f.Acquire(Layout{Size: 8, Align: 1})
	require.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, uintptr(12), f.Used())
}

func TestFile_ClosedOperations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "closed.arena")
	f, err := CreateFile(path, newTestRegion(t, 4096))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = f.Acquire(Layout{Size: 1, Align: 1})
	require.ErrorIs(t, err, ErrClosed)
	_, err = f.Bytes(testBase+0x100, 1)
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, f.Sync(context.Background(), dirty.FlushAuto), ErrClosed)
	assert.Zero(t, f.Used())
	assert.Zero(t, f.Remaining())
	assert.Nil(t, f.Header())
}

func TestOpenFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := OpenFile(filepath.Join(dir, "missing.arena"), testBase)
	require.Error(t, err)

	empty := filepath.Join(dir, "empty.arena")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = OpenFile(empty, testBase)
	require.Error(t, err)

	dirtyHdr := filepath.Join(dir, "dirty.arena")
	raw := make([]byte, 4096)
	raw[format.ReservedOffset] = 0xFF
	require.NoError(t, os.WriteFile(dirtyHdr, raw, 0o644))
	_, err = OpenFile(dirtyHdr, testBase)
	require.ErrorIs(t, err, ErrHeaderCorrupt)
}
