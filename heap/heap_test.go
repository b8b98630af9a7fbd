package heap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/arenakit/arena"
)

const testBase arena.Addr = 0x0100_0000

func newTestBump(t testing.TB, size uintptr) *arena.Bump {
	t.Helper()
	r, err := arena.NewRegion(testBase, size)
	require.NoError(t, err)
	b, err := arena.NewBump(r, arena.WithBacking(make([]byte, size)))
	require.NoError(t, err)
	return b
}

func newTestHeap(t testing.TB, size uintptr, opts ...Option) *Heap {
	t.Helper()
	h, err := New(newTestBump(t, size), opts...)
	require.NoError(t, err)
	return h
}

// resetGlobal clears the installed heap for the duration of a test.
func resetGlobal(t testing.TB) {
	t.Helper()
	prev := global.Swap(nil)
	t.Cleanup(func() { global.Store(prev) })
}

func mustLayout(t testing.TB, size, align uintptr) arena.Layout {
	t.Helper()
	l, err := arena.NewLayout(size, align)
	require.NoError(t, err)
	return l
}

func TestNew_NilBackend(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrNilBackend)
}

func TestHeap_Alloc(t *testing.T) {
	h := newTestHeap(t, 64)

	p := h.Alloc(mustLayout(t, 12, 4))
	require.Equal(t, testBase, p)

	q := h.Alloc(mustLayout(t, 8, 8))
	require.Equal(t, testBase+16, q)
	require.Equal(t, uintptr(24), h.Backend().Used())
}

func TestHeap_Alloc_ExhaustedPanics(t *testing.T) {
	h := newTestHeap(t, 16)
	h.Alloc(mustLayout(t, 12, 4))

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		require.ErrorIs(t, err, arena.ErrExhausted)
	}()
	h.Alloc(mustLayout(t, 8, 4))
	t.Fatal("Alloc returned after exhaustion")
}

func TestHeap_Alloc_BadLayoutPanics(t *testing.T) {
	h := newTestHeap(t, 16)
	require.Panics(t, func() {
		h.Alloc(arena.Layout{Size: 4, Align: 3})
	})
}

func TestHeap_CustomOOMHandler(t *testing.T) {
	type halted struct{ l arena.Layout }
	h := newTestHeap(t, 8, WithOOMHandler(func(l arena.Layout, err error) {
		require.ErrorIs(t, err, arena.ErrExhausted)
		panic(halted{l})
	}))

	defer func() {
		r := recover()
		require.Equal(t, halted{arena.Layout{Size: 16, Align: 4}}, r)
	}()
	h.Alloc(mustLayout(t, 16, 4))
}

func TestHeap_OOMHandlerReturning(t *testing.T) {
	called := false
	h := newTestHeap(t, 8, WithOOMHandler(func(arena.Layout, error) { called = true }))

	require.Panics(t, func() { h.Alloc(mustLayout(t, 16, 4)) })
	require.True(t, called)
}

func TestHaltOnOOM_Parks(t *testing.T) {
	errParked := errors.New("parked")
	prev := park
	park = func() { panic(errParked) }
	t.Cleanup(func() { park = prev })

	h := newTestHeap(t, 8, WithOOMHandler(HaltOnOOM))
	require.PanicsWithError(t, errParked.Error(), func() {
		h.Alloc(mustLayout(t, 16, 4))
	})
	require.Equal(t, uintptr(0), h.Backend().Used())
}

func TestHeap_TryAlloc(t *testing.T) {
	h := newTestHeap(t, 16)

	p, err := h.TryAlloc(mustLayout(t, 12, 4))
	require.NoError(t, err)
	require.Equal(t, testBase, p)

	_, err = h.TryAlloc(mustLayout(t, 8, 4))
	require.ErrorIs(t, err, arena.ErrExhausted)
	var ex *arena.ExhaustedError
	require.ErrorAs(t, err, &ex)
	require.Equal(t, uintptr(12), ex.Used)

	// Failure leaves the cursor alone.
	p, err = h.TryAlloc(mustLayout(t, 4, 4))
	require.NoError(t, err)
	require.Equal(t, testBase+12, p)
}

func TestHeap_FreeDoesNotReclaim(t *testing.T) {
	h := newTestHeap(t, 64)
	l := mustLayout(t, 16, 8)

	p := h.Alloc(l)
	h.Free(p, l)
	q := h.Alloc(l)
	require.NotEqual(t, p, q)
	require.Equal(t, uintptr(32), h.Backend().Used())
}

func TestInstall_Once(t *testing.T) {
	resetGlobal(t)
	require.Nil(t, Default())

	h, err := Install(newTestBump(t, 64))
	require.NoError(t, err)
	require.Same(t, h, Default())

	_, err = Install(newTestBump(t, 64))
	require.ErrorIs(t, err, ErrAlreadyInstalled)
	require.Same(t, h, Default())
}

func TestInstall_NilBackend(t *testing.T) {
	resetGlobal(t)
	_, err := Install(nil)
	require.ErrorIs(t, err, ErrNilBackend)
	require.Nil(t, Default())
}

func TestPackageLevel_NotInstalled(t *testing.T) {
	resetGlobal(t)
	l := mustLayout(t, 4, 4)

	_, err := TryAlloc(l)
	require.ErrorIs(t, err, ErrNotInstalled)
	require.PanicsWithError(t, ErrNotInstalled.Error(), func() { Alloc(l) })
	require.NotPanics(t, func() { Free(testBase, l) })
}

func TestPackageLevel_Installed(t *testing.T) {
	resetGlobal(t)
	_, err := Install(newTestBump(t, 32))
	require.NoError(t, err)

	p := Alloc(mustLayout(t, 12, 4))
	require.Equal(t, testBase, p)
	Free(p, mustLayout(t, 12, 4))

	_, err = TryAlloc(mustLayout(t, 32, 4))
	require.ErrorIs(t, err, arena.ErrExhausted)
}
