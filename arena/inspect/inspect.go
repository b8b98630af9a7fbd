// Package inspect reads the header of a persisted arena without touching it.
// It is the outside observer the header layout exists for: a debugger, a
// post-mortem tool, or an operator checking how full a heap file is.
package inspect

import (
	"errors"
	"fmt"

	"github.com/joshuapare/arenakit/arena"
	"github.com/joshuapare/arenakit/internal/format"
	"github.com/joshuapare/arenakit/internal/mmfile"
	"github.com/joshuapare/arenakit/internal/volatile"
)

// ErrInconsistent is returned by Report.Err when the header fails validation.
var ErrInconsistent = errors.New("inspect: header inconsistent")

// Report summarizes one arena window.
type Report struct {
	Base        arena.Addr `json:"base"`
	Limit       arena.Addr `json:"limit"`
	DataStart   arena.Addr `json:"data_start"`
	Next        arena.Addr `json:"next"`
	Allocated   uint32     `json:"allocated"`
	Capacity    uint64     `json:"capacity"`
	Remaining   uint64     `json:"remaining"`
	HeaderClean bool       `json:"header_clean"`
	InRange     bool       `json:"in_range"`
	Utilization float64    `json:"utilization"`
}

// Err returns nil for a healthy header and a description of the first
// problem otherwise.
func (r Report) Err() error {
	switch {
	case !r.HeaderClean:
		return fmt.Errorf("%w: %w", ErrInconsistent, format.ErrReservedNonZero)
	case !r.InRange:
		return fmt.Errorf("%w: %w (allocated=%d, capacity=%d)",
			ErrInconsistent, format.ErrCounterRange, r.Allocated, r.Capacity)
	}
	return nil
}

// File maps the arena file at path read-only and reports on it. base is the
// address the window is linked at; it only affects the addresses in the
// report.
func File(path string, base arena.Addr) (Report, error) {
	data, unmap, err := mmfile.Map(path)
	if err != nil {
		return Report{}, fmt.Errorf("inspect: %w", err)
	}
	defer func() { _ = unmap() }()
	return Bytes(data, base)
}

// Bytes reports on an arena window held in mem, which starts at base.
func Bytes(mem []byte, base arena.Addr) (Report, error) {
	if len(mem) < format.HeaderSize {
		return Report{}, fmt.Errorf("inspect: %w", format.ErrTruncated)
	}
	r, err := arena.NewRegion(base, uintptr(len(mem)))
	if err != nil {
		return Report{}, fmt.Errorf("inspect: %w", err)
	}

	allocated := loadCounter(mem)
	capacity := uint64(len(mem) - format.HeaderSize)
	rep := Report{
		Base:        r.Base,
		Limit:       r.Limit,
		DataStart:   r.Base + format.DataOffset,
		Allocated:   allocated,
		Capacity:    capacity,
		HeaderClean: format.ReservedClean(mem),
		InRange:     uint64(allocated) <= capacity,
	}
	if rep.InRange {
		rep.Remaining = capacity - uint64(allocated)
		rep.Next = rep.DataStart + arena.Addr(allocated)
	}
	if capacity > 0 {
		rep.Utilization = float64(min(uint64(allocated), capacity)) / float64(capacity)
	}
	return rep, nil
}

// loadCounter reads the counter with a volatile access when the word is
// aligned, and with a plain decode otherwise (a copy taken by a tool).
func loadCounter(mem []byte) uint32 {
	if w, _ := volatile.NewWord32(mem[format.AllocatedSizeOffset:]); w.Valid() {
		return w.Load()
	}
	return format.ReadU32(mem, format.AllocatedSizeOffset)
}
