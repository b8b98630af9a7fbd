package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/arenakit/arena"
	"github.com/joshuapare/arenakit/arena/dirty"
	"github.com/joshuapare/arenakit/heap"
	"github.com/joshuapare/arenakit/internal/logger"
)

var (
	allocBase  string
	allocSize  uint64
	allocAlign uint64
	allocCount int
	allocFlush string
)

func init() {
	rootCmd.AddCommand(newAllocCmd())
}

func newAllocCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alloc <file>",
		Short: "Allocate from an arena file",
		Long: `The alloc command attaches to an arena file, performs --count
allocations of --size bytes at --align, prints the returned addresses, and
syncs the header back to disk. The counter persists, so repeated runs keep
bumping from where the previous one stopped.

An allocation that does not fit fails without changing the counter.

Example:
  arenactl alloc heap.arena --size 12 --align 4
  arenactl alloc heap.arena --size 64 --align 16 --count 8 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlloc(cmd.Context(), args)
		},
	}
	cmd.Flags().StringVar(&allocBase, "base", defaultBase, "Address the window is linked at")
	cmd.Flags().Uint64Var(&allocSize, "size", 0, "Bytes per allocation")
	cmd.Flags().Uint64Var(&allocAlign, "align", 1, "Alignment, a power of two")
	cmd.Flags().IntVar(&allocCount, "count", 1, "Number of allocations")
	cmd.Flags().StringVar(&allocFlush, "flush", "auto", "Flush mode: auto, data, full")
	return cmd
}

type allocResult struct {
	Addresses []string `json:"addresses"`
	Allocated uint64   `json:"allocated"`
	Remaining uint64   `json:"remaining"`
	Error     string   `json:"error,omitempty"`
}

func runAlloc(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	path := args[0]

	if allocCount < 1 {
		return fmt.Errorf("invalid --count %d", allocCount)
	}
	mode, err := parseFlushMode(allocFlush)
	if err != nil {
		return err
	}
	l, err := arena.NewLayout(uintptr(allocSize), uintptr(allocAlign))
	if err != nil {
		return err
	}
	base, err := parseAddr("base", allocBase)
	if err != nil {
		return err
	}

	af, err := arena.OpenFile(path, arena.Addr(base))
	if err != nil {
		return fmt.Errorf("failed to open arena: %w", err)
	}
	defer af.Close()

	h, err := heap.New(af)
	if err != nil {
		return err
	}

	var res allocResult
	var allocErr error
	for i := range allocCount {
		p, err := h.TryAlloc(l)
		if err != nil {
			allocErr = fmt.Errorf("allocation %d of %d: %w", i+1, allocCount, err)
			break
		}
		logger.Debug("alloc", "addr", hex(p), "size", l.Size, "align", l.Align)
		res.Addresses = append(res.Addresses, hex(p))
	}

	if err := af.Sync(ctx, mode); err != nil {
		return fmt.Errorf("failed to sync arena: %w", err)
	}
	res.Allocated = uint64(af.Used())
	res.Remaining = uint64(af.Remaining())
	if allocErr != nil {
		res.Error = allocErr.Error()
	}

	if jsonOut {
		if err := printJSON(res); err != nil {
			return err
		}
		return allocErr
	}
	for _, a := range res.Addresses {
		printInfo("%s\n", a)
	}
	printVerbose("Allocated %s, %s remaining\n",
		formatBytes(res.Allocated), formatBytes(res.Remaining))
	if errors.Is(allocErr, arena.ErrExhausted) {
		printInfo("Arena exhausted after %d allocation(s)\n", len(res.Addresses))
	}
	return allocErr
}

func parseFlushMode(s string) (dirty.FlushMode, error) {
	switch s {
	case "auto":
		return dirty.FlushAuto, nil
	case "data":
		return dirty.FlushDataOnly, nil
	case "full":
		return dirty.FlushFull, nil
	}
	return dirty.FlushAuto, fmt.Errorf("invalid --flush %q (want auto, data or full)", s)
}
