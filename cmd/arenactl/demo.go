package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/arenakit/arena"
	"github.com/joshuapare/arenakit/heap"
	"github.com/joshuapare/arenakit/internal/console"
	"github.com/joshuapare/arenakit/internal/format"
	"github.com/joshuapare/arenakit/pkg/memmap"
)

var (
	demoCount     int
	demoBase      string
	demoSize      string
	demoMemmap    string
	demoTransient bool
	demoAdvance   string
)

func init() {
	rootCmd.AddCommand(newDemoCmd())
}

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Replay the vector push demo on an in-memory arena",
		Long: `The demo command builds an arena in memory, installs it behind a heap,
and pushes --count values into a vector of u32 and then a vector of f64.
Every time a vector's storage moves, the new start address, length and
capacity are printed in the serial console format. Afterwards every element
is printed as index: value.

By default the window is the reference board heap with a persisted header.
--transient switches to the header-less allocator, where --advance picks how
far the cursor moves (size, or the legacy align arithmetic).

Example:
  arenactl demo
  arenactl demo --count 8 --transient --advance align`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo()
		},
	}
	cmd.Flags().IntVar(&demoCount, "count", 32, "Values pushed into each vector")
	cmd.Flags().StringVar(&demoBase, "base", "", "Window base (default from the board map)")
	cmd.Flags().StringVar(&demoSize, "size", "", "Window size (default from the board map)")
	cmd.Flags().StringVar(&demoMemmap, "memmap", "", "Take the window from this memory map")
	cmd.Flags().BoolVar(&demoTransient, "transient", false, "Use the header-less allocator")
	cmd.Flags().StringVar(&demoAdvance, "advance", "", "Cursor advance for --transient: size or align")
	return cmd
}

// reallocEvent is one storage move of a demo vector.
type reallocEvent struct {
	Vector string `json:"vector"`
	Start  string `json:"start"`
	Len    int    `json:"len"`
	Cap    int    `json:"cap"`
}

type demoResult struct {
	Window   string         `json:"window"`
	Header   bool           `json:"header"`
	Advance  string         `json:"advance"`
	Reallocs []reallocEvent `json:"reallocs"`
	Used     uint64         `json:"used"`
}

func runDemo() (err error) {
	if demoCount < 0 {
		return fmt.Errorf("invalid --count %d", demoCount)
	}
	m, err := demoMap()
	if err != nil {
		return err
	}
	r, err := m.Region()
	if err != nil {
		return err
	}
	policy, err := m.Policy()
	if err != nil {
		return err
	}
	if demoAdvance != "" {
		m.Arena.Advance = demoAdvance
		if policy, err = m.Policy(); err != nil {
			return err
		}
	}

	backend, err := demoBackend(r, m.Arena.Header, policy)
	if err != nil {
		return err
	}
	h, err := heap.New(backend)
	if err != nil {
		return err
	}

	// The heap's OOM policy panics; surface it as an error instead of a
	// crash.
	defer func() {
		if rec := recover(); rec != nil {
			e, ok := rec.(error)
			if !ok {
				panic(rec)
			}
			if errors.Is(e, arena.ErrExhausted) {
				err = fmt.Errorf("demo ran out of arena memory: %w", e)
				return
			}
			err = fmt.Errorf("demo failed: %w", e)
		}
	}()

	var out io.Writer = os.Stdout
	if quiet || jsonOut {
		out = io.Discard
	}
	c := console.New(out)

	res := demoResult{
		Window:  r.String(),
		Header:  m.Arena.Header,
		Advance: policy.String(),
	}
	res.Reallocs = append(res.Reallocs,
		replay(c, h, "u32", demoCount, func(i uint32) uint32 { return i }, func(v uint32) uint32 { return v })...)
	res.Reallocs = append(res.Reallocs,
		replay(c, h, "f64", demoCount, func(i uint32) float64 { return float64(i) }, func(v float64) uint32 { return uint32(v) })...)
	res.Used = uint64(backend.Used())

	if err := c.Err(); err != nil {
		return err
	}
	if jsonOut {
		return printJSON(res)
	}
	printVerbose("Arena used: %s\n", formatBytes(res.Used))
	return nil
}

// replay pushes n values into a fresh vector, reporting every storage move,
// then prints the contents.
func replay[T heap.Scalar](c *console.Console, h *heap.Heap, name string, n int,
	from func(uint32) T, to func(T) uint32,
) []reallocEvent {
	v := heap.NewVec[T](h)
	var events []reallocEvent
	var last arena.Addr

	for i := range n {
		v.Push(from(uint32(i)))
		if v.Addr() == last {
			continue
		}
		last = v.Addr()
		events = append(events, reallocEvent{Vector: name, Start: hex(last), Len: v.Len(), Cap: v.Cap()})

		c.Puts("(Re)alloc detected!\nstart addr: ")
		c.Hex(uint32(last))
		c.Puts("\nlen     : 0x")
		c.Hex(uint32(v.Len()))
		c.Puts("\ncapacity: 0x")
		c.Hex(uint32(v.Cap()))
		c.Puts("\n")
	}

	for i := range n {
		c.Hex(uint32(i))
		c.Puts(": ")
		c.Hex(to(v.At(i)))
		c.Puts("\n")
	}
	return events
}

func demoMap() (*memmap.Map, error) {
	if demoMemmap != "" {
		return memmap.Load(demoMemmap)
	}
	m := memmap.RaspberryPi3()
	if demoBase != "" || demoSize != "" {
		base, size := demoBase, demoSize
		if base == "" {
			base = fmt.Sprintf("%#x", uint64(m.Arena.Base))
		}
		if size == "" {
			size = defaultSize
		}
		r, err := parseRegion(base, size)
		if err != nil {
			return nil, err
		}
		m.Arena.Range = memmap.Range{Name: "heap", Base: memmap.Addr(r.Base), Limit: memmap.Addr(r.Limit)}
		m.Reserved = nil
	}
	if demoTransient {
		m.Arena.Header = false
	}
	return m, m.Validate()
}

// demoBackend builds the allocator over host memory standing in for the
// board's RAM, behind a lock as a global heap would be.
func demoBackend(r arena.Region, header bool, policy arena.AdvancePolicy) (arena.Backend, error) {
	mem := make([]byte, r.Size())
	if header {
		if policy != arena.AdvanceBySize {
			return nil, errors.New("--advance applies only to --transient arenas")
		}
		if r.Size() < format.HeaderSize {
			return nil, arena.ErrTooSmall
		}
		h, err := arena.InitHeader(r, mem)
		if err != nil {
			return nil, err
		}
		return arena.NewLocked(h), nil
	}
	b, err := arena.NewBump(r, arena.WithAdvance(policy), arena.WithBacking(mem))
	if err != nil {
		return nil, err
	}
	return arena.NewLocked(b), nil
}
