package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/arenakit/arena"
	"github.com/joshuapare/arenakit/pkg/memmap"
)

var (
	initBase   string
	initSize   string
	initMemmap string
)

func init() {
	rootCmd.AddCommand(newInitCmd())
}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <file>",
		Short: "Create an arena file with a fresh header",
		Long: `The init command creates (or truncates) an arena file sized to the
window and writes an empty header: allocated size 0, reserved area zero.

The window comes from --base/--size or from the arena section of a memory
map given with --memmap.

Example:
  arenactl init heap.arena
  arenactl init heap.arena --base 0x0100_0000 --size 0x10000
  arenactl init heap.arena --memmap board.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(args)
		},
	}
	cmd.Flags().StringVar(&initBase, "base", defaultBase, "Address the window is linked at")
	cmd.Flags().StringVar(&initSize, "size", defaultSize, "Window size in bytes, header included")
	cmd.Flags().StringVar(&initMemmap, "memmap", "", "Take the window from this memory map")
	return cmd
}

func runInit(args []string) error {
	path := args[0]

	r, err := initRegion()
	if err != nil {
		return err
	}
	printVerbose("Creating arena %s over %s\n", path, r)

	af, err := arena.CreateFile(path, r)
	if err != nil {
		return fmt.Errorf("failed to create arena: %w", err)
	}
	defer af.Close()

	if jsonOut {
		return printJSON(map[string]any{
			"path":     path,
			"base":     hex(r.Base),
			"limit":    hex(r.Limit),
			"capacity": af.Remaining(),
		})
	}
	printInfo("Created %s\n", path)
	printInfo("  Window:   %s\n", r)
	printInfo("  Capacity: %s\n", formatBytes(uint64(af.Remaining())))
	return nil
}

func initRegion() (arena.Region, error) {
	if initMemmap == "" {
		return parseRegion(initBase, initSize)
	}
	m, err := memmap.Load(initMemmap)
	if err != nil {
		return arena.Region{}, err
	}
	if !m.Arena.Header {
		return arena.Region{}, errors.New("memory map arena has no header; set header: true")
	}
	return m.Region()
}
