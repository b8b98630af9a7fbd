package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"

	"github.com/joshuapare/arenakit/arena"
	"github.com/joshuapare/arenakit/arena/inspect"
	"github.com/joshuapare/arenakit/internal/format"
	"github.com/joshuapare/arenakit/internal/mmfile"
)

var (
	dumpOutput string
	dumpAll    bool
	dumpLevel  int
)

func init() {
	rootCmd.AddCommand(newDumpCmd())
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Write a zstd-compressed copy of an arena",
		Long: `The dump command writes the header and the allocated part of an
arena file to a zstd stream. With --all the whole window is written,
unused tail included.

Example:
  arenactl dump heap.arena -o heap.zst
  arenactl dump heap.arena -o full.zst --all`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args)
		},
	}
	cmd.Flags().StringVarP(&dumpOutput, "output", "o", "", "Output file (required)")
	cmd.Flags().BoolVar(&dumpAll, "all", false, "Dump the whole window, not just the used part")
	cmd.Flags().IntVar(&dumpLevel, "level", 3, "Compression level, 1 (fastest) to 4 (best)")
	return cmd
}

func runDump(args []string) error {
	path := args[0]
	if dumpOutput == "" {
		return errors.New("--output is required")
	}

	data, unmap, err := mmfile.Map(path)
	if err != nil {
		return fmt.Errorf("failed to map arena: %w", err)
	}
	defer func() { _ = unmap() }()

	rep, err := inspect.Bytes(data, arena.Addr(0))
	if err != nil {
		return err
	}
	if err := rep.Err(); err != nil && !dumpAll {
		return fmt.Errorf("%w (use --all to dump anyway)", err)
	}

	n := len(data)
	if !dumpAll {
		n = format.HeaderSize + int(rep.Allocated)
	}

	out, err := os.Create(dumpOutput)
	if err != nil {
		return err
	}
	written, err := compress(out, data[:n])
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dumpOutput)
		return fmt.Errorf("failed to write dump: %w", err)
	}

	if jsonOut {
		return printJSON(map[string]any{
			"output":     dumpOutput,
			"raw":        n,
			"compressed": written,
		})
	}
	printInfo("Wrote %s\n", dumpOutput)
	printInfo("  Raw:        %s\n", formatBytes(uint64(n)))
	printInfo("  Compressed: %s\n", formatBytes(uint64(written)))
	return nil
}

type countingWriter struct {
	f *os.File
	n int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	n, err := w.f.Write(p)
	w.n += int64(n)
	return n, err
}

func compress(f *os.File, data []byte) (int64, error) {
	cw := &countingWriter{f: f}
	zw, err := zstd.NewWriter(cw, zstd.WithEncoderLevel(encoderLevel(dumpLevel)))
	if err != nil {
		return 0, err
	}
	if _, err := zw.Write(data); err != nil {
		_ = zw.Close()
		return 0, err
	}
	if err := zw.Close(); err != nil {
		return 0, err
	}
	return cw.n, nil
}

// encoderLevel clamps l to the encoder's speed scale.
func encoderLevel(l int) zstd.EncoderLevel {
	return zstd.EncoderLevel(min(max(l, int(zstd.SpeedFastest)), int(zstd.SpeedBestCompression)))
}
