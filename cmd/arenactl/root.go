package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/arenakit/arena"
	"github.com/joshuapare/arenakit/internal/logger"
)

var (
	// Global flags
	verbose  bool
	quiet    bool
	jsonOut  bool
	noColor  bool
	logLevel string
	logJSON  bool
)

// Default window, matching the reference board.
const (
	defaultBase = "0x0100_0000"
	defaultSize = "0x0100_0000"
)

var rootCmd = &cobra.Command{
	Use:   "arenactl",
	Short: "Create, inspect and exercise persisted bump arenas",
	Long: `arenactl works with arena files: memory windows whose first 0x100 bytes
hold the allocated-size counter of a bump allocator. It can create them,
report how full they are, allocate from them, dump them compressed, and
replay the reference allocation demo.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().
		StringVar(&logLevel, "log-level", "", "Log to stderr at this level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Log as JSON lines")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setupLogging enables the logger when --log-level or --verbose is given.
func setupLogging() error {
	opts := logger.Options{
		Output:  os.Stderr,
		Level:   slog.LevelInfo,
		JSON:    logJSON,
		NoColor: noColor,
	}
	switch {
	case logLevel != "":
		if err := opts.Level.UnmarshalText([]byte(logLevel)); err != nil {
			return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
		}
		opts.Enabled = true
	case verbose && !quiet:
		opts.Level = slog.LevelDebug
		opts.Enabled = true
	}
	logger.Init(opts)
	return nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

var numbers = message.NewPrinter(language.English)

// formatBytes renders n with digit grouping, plus a binary-unit hint for
// larger values.
func formatBytes(n uint64) string {
	s := numbers.Sprintf("%d bytes", n)
	switch {
	case n >= 1<<20:
		s += numbers.Sprintf(" (%.1f MiB)", float64(n)/(1<<20))
	case n >= 1<<10:
		s += numbers.Sprintf(" (%.1f KiB)", float64(n)/(1<<10))
	}
	return s
}

// parseAddr parses an address or size flag. Any Go integer literal is
// accepted, so 0x0100_0000 and 16777216 mean the same thing.
func parseAddr(flag, s string) (uintptr, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid --%s %q: %w", flag, s, err)
	}
	if v > uint64(^uintptr(0)) {
		return 0, fmt.Errorf("invalid --%s %q: exceeds address space", flag, s)
	}
	return uintptr(v), nil
}

// parseRegion builds a window from --base and --size.
func parseRegion(base, size string) (arena.Region, error) {
	b, err := parseAddr("base", base)
	if err != nil {
		return arena.Region{}, err
	}
	n, err := parseAddr("size", size)
	if err != nil {
		return arena.Region{}, err
	}
	return arena.NewRegion(arena.Addr(b), n)
}

func hex(a arena.Addr) string {
	return fmt.Sprintf("0x%08X", uintptr(a))
}
