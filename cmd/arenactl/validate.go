package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/arenakit/pkg/memmap"
)

var validatePrint bool

func init() {
	rootCmd.AddCommand(newValidateCmd())
}

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <memmap.yaml>",
		Short: "Check a memory map",
		Long: `The validate command loads a memory map and checks that every range is
well formed, that a header arena can hold its header and 32-bit counter, and
that the arena window is clear of every reserved range.

Example:
  arenactl validate board.yaml
  arenactl validate board.yaml --print`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args)
		},
	}
	cmd.Flags().BoolVar(&validatePrint, "print", false, "Print the normalized map")
	return cmd
}

func runValidate(args []string) error {
	path := args[0]
	printVerbose("Loading memory map: %s\n", path)

	m, err := memmap.Load(path)
	if err != nil {
		if jsonOut {
			_ = printJSON(map[string]any{"path": path, "valid": false, "error": err.Error()})
		}
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

	if jsonOut {
		return printJSON(map[string]any{
			"path":     path,
			"valid":    true,
			"board":    m.Board,
			"window":   r.String(),
			"header":   m.Arena.Header,
			"advance":  policy.String(),
			"reserved": len(m.Reserved),
		})
	}
	if validatePrint {
		return m.Encode(os.Stdout)
	}

	printInfo("✓ %s is valid\n", path)
	if m.Board != "" {
		printInfo("  Board:    %s\n", m.Board)
	}
	printInfo("  Arena:    %s (%s)\n", r, formatBytes(uint64(r.Size())))
	printInfo("  Header:   %t\n", m.Arena.Header)
	printInfo("  Advance:  %s\n", policy)
	for _, res := range m.Reserved {
		end, _ := res.End()
		printInfo("  Reserved: %-10s [%#010x, %#010x)\n", res.Name, uint64(res.Base), end)
	}
	return nil
}
