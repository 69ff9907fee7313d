// Package modecmder provides the mode command for inspecting and switching
// the active embedding mode.
package modecmder

import (
	"github.com/spf13/cobra"
)

const modeLongDesc string = `Manage the active embedding mode.

Each mode stores vectors in its own namespace. Switching modes backfills
the target namespace for every fact that lacks a vector there, then makes
it the default for new writes. Vectors in other namespaces are kept, so
switching back is instant.

Use subcommands to inspect or switch:
  localmem mode status           Show per-namespace coverage
  localmem mode switch <mode>    Switch the active mode

Examples:
  localmem mode status
  localmem mode switch ollama-nomic`

const modeShortDesc string = "Manage the active embedding mode"

func NewModeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mode",
		Short: modeShortDesc,
		Long:  modeLongDesc,
	}

	cmd.AddCommand(newSwitchCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}
