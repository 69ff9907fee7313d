package modecmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NickSmet/mcp-local-memory/cmd/localmem/engine"
	"github.com/NickSmet/mcp-local-memory/pkg/cliui"
	"github.com/NickSmet/mcp-local-memory/pkg/config"
	"github.com/NickSmet/mcp-local-memory/pkg/logger"
)

const modeStatusLongDesc string = `Show per-namespace vector coverage.

For each embedding mode, displays how many facts have vectors in its
namespace and how many would need backfill on switch.

Examples:
  localmem mode status`

const modeStatusShortDesc string = "Show per-namespace vector coverage"

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: modeStatusShortDesc,
		Long:  modeStatusLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runModeStatus(cmd.Context(), configDir)
		},
	}

	return cmd
}

func runModeStatus(ctx context.Context, configDir string) error {
	v, err := config.InitViper(configDir)
	if err != nil {
		return err
	}

	eng, err := engine.Build(v, configDir, logger.Nop())
	if err != nil {
		return err
	}
	defer eng.Close()

	active, previous, coverage, err := eng.Service.ModeStatus(ctx, eng.Context)
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s %s", cliui.KeyStyle.Render("Active:"), cliui.ValueStyle.Render(active))
	if previous != active {
		fmt.Printf("  %s", cliui.DimStyle.Render("(previously "+previous+")"))
	}
	fmt.Print("\n\n")

	for _, cov := range coverage {
		marker := cliui.DimStyle.Render("○")
		if cov.Active {
			marker = cliui.SuccessMark
		}

		line := fmt.Sprintf("%d vectors", cov.Vectors)
		if cov.Missing > 0 {
			line += cliui.DimStyle.Render(fmt.Sprintf("  (%d missing)", cov.Missing))
		}

		fmt.Printf("  %s %-14s %s\n", marker, cov.Mode, line)
	}

	fmt.Println()
	return nil
}
