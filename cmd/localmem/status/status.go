// Package statuscmder provides the status command for displaying store
// counts and embedding-mode coverage.
package statuscmder

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/NickSmet/mcp-local-memory/cmd/localmem/engine"
	"github.com/NickSmet/mcp-local-memory/pkg/cliui"
	"github.com/NickSmet/mcp-local-memory/pkg/config"
	"github.com/NickSmet/mcp-local-memory/pkg/logger"
)

const statusLongDesc string = `Show localmem status.

Displays the active embedding mode and, per vector namespace, how many
facts are covered and how many still need backfill. A namespace with
missing facts can be filled with "localmem mode switch".

Examples:
  localmem status`

const statusShortDesc string = "Show store and mode coverage status"

func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runStatus(cmd.Context(), configDir)
		},
	}

	return cmd
}

func runStatus(ctx context.Context, configDir string) error {
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
		return fmt.Errorf("reading mode status: %w", err)
	}

	count, err := eng.Service.CountMemories(ctx, eng.Context)
	if err != nil {
		return fmt.Errorf("counting memories: %w", err)
	}

	fmt.Printf("\n  %s  %s\n", cliui.KeyStyle.Render("Context:    "), cliui.ValueStyle.Render(eng.Context))
	fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Active mode:"), cliui.ValueStyle.Render(active))
	if previous != active {
		fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Previous:   "), cliui.DimStyle.Render(previous))
	}
	fmt.Printf("  %s  %s\n\n", cliui.KeyStyle.Render("Memories:   "), cliui.ValueStyle.Render(strconv.Itoa(count)))

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
