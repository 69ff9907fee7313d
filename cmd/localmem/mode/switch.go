package modecmder

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/NickSmet/mcp-local-memory/cmd/localmem/engine"
	"github.com/NickSmet/mcp-local-memory/pkg/cliui"
	"github.com/NickSmet/mcp-local-memory/pkg/config"
	"github.com/NickSmet/mcp-local-memory/pkg/logger"
	"github.com/NickSmet/mcp-local-memory/pkg/modes"
	"github.com/NickSmet/mcp-local-memory/pkg/vector"
)

const switchLongDesc string = `Switch the active embedding mode.

Backfills the target namespace first: every fact without a vector in that
namespace is embedded in batches. The switch completes only once coverage
is full; on failure, finished batches are kept so a retry resumes where it
left off, and the active mode stays unchanged.

Examples:
  localmem mode switch ollama-nomic
  localmem mode switch openai-small`

const switchShortDesc string = "Switch the active embedding mode"

func newSwitchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "switch <mode>",
		Short: switchShortDesc,
		Long:  switchLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runSwitch(cmd.Context(), configDir, args[0])
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				names := make([]string, len(vector.Modes))
				for i, m := range vector.Modes {
					names[i] = m.String()
				}
				return names, cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	return cmd
}

func runSwitch(ctx context.Context, configDir, modeName string) error {
	v, err := config.InitViper(configDir)
	if err != nil {
		return err
	}

	eng, err := engine.Build(v, configDir, logger.Nop())
	if err != nil {
		return err
	}
	defer eng.Close()

	target, err := vector.ParseMode(modeName)
	if err != nil {
		return fmt.Errorf("unknown mode %q (available: %s)", modeName, modeNames())
	}

	if eng.Modes.Active() == target {
		fmt.Printf("\n  %s Mode %s is already active.\n\n", cliui.SuccessMark, cliui.ValueStyle.Render(modeName))
		return nil
	}

	missing, err := eng.Modes.MissingCount(ctx, target, eng.Context)
	if err != nil {
		return err
	}
	if missing > 0 {
		fmt.Printf("\n  %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("%d facts need embedding (~%s)",
				missing, cliui.FormatDuration(eng.Modes.EstimateDuration(missing)))),
		)
	}

	var result *modes.SwitchResult
	err = cliui.Step(os.Stdout, fmt.Sprintf("switching to %s", modeName), func() error {
		var switchErr error
		result, switchErr = eng.Modes.Switch(ctx, eng.Context, target)
		return switchErr
	})
	if err != nil {
		if result != nil && result.Embedded > 0 {
			fmt.Printf("  %s\n\n",
				cliui.DimStyle.Render(fmt.Sprintf("kept %d of %d embedded facts; retry to resume", result.Embedded, result.Missing)),
			)
		}
		return err
	}

	fmt.Printf("  %s\n\n", cliui.ValueStyle.Render(result.Summary()))
	return nil
}

func modeNames() string {
	out := ""
	for i, m := range vector.Modes {
		if i > 0 {
			out += ", "
		}
		out += m.String()
	}
	return out
}
