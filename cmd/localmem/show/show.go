// Package showcmder provides the show command for displaying a single
// memory with its extracted facts.
package showcmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/NickSmet/mcp-local-memory/cmd/localmem/engine"
	"github.com/NickSmet/mcp-local-memory/pkg/cliui"
	"github.com/NickSmet/mcp-local-memory/pkg/config"
	"github.com/NickSmet/mcp-local-memory/pkg/logger"
)

const showLongDesc string = `Show a stored memory.

Displays the memory's narrative text rendered as markdown, its tags, and
the facts that were extracted from it.

Examples:
  localmem show mem_8f2a91
  localmem show mem_8f2a91 --plain`

const showShortDesc string = "Show a stored memory and its facts"

type ShowCommander struct {
	plain bool
}

func NewShowCmd() *cobra.Command {
	cmder := &ShowCommander{}

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: showShortDesc,
		Long:  showLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(cmd.Context(), args[0], configDir)
		},
	}

	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Print raw text without markdown rendering")

	return cmd
}

func (c *ShowCommander) run(ctx context.Context, id, configDir string) error {
	v, err := config.InitViper(configDir)
	if err != nil {
		return err
	}

	eng, err := engine.Build(v, configDir, logger.Nop())
	if err != nil {
		return err
	}
	defer eng.Close()

	mem, err := eng.Service.GetMemory(ctx, eng.Context, id)
	if err != nil {
		return err
	}

	facts, err := eng.Service.ListFacts(ctx, eng.Context, id)
	if err != nil {
		return fmt.Errorf("listing facts: %w", err)
	}

	fmt.Printf("\n  %s  %s\n", cliui.KeyStyle.Render("Memory:"), cliui.IDStyle.Render(mem.ID))
	if len(mem.Tags) > 0 {
		fmt.Printf("  %s    %s\n", cliui.KeyStyle.Render("Tags:"), cliui.TagStyle.Render(strings.Join(mem.Tags, ", ")))
	}
	fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Created:"), cliui.DimStyle.Render(mem.CreatedAt.Format("2006-01-02 15:04")))

	if c.plain {
		fmt.Printf("\n%s\n", mem.Text)
	} else {
		rendered, err := cliui.RenderMarkdown(mem.Text)
		if err != nil {
			// Fall back to raw text when the terminal renderer fails.
			rendered = "\n" + mem.Text + "\n"
		}
		fmt.Print(rendered)
	}

	if len(facts) > 0 {
		fmt.Printf("  %s\n", cliui.KeyStyle.Render("Facts:"))
		for _, f := range facts {
			fmt.Printf("    %s %s\n", cliui.DimStyle.Render("•"), f.Text)
		}
	}

	fmt.Println()
	return nil
}
