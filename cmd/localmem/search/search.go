// Package searchcmder provides the search command for querying memories
// from the terminal.
package searchcmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/NickSmet/mcp-local-memory/cmd/localmem/engine"
	"github.com/NickSmet/mcp-local-memory/pkg/cliui"
	"github.com/NickSmet/mcp-local-memory/pkg/config"
	"github.com/NickSmet/mcp-local-memory/pkg/logger"
	"github.com/NickSmet/mcp-local-memory/pkg/service"
	"github.com/NickSmet/mcp-local-memory/pkg/utils"
)

type SearchCommander struct {
	limit       int
	boostTags   []string
	boostWeight float64
	mode        string
	sqlitePath  string
}

const searchLongDesc string = `Search stored memories semantically.

The query is embedded in the active mode and scored against every fact in
that namespace. Boost tags add a soft score bonus per matched tag without
filtering anything out.

Examples:
  localmem search "dark mode preferences"
  localmem search "deploy steps" --boost-tag infra --boost-tag ci
  localmem search "editor setup" --mode hash-local --limit 10`

const searchShortDesc string = "Search stored memories"

var searchFlags = config.FlagSet{
	config.FlagSQLite: {
		Name:        "sqlite",
		Shorthand:   "s",
		ViperKey:    "storage.sqlite_path",
		Description: "Path to the SQLite database",
	},
	config.FlagSearchLimit: {
		Name:        "limit",
		Shorthand:   "n",
		ViperKey:    "search.limit",
		Description: "Maximum number of memories to return",
	},
}

func NewSearchCmd() *cobra.Command {
	cmder := &SearchCommander{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: searchShortDesc,
		Long:  searchLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(cmd.Context(), cmd, configDir, strings.Join(args, " "))
		},
	}

	config.AddStringFlag(cmd, searchFlags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddIntFlag(cmd, searchFlags, config.FlagSearchLimit, &cmder.limit)
	cmd.Flags().StringArrayVarP(&cmder.boostTags, "boost-tag", "b", nil, "Tag whose presence boosts a memory's score (repeatable)")
	cmd.Flags().Float64Var(&cmder.boostWeight, "boost-weight", 0, "Additive score bonus per matched boost tag")
	cmd.Flags().StringVarP(&cmder.mode, "mode", "m", "", "Embedding mode to search in (default: active)")

	return cmd
}

func (c *SearchCommander) run(ctx context.Context, cmd *cobra.Command, configDir, query string) error {
	v, err := config.InitViper(configDir)
	if err != nil {
		return err
	}
	config.BindRegisteredFlags(v, cmd, searchFlags, []string{
		config.FlagSQLite,
		config.FlagSearchLimit,
	})

	eng, err := engine.Build(v, configDir, logger.Nop())
	if err != nil {
		return err
	}
	defer eng.Close()

	boostWeight := c.boostWeight
	if boostWeight == 0 {
		boostWeight = eng.BoostWeight
	}

	results, err := eng.Service.Search(ctx, service.SearchParams{
		Context:     eng.Context,
		Query:       query,
		Limit:       v.GetInt("search.limit"),
		BoostTags:   c.boostTags,
		BoostWeight: boostWeight,
		Mode:        c.mode,
	})
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render("No results."))
		return nil
	}

	fmt.Println()
	for i, r := range results {
		score := cliui.ScoreStyle.Render(fmt.Sprintf("%.3f", r.Score))
		if r.BoostMatches > 0 {
			score += cliui.DimStyle.Render(fmt.Sprintf(" (+%d tags)", r.BoostMatches))
		}

		fmt.Printf("  %s %s  %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("%d.", i+1)),
			cliui.IDStyle.Render(r.MemoryID),
			score,
		)
		fmt.Printf("     %s\n", cliui.ValueStyle.Render(utils.Truncate(r.FactText, 96)))
		if len(r.MemoryTags) > 0 {
			fmt.Printf("     %s\n", cliui.TagStyle.Render(strings.Join(r.MemoryTags, ", ")))
		}
	}
	fmt.Println()

	return nil
}
