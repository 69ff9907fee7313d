// Package localmemcmder
package localmemcmder

import (
	"github.com/spf13/cobra"

	authcmder "github.com/NickSmet/mcp-local-memory/cmd/localmem/auth"
	configcmder "github.com/NickSmet/mcp-local-memory/cmd/localmem/config"
	modecmder "github.com/NickSmet/mcp-local-memory/cmd/localmem/mode"
	searchcmder "github.com/NickSmet/mcp-local-memory/cmd/localmem/search"
	servecmder "github.com/NickSmet/mcp-local-memory/cmd/localmem/serve"
	showcmder "github.com/NickSmet/mcp-local-memory/cmd/localmem/show"
	statuscmder "github.com/NickSmet/mcp-local-memory/cmd/localmem/status"
	versioncmder "github.com/NickSmet/mcp-local-memory/cmd/version"
)

const localmemLongDesc string = `Localmem is a semantic memory engine for agents.

Store narratives as memories, recall them by meaning:
  localmem serve           Run the MCP and inspection API server
  localmem search <query>  Search stored memories from the terminal
  localmem mode switch     Change the active embedding mode
  localmem status          Show store and mode coverage status`

const localmemShortDesc string = "Localmem - semantic memory for agents"

func NewLocalmemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "localmem",
		Short: localmemShortDesc,
		Long:  localmemLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .localmem/ directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(statuscmder.NewStatusCmd())
	cmd.AddCommand(searchcmder.NewSearchCmd())
	cmd.AddCommand(showcmder.NewShowCmd())
	cmd.AddCommand(modecmder.NewModeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
