// Package configcmder provides the config command for managing persistent
// localmem configuration stored in the .localmem/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent localmem configuration.

Configuration is stored as config.toml in the .localmem/ directory and
provides default values for command flags. CLI flags and LOCALMEM_*
environment variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.sqlite_path, api.listen,
  memory.context, memory.mode,
  embedding.openai_base_url, embedding.ollama_target, embedding.ollama_model,
  splitter.model,
  search.limit, search.boost_weight

Use subcommands to get, set, or list configuration values:
  localmem config set <key> <value>    Set a configuration value
  localmem config get <key>            Get a configuration value
  localmem config list                 List all configuration values

Examples:
  localmem config set memory.mode ollama-nomic
  localmem config set search.limit 10
  localmem config get memory.context
  localmem config list`

const configShortDesc string = "Manage persistent localmem configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
