// Package configcmder provides the config command for managing persistent
// ragbench configuration stored in the .ragbench/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent ragbench configuration.

Configuration is stored as config.toml in the .ragbench/ directory and
provides default values for command flags. CLI flags always take
precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  generation.endpoint, generation.model,
  generation.max_tokens, generation.task_delay_ms,
  runstate.sqlite_path,
  eventstream.enabled, eventstream.brokers, eventstream.topic

Use subcommands to get, set, or list configuration values:
  ragbench config set <key> <value>    Set a configuration value
  ragbench config get <key>            Get a configuration value
  ragbench config list                 List all configuration values

Examples:
  ragbench config set generation.model llama-3.3-70b-versatile
  ragbench config set generation.max_tokens 1024
  ragbench config get generation.endpoint
  ragbench config list`

const configShortDesc string = "Manage persistent ragbench configuration"

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
