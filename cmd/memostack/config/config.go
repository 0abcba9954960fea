// Package configcmder provides the config command for managing persistent
// memostack configuration stored in the .memostack/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent memostack configuration.

Configuration is stored as config.toml in the .memostack/ directory and
provides default values for command flags. CLI flags always take precedence
over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.provider, storage.sqlite_path, storage.postgres_dsn,
  stack.max_hot_count, stack.spotlight_interval_seconds, stack.tab_spaces

Use subcommands to get, set, or list configuration values:
  memostack config set <key> <value>    Set a configuration value
  memostack config get <key>            Get a configuration value
  memostack config list                 List all configuration values

Examples:
  memostack config set stack.max_hot_count 5
  memostack config set storage.provider postgres
  memostack config get stack.max_hot_count
  memostack config list`

const configShortDesc string = "Manage persistent memostack configuration"

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
