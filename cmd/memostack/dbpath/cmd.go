package dbpath

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/memostack/pkg/cliui"
	"github.com/papercomputeco/memostack/pkg/config"
)

const dbpathLongDesc string = `Print the SQLite database path memostack would use.

Useful for checking which database a command will hit when several candidate
locations exist.`

const dbpathShortDesc string = "Print the resolved SQLite database path"

func NewDbpathCmd() *cobra.Command {
	var sqlitePath string
	fs := config.DefaultFlagSet()

	cmd := &cobra.Command{
		Use:   "dbpath",
		Short: dbpathShortDesc,
		Long:  dbpathLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, fs, []string{config.FlagSQLite})

			path, err := ResolveSQLitePath(config.FromViper(v).Storage.SQLitePath)
			if err != nil {
				return err
			}

			fmt.Printf("  %s %s\n",
				cliui.KeyStyle.Render("SQLite database:"),
				cliui.ValueStyle.Render(path),
			)
			return nil
		},
	}

	config.AddStringFlag(cmd, fs, config.FlagSQLite, &sqlitePath)

	return cmd
}
