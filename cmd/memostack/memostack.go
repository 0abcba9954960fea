// Package memostackcmder
package memostackcmder

import (
	capturecmder "github.com/papercomputeco/memostack/cmd/memostack/capture"
	configcmder "github.com/papercomputeco/memostack/cmd/memostack/config"
	"github.com/papercomputeco/memostack/cmd/memostack/dbpath"
	listcmder "github.com/papercomputeco/memostack/cmd/memostack/list"
	stackcmder "github.com/papercomputeco/memostack/cmd/memostack/stack"
	"github.com/spf13/cobra"
)

const memostackLongDesc string = `Memostack keeps a bounded stack of the memos you are working on.

Common commands:
  memostack stack        Open the interactive stack view
  memostack capture      Capture a memo from the command line
  memostack list         List memos by status
  memostack config       Inspect and edit configuration`

const memostackShortDesc string = "Memostack - A memo triage stack"

func NewMemostackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memostack",
		Short: memostackShortDesc,
		Long:  memostackLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the config directory")

	// Add subcommands
	cmd.AddCommand(stackcmder.NewStackCmd())
	cmd.AddCommand(capturecmder.NewCaptureCmd())
	cmd.AddCommand(listcmder.NewListCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(dbpath.NewDbpathCmd())

	return cmd
}
