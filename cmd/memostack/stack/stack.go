// Package stackcmder provides the stack command, the interactive TUI for
// working the memo stack.
package stackcmder

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	capturecmder "github.com/papercomputeco/memostack/cmd/memostack/capture"
	"github.com/papercomputeco/memostack/pkg/cliui"
	"github.com/papercomputeco/memostack/pkg/config"
	"github.com/papercomputeco/memostack/pkg/logger"
	"github.com/papercomputeco/memostack/pkg/stack"
	"github.com/papercomputeco/memostack/pkg/storage"
)

const stackLongDesc string = `Open the interactive memo stack.

The stack view shows the hot stack with the most urgent memo on top, plus
tabs for archived, done, and delayed memos. Capture new memos from the input
at the top; an optional HH:MM delay keeps a memo off the stack until the
delay elapses. Every so often a random archived memo is spotlighted so cold
notes resurface.

Examples:
  memostack stack
  memostack stack --max-hot 5
  memostack stack --spotlight-interval 0
  memostack stack --sqlite /tmp/scratch.sqlite`

const stackShortDesc string = "Open the interactive memo stack"

type stackCommander struct {
	storageProvider   string
	sqlitePath        string
	postgresDSN       string
	maxHot            uint
	spotlightInterval uint
	tabSpaces         uint
}

func NewStackCmd() *cobra.Command {
	cmder := &stackCommander{}
	fs := config.DefaultFlagSet()

	cmd := &cobra.Command{
		Use:   "stack",
		Short: stackShortDesc,
		Long:  stackLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			debug, _ := cmd.Flags().GetBool("debug")

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, fs, []string{
				config.FlagStorageProvider,
				config.FlagSQLite,
				config.FlagPostgresDSN,
				config.FlagMaxHotCount,
				config.FlagSpotlightInterval,
				config.FlagTabSpaces,
			})

			return cmder.run(cmd.Context(), config.FromViper(v), debug)
		},
	}

	config.AddStringFlag(cmd, fs, config.FlagStorageProvider, &cmder.storageProvider)
	config.AddStringFlag(cmd, fs, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, fs, config.FlagPostgresDSN, &cmder.postgresDSN)
	config.AddUintFlag(cmd, fs, config.FlagMaxHotCount, &cmder.maxHot)
	config.AddUintFlag(cmd, fs, config.FlagSpotlightInterval, &cmder.spotlightInterval)
	config.AddUintFlag(cmd, fs, config.FlagTabSpaces, &cmder.tabSpaces)

	return cmd
}

func (c *stackCommander) run(ctx context.Context, cfg *config.Config, debug bool) error {
	log := logger.New(logger.WithPretty(true), logger.WithDebug(debug))

	var driver storage.Driver
	var manager *stack.Manager
	if err := cliui.Step(os.Stdout, "Loading memos", func() error {
		var err error
		driver, err = capturecmder.OpenDriver(ctx, cfg)
		if err != nil {
			return err
		}
		manager = stack.NewManager(driver, log, int(cfg.Stack.MaxHotCount))
		return manager.Load(ctx)
	}); err != nil {
		return err
	}
	defer driver.Close()

	// Promote anything that came due while the app was closed.
	if _, err := manager.CheckDelayed(ctx, time.Now().UTC()); err != nil {
		log.Warn("failed to promote delayed memos on startup", "error", err)
	}

	spotlight := stack.NewSpotlight(manager, time.Duration(cfg.Stack.SpotlightIntervalSeconds)*time.Second)
	spotlight.Refresh(time.Now().UTC())

	prefs, err := driver.LoadPrefs(ctx)
	if err != nil {
		return err
	}

	return runStackTUI(ctx, manager, spotlight, driver, prefs, int(cfg.Stack.TabSpaces), log)
}
