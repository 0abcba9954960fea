// Package capturecmder provides the capture command for adding memos from
// the shell without opening the TUI.
package capturecmder

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/memostack/cmd/memostack/dbpath"
	"github.com/papercomputeco/memostack/pkg/cliui"
	"github.com/papercomputeco/memostack/pkg/config"
	"github.com/papercomputeco/memostack/pkg/logger"
	"github.com/papercomputeco/memostack/pkg/memo"
	"github.com/papercomputeco/memostack/pkg/stack"
	"github.com/papercomputeco/memostack/pkg/storage"
	"github.com/papercomputeco/memostack/pkg/storage/inmemory"
	"github.com/papercomputeco/memostack/pkg/storage/postgres"
	"github.com/papercomputeco/memostack/pkg/storage/sqlite"
)

const captureLongDesc string = `Capture a memo onto the hot stack.

The first line of the text becomes the title and everything after it the
body. New memos land on the front of the stack; when the stack is full the
bottom memo is archived to cold.

Pass --delay HH:MM to keep the memo off the stack until the delay elapses.

Examples:
  memostack capture "call the landlord"
  memostack capture "renew passport
check photo requirements first"
  memostack capture --delay 02:00 "take the bread out of the oven"
  echo "water the plants" | memostack capture`

const captureShortDesc string = "Capture a memo onto the hot stack"

type options struct {
	delay           string
	storageProvider string
	sqlitePath      string
	postgresDSN     string
	maxHot          uint
}

func NewCaptureCmd() *cobra.Command {
	opts := &options{}
	fs := config.DefaultFlagSet()

	cmd := &cobra.Command{
		Use:   "capture [text]",
		Short: captureShortDesc,
		Long:  captureLongDesc,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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
			})

			text := strings.Join(args, "\n")
			if text == "" {
				// No args, read the memo text from stdin.
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				text = strings.TrimRight(string(data), "\n")
			}

			return runCapture(cmd.Context(), config.FromViper(v), text, opts.delay, debug)
		},
	}

	cmd.Flags().StringVar(&opts.delay, "delay", "", "delay before the memo goes hot, as HH:MM")
	config.AddStringFlag(cmd, fs, config.FlagStorageProvider, &opts.storageProvider)
	config.AddStringFlag(cmd, fs, config.FlagSQLite, &opts.sqlitePath)
	config.AddStringFlag(cmd, fs, config.FlagPostgresDSN, &opts.postgresDSN)
	config.AddUintFlag(cmd, fs, config.FlagMaxHotCount, &opts.maxHot)

	return cmd
}

func runCapture(ctx context.Context, cfg *config.Config, text, delay string, debug bool) error {
	log := logger.New(logger.WithPretty(true), logger.WithDebug(debug))

	driver, err := OpenDriver(ctx, cfg)
	if err != nil {
		return err
	}
	defer driver.Close()

	manager := stack.NewManager(driver, log, int(cfg.Stack.MaxHotCount))
	if err := manager.Load(ctx); err != nil {
		return err
	}

	mm, err := manager.Capture(ctx, text, delay)
	if err != nil {
		return err
	}

	if mm.Status == memo.StatusDelayed {
		ready, _ := mm.ReadyAt()
		fmt.Printf("  %s Captured %s, hot at %s\n",
			cliui.SuccessMark,
			cliui.ValueStyle.Render(mm.Title),
			cliui.DimStyle.Render(ready.Local().Format("15:04")),
		)
		return nil
	}

	fmt.Printf("  %s Captured %s onto the stack (%d/%d hot)\n",
		cliui.SuccessMark,
		cliui.ValueStyle.Render(mm.Title),
		len(manager.HotIDs()),
		manager.MaxHot(),
	)
	return nil
}

// OpenDriver opens the storage backend named by the resolved config.
// Shared by the capture, list, and stack commands.
func OpenDriver(ctx context.Context, cfg *config.Config) (storage.Driver, error) {
	switch cfg.Storage.Provider {
	case "", "sqlite":
		path, err := dbpath.ResolveSQLitePath(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		return sqlite.NewDriver(path)

	case "postgres":
		if cfg.Storage.PostgresDSN == "" {
			return nil, fmt.Errorf("storage.postgres_dsn is required for the postgres provider")
		}
		return postgres.NewDriver(ctx, cfg.Storage.PostgresDSN)

	case "memory":
		// Scratch sessions, nothing survives the process.
		return inmemory.NewDriver(), nil

	default:
		return nil, fmt.Errorf("unknown storage provider: %q (available: sqlite, postgres, memory)", cfg.Storage.Provider)
	}
}
