// Package listcmder provides the list command for printing memos without
// opening the TUI.
package listcmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	capturecmder "github.com/papercomputeco/memostack/cmd/memostack/capture"
	"github.com/papercomputeco/memostack/pkg/cliui"
	"github.com/papercomputeco/memostack/pkg/config"
	"github.com/papercomputeco/memostack/pkg/logger"
	"github.com/papercomputeco/memostack/pkg/memo"
	"github.com/papercomputeco/memostack/pkg/stack"
)

const listLongDesc string = `List memos.

Without flags, prints the hot stack in order with the most urgent memo on
top. Use --status to list archived, done, or delayed memos instead, and
--search to filter by a case-insensitive substring of title or body.

Examples:
  memostack list
  memostack list --status cold
  memostack list --status done --search groceries`

const listShortDesc string = "List memos"

type options struct {
	status string
	search string

	storageProvider string
	sqlitePath      string
	postgresDSN     string
}

func NewListCmd() *cobra.Command {
	opts := &options{}
	fs := config.DefaultFlagSet()

	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
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
			})

			return runList(cmd.Context(), config.FromViper(v), opts, debug)
		},
	}

	cmd.Flags().StringVar(&opts.status, "status", "hot", "which memos to list: hot, cold, done, or delayed")
	cmd.Flags().StringVar(&opts.search, "search", "", "filter by substring of title or body")
	config.AddStringFlag(cmd, fs, config.FlagStorageProvider, &opts.storageProvider)
	config.AddStringFlag(cmd, fs, config.FlagSQLite, &opts.sqlitePath)
	config.AddStringFlag(cmd, fs, config.FlagPostgresDSN, &opts.postgresDSN)

	return cmd
}

func runList(ctx context.Context, cfg *config.Config, opts *options, debug bool) error {
	log := logger.New(logger.WithPretty(true), logger.WithDebug(debug))

	switch opts.status {
	case "hot", "cold", "done", "delayed":
	default:
		return fmt.Errorf("unknown status %q (available: hot, cold, done, delayed)", opts.status)
	}

	driver, err := capturecmder.OpenDriver(ctx, cfg)
	if err != nil {
		return err
	}
	defer driver.Close()

	manager := stack.NewManager(driver, log, int(cfg.Stack.MaxHotCount))
	if err := manager.Load(ctx); err != nil {
		return err
	}

	if opts.status == "hot" {
		memos := manager.FilterHot(opts.search)
		if len(memos) == 0 {
			fmt.Println(cliui.DimStyle.Render("  stack is empty"))
			return nil
		}
		for i, mm := range memos {
			printMemo(i+1, mm)
		}
		return nil
	}

	memos := manager.Query(memo.Status(opts.status), opts.search)
	if len(memos) == 0 {
		fmt.Println(cliui.DimStyle.Render("  no memos"))
		return nil
	}
	for i, mm := range memos {
		printMemo(i+1, mm)
	}
	return nil
}

func printMemo(position int, mm *memo.Memo) {
	line := fmt.Sprintf("  %2d. %s", position, cliui.ValueStyle.Render(mm.Title))

	switch {
	case mm.Status == memo.StatusDone && mm.CompletedAt != nil:
		line += cliui.DimStyle.Render("  done " + mm.CompletedAt.Local().Format("2006-01-02 15:04"))
	case mm.Status == memo.StatusDelayed:
		if ready, ok := mm.ReadyAt(); ok {
			line += cliui.DimStyle.Render("  hot at " + ready.Local().Format("15:04"))
		}
	}

	fmt.Println(line)
	if mm.Body != "" {
		fmt.Println(cliui.DimStyle.Render("      " + firstLine(mm.Body)))
	}
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i] + " …"
		}
	}
	return s
}
