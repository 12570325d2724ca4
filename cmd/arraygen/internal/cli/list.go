package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/arraygen/cmd/arraygen/internal/ui"
	"github.com/example/arraygen/internal/storage"
	"github.com/example/arraygen/pkg/id"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved generation runs",
	RunE:  runList,
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "show at most this many runs")
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), storage.ListOptions{Limit: listLimit})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		ui.PrintInfo("no saved runs (generate with --save to keep one)")
		return nil
	}

	ui.PrintInfo(fmt.Sprintf("%-8s  %-16s  %-12s  %-9s  %5s  %5s  %s",
		"ID", "CREATED", "FACTORS", "PHASE", "ROWS", "SCORE", "TOOK"))
	for _, run := range runs {
		levels := make([]string, len(run.Config.Levels))
		for i, l := range run.Config.Levels {
			levels[i] = fmt.Sprintf("%d", l)
		}
		ui.PrintInfo(fmt.Sprintf("%-8s  %-16s  %-12s  %-9s  %5d  %5d  %s",
			id.Short(run.ID),
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
			strings.Join(levels, ","),
			run.Config.Phase,
			run.NumRows,
			run.Score,
			run.Duration.Round(time.Millisecond)))
	}
	return nil
}
