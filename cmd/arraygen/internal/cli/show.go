package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/arraygen/cmd/arraygen/internal/ui"
	"github.com/example/arraygen/covering/domain"
	"github.com/example/arraygen/pkg/id"
)

var showOutput string

var showCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Dump a saved array",
	Long: `Dump a saved run's array, either to the console or to a file.

EXAMPLES:
  arraygen show 5f2a91c3
  arraygen show 5f2a91c3 -o array.tsv`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "", "write the array to this file")
}

func runShow(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if showOutput != "" {
		if err := os.WriteFile(showOutput, []byte(run.ArrayText), 0o644); err != nil {
			return fmt.Errorf("writing array: %w", err)
		}
		ui.PrintSuccess("array written to " + showOutput)
		return nil
	}

	ui.PrintHeader("Run " + id.Short(run.ID))
	ui.PrintInfo(fmt.Sprintf("created:  %s", run.CreatedAt.Local().Format("2006-01-02 15:04:05")))
	ui.PrintInfo(fmt.Sprintf("phase:    %s (t=%d, d=%d, δ=%d)",
		run.Config.Phase, run.Config.Strength, run.Config.SetSize, run.Config.Separation))
	ui.PrintInfo(fmt.Sprintf("seed:     %d", run.Seed))
	ui.PrintInfo(fmt.Sprintf("rows:     %d", run.NumRows))
	ui.PrintInfo("")

	rows, err := domain.ParseRows(run.ArrayText, run.Config.Levels)
	if err != nil {
		return err
	}
	ui.PrintArray(rows)
	return nil
}
