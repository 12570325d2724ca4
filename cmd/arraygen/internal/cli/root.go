package cli

import (
	"github.com/spf13/cobra"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "arraygen",
	Short: "Generate covering, locating, and detecting arrays",
	Long: `arraygen builds combinatorial test arrays over categorical factors.

Given the number of levels of each factor and the parameters (t, d, δ), it
appends rows until the array satisfies the requested property:

  coverage    every t-way interaction appears in at least one row
  location    any two distinct size-d sets of interactions appear in
              different sets of rows
  detection   every interaction appears in at least δ rows outside any
              disjoint size-d set's rows

Construction is greedy and randomized: rows are initialized from the
neediest factor values, tweaked under a phase-specific heuristic, and, for
the final rows, chosen by exhaustive look-ahead scoring over cloned array
state. Runs can be persisted and audited later.

WORKFLOW:
  1. arraygen generate --factors 2,2,3 -t 2 --phase coverage
  2. arraygen generate ... --save       (keep the run in the local database)
  3. arraygen list                      (browse saved runs)
  4. arraygen show <run-id>             (dump a saved array)
  5. arraygen verify <run-id>           (re-audit a saved array)

EXAMPLES:
  # Pairwise covering array over five binary factors
  arraygen generate --factors 2,2,2,2,2 -t 2

  # (1,2)-locating array, reproducible seed
  arraygen generate --factors 3,3,2 -t 2 -d 1 --phase location --seed 7

  # (1,2,1)-detecting array with per-row progress and timing stats
  arraygen generate --factors 2,2,2 -t 2 -d 1 --separation 1 \
      --phase detection --verbose --stats

  # Audit an array from a file instead of the run database
  arraygen verify --file rows.tsv --factors 2,2,2 -t 2`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDBPath(), "path to the run database")
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(versionCmd)
}
