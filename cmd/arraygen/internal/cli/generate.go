package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/arraygen/cmd/arraygen/internal/ui"
	"github.com/example/arraygen/covering/domain"
	"github.com/example/arraygen/covering/generator"
	"github.com/example/arraygen/internal/storage"
	"github.com/example/arraygen/pkg/id"
)

var (
	genFactors    string
	genStrength   int
	genSetSize    int
	genSeparation int
	genPhase      string
	genSeed       int64
	genMaxRows    int
	genOutput     string
	genSave       bool
	genStats      bool
	genQuiet      bool
	genVerbose    bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an array for the given factors and parameters",
	Long: `Generate an array satisfying the requested combinatorial property.

The first row is random; every further row is constructed by a heuristic
chosen from the kinds of problems that remain, then committed. Generation
ends when the score (the count of outstanding problems) reaches zero.

EXAMPLES:
  # Pairwise coverage over mixed levels
  arraygen generate --factors 3,3,2,2 -t 2

  # Detection with a fixed seed, saved to the run database
  arraygen generate --factors 2,2,2 -t 2 -d 1 --separation 1 \
      --phase detection --seed 42 --save

  # Write the finished array to a file
  arraygen generate --factors 2,2,2,2 -t 2 -o array.tsv`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&genFactors, "factors", "", "comma-separated level counts, e.g. 2,2,3 (required)")
	generateCmd.Flags().IntVarP(&genStrength, "strength", "t", 2, "interaction strength t")
	generateCmd.Flags().IntVarP(&genSetSize, "set-size", "d", 1, "interaction set magnitude d")
	generateCmd.Flags().IntVar(&genSeparation, "separation", 1, "detection margin δ")
	generateCmd.Flags().StringVar(&genPhase, "phase", "coverage", "target property: coverage, location, or detection")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 0, "random seed for reproducibility (0 = random)")
	generateCmd.Flags().IntVar(&genMaxRows, "max-rows", 0, "abort after this many rows (0 = unlimited)")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "write the array to this file instead of stdout")
	generateCmd.Flags().BoolVar(&genSave, "save", false, "persist the run to the run database")
	generateCmd.Flags().BoolVar(&genStats, "stats", false, "print row-construction timing statistics")
	generateCmd.Flags().BoolVarP(&genQuiet, "quiet", "q", false, "suppress progress output")
	generateCmd.Flags().BoolVarP(&genVerbose, "verbose", "v", false, "report per-row score breakdowns")
	_ = generateCmd.MarkFlagRequired("factors")
}

// verbosityFromFlags resolves --quiet/--verbose into one level; --quiet wins.
func verbosityFromFlags() domain.Verbosity {
	switch {
	case genQuiet:
		return domain.Quiet
	case genVerbose:
		return domain.Verbose
	default:
		return domain.Normal
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	levels, err := parseFactors(genFactors)
	if err != nil {
		return err
	}
	verbosity := verbosityFromFlags()
	phase, err := domain.ParsePhase(genPhase)
	if err != nil {
		return err
	}
	cfg := domain.Config{
		Levels:     levels,
		Strength:   genStrength,
		SetSize:    genSetSize,
		Separation: genSeparation,
		Phase:      phase,
		RandomSeed: genSeed,
		MaxRows:    genMaxRows,
	}

	var opts []generator.Option
	if verbosity == domain.Verbose {
		opts = append(opts, generator.WithProgress(printProgress))
	}
	g, err := generator.New(cfg, opts...)
	if err != nil {
		return err
	}

	if verbosity != domain.Quiet {
		ui.PrintHeader("Generating Array")
		st := g.Array().Stats()
		ui.PrintStep(fmt.Sprintf("%d factors, t=%d, d=%d, δ=%d, phase=%s",
			len(levels), cfg.Strength, cfg.SetSize, cfg.Separation, cfg.Phase))
		ui.PrintDim(fmt.Sprintf("%d total problems to solve, seed %d", st.TotalProblems, g.Array().Seed()))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := g.Run(ctx)
	if err != nil {
		return err
	}

	if verbosity != domain.Quiet {
		ui.PrintSuccess(fmt.Sprintf("array complete: %d rows in %s",
			report.NumRows(), report.Duration.Round(time.Millisecond)))
		for label, n := range report.RowsByHeuristic {
			ui.PrintDim(fmt.Sprintf("%3d rows via %s", n, label))
		}
	}

	text := domain.FormatRows(report.Rows)
	if genOutput != "" {
		if err := os.WriteFile(genOutput, []byte(text), 0o644); err != nil {
			return fmt.Errorf("writing array: %w", err)
		}
		if verbosity != domain.Quiet {
			ui.PrintSuccess("array written to " + genOutput)
		}
	} else if verbosity == domain.Quiet {
		fmt.Print(text)
	} else {
		ui.PrintInfo("")
		ui.PrintArray(report.Rows)
	}

	if genSave {
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Create(ctx, &storage.Run{
			ID:        report.RunID,
			Config:    report.Config,
			Seed:      report.Seed,
			NumRows:   report.NumRows(),
			Score:     report.Score,
			ArrayText: text,
			Duration:  report.Duration,
			CreatedAt: report.CreatedAt,
		}); err != nil {
			return fmt.Errorf("saving run: %w", err)
		}
		if verbosity != domain.Quiet {
			ui.PrintSuccess("run saved as " + id.Short(report.RunID))
		}
	}

	if genStats {
		snap := g.Metrics().Snapshot()
		ui.PrintHeader("Row Construction Stats")
		ui.PrintInfo(fmt.Sprintf("rows timed:       %d", snap.RowDuration.Count))
		ui.PrintInfo(fmt.Sprintf("mean / p50:       %s / %s", snap.RowDuration.Mean, snap.RowDuration.P50))
		ui.PrintInfo(fmt.Sprintf("p95 / p99 / max:  %s / %s / %s",
			snap.RowDuration.P95, snap.RowDuration.P99, snap.RowDuration.Max))
		ui.PrintInfo(fmt.Sprintf("look-ahead clones: %d", snap.CloneCount))
	}
	return nil
}

func printProgress(p generator.Progress) {
	line := fmt.Sprintf("row %3d (%s): score %d", p.Row, p.Heuristic, p.Stats.Score)
	ui.PrintDim(line)
	ui.PrintDim(fmt.Sprintf("  coverage %d, location %d, detection %d",
		p.Stats.CoverageScore, p.Stats.LocationScore, p.Stats.DetectionScore))
}
