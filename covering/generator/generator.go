// Package generator drives row construction: it owns the driver loop that
// seeds the first random row and then appends heuristic rows until the
// array's score reaches zero, choosing a heuristic per row from the kinds of
// problems that remain.
package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/example/arraygen/covering/array"
	"github.com/example/arraygen/covering/domain"
	"github.com/example/arraygen/internal/observability"
	"github.com/example/arraygen/pkg/id"
)

// Progress describes the state after one committed row.
type Progress struct {
	// Row is the 1-based index of the row just committed.
	Row int

	// Heuristic is the label of the heuristic that built the row
	// ("random" for the seed row).
	Heuristic string

	// Stats is the engine's counter snapshot after the commit.
	Stats array.Stats
}

// Option configures a Generator.
type Option func(*Generator)

// WithProgress installs a callback invoked after every committed row.
func WithProgress(fn func(Progress)) Option {
	return func(g *Generator) { g.progress = fn }
}

// WithMetrics replaces the generator's metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(g *Generator) { g.metrics = m }
}

// WithLogger forwards the engine's row-commit lines to logf.
func WithLogger(logf func(format string, args ...any)) Option {
	return func(g *Generator) { g.arr.SetLogger(logf) }
}

// Generator coordinates one generation run.
type Generator struct {
	cfg      domain.Config
	arr      *array.Array
	metrics  *observability.Metrics
	progress func(Progress)
}

// New validates cfg, builds the array state, and returns a ready generator.
func New(cfg domain.Config, opts ...Option) (*Generator, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	arr, err := array.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("building array state: %w", err)
	}
	g := &Generator{
		cfg:     arr.Config(),
		arr:     arr,
		metrics: observability.NewMetrics(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Array exposes the underlying engine state, primarily for inspection after
// a run.
func (g *Generator) Array() *array.Array { return g.arr }

// Metrics returns the metrics sink the run records into.
func (g *Generator) Metrics() *observability.Metrics { return g.metrics }

// Run generates rows until every requested property holds, the context is
// cancelled, or the row budget runs out.
func (g *Generator) Run(ctx context.Context) (*domain.Report, error) {
	start := time.Now()
	report := &domain.Report{
		RunID:           id.New(),
		Config:          g.cfg,
		Seed:            g.arr.Seed(),
		RowsByHeuristic: make(map[string]int),
		CreatedAt:       start,
	}

	if err := g.arr.AddRandomRow(); err != nil {
		return nil, err
	}
	g.noteRow(report, "random")

	exhaustible := g.cfg.CandidateSpace(g.cfg.ExhaustiveLimit) <= g.cfg.ExhaustiveLimit
	for g.arr.Score() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if g.cfg.MaxRows > 0 && g.arr.NumRows() >= g.cfg.MaxRows {
			return nil, fmt.Errorf("%w: score still %d after %d rows",
				domain.ErrBudgetExceeded, g.arr.Score(), g.arr.NumRows())
		}

		h := g.selectHeuristic(exhaustible)
		rowStart := time.Now()
		if err := g.arr.AddRow(h); err != nil {
			return nil, err
		}
		g.metrics.RowDuration().Observe(time.Since(rowStart))
		if h == array.HeuristicExhaustive {
			g.metrics.CloneCount().Add(int64(g.cfg.CandidateSpace(g.cfg.ExhaustiveLimit)))
		}
		g.noteRow(report, h.String())
	}

	report.Rows = g.arr.Rows()
	report.Score = g.arr.Score()
	report.Duration = time.Since(start)
	return report, nil
}

// selectHeuristic picks the heuristic for the next row: the cheap coverage
// heuristic while coverage problems dominate, the location heuristic once
// coverage is done, and the exhaustive look-ahead for the endgame or when
// only detection problems remain and the candidate space is small enough.
func (g *Generator) selectHeuristic(exhaustible bool) array.Heuristic {
	if exhaustible && g.arr.Score() <= int64(g.cfg.EndgameScore) {
		return array.HeuristicExhaustive
	}
	if !g.arr.IsCovering() {
		return array.HeuristicCoverage
	}
	if g.cfg.Phase != domain.PhaseCoverage && !g.arr.IsLocating() {
		return array.HeuristicLocation
	}
	if exhaustible {
		return array.HeuristicExhaustive
	}
	return array.HeuristicDetection
}

func (g *Generator) noteRow(report *domain.Report, label string) {
	g.metrics.RowsByHeuristic().Inc(label)
	report.RowsByHeuristic[label]++
	if g.progress != nil {
		g.progress(Progress{
			Row:       g.arr.NumRows(),
			Heuristic: label,
			Stats:     g.arr.Stats(),
		})
	}
}
