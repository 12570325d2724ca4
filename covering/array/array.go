// Package array implements the row-construction engine for covering,
// locating, and detecting arrays. An Array tracks every t-way interaction and
// every size-d set of interactions, together with counters for how many
// coverage, location, and detection problems remain. Rows are appended one at
// a time; the composite score reaches zero exactly when the array satisfies
// all properties requested by the configured phase.
package array

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/example/arraygen/covering/domain"
)

// Array is the top-level aggregate. It owns the factor/single catalog, the
// interaction and d-set arenas, the committed rows, and the global problem
// counters. It is not safe for concurrent mutation; look-ahead scoring works
// on clones.
type Array struct {
	cfg  domain.Config
	seed int64
	rng  *rand.Rand

	factors      []factor
	singles      []single
	interactions []interaction
	sets         []tSet

	interactionIDs map[string]int
	setIDs         map[string]int

	rows     [][]int
	numTests int

	totalProblems     int64
	coverageProblems  int64
	locationProblems  int64
	detectionProblems int64
	score             int64

	covering  bool
	locating  bool
	detecting bool

	dontCares   []dontCare
	permutation []int

	// logf receives row-commit progress lines when non-nil. Clones always
	// run silent.
	logf func(format string, args ...any)
}

// New builds an Array with all entities enumerated and all problem counters
// initialized for the configured phase. The returned array has no rows yet;
// callers must seed it with AddRandomRow before calling AddRow.
func New(cfg domain.Config) (*Array, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = rand.Int63()
	}

	a := &Array{
		cfg:            cfg,
		seed:           seed,
		rng:            rand.New(rand.NewSource(seed)),
		interactionIDs: make(map[string]int),
		setIDs:         make(map[string]int),
		dontCares:      make([]dontCare, len(cfg.Levels)),
		permutation:    make([]int, len(cfg.Levels)),
	}
	for col := range a.permutation {
		a.permutation[col] = col
	}

	a.buildCatalog()

	if n := a.countInteractions(); n > cfg.MaxInteractions {
		return nil, fmt.Errorf("%w: %d interactions exceed the limit of %d",
			domain.ErrTooLarge, n, cfg.MaxInteractions)
	}
	a.buildInteractions(0, cfg.Strength, nil)
	nInteractions := int64(len(a.interactions))
	a.totalProblems += nInteractions
	a.coverageProblems += nInteractions
	a.score += nInteractions
	if cfg.Phase == domain.PhaseCoverage {
		return a, nil
	}

	if n := binomialCapped(len(a.interactions), cfg.SetSize, cfg.MaxSets); n > cfg.MaxSets {
		return nil, fmt.Errorf("%w: %d interaction sets exceed the limit of %d",
			domain.ErrTooLarge, n, cfg.MaxSets)
	}
	a.buildSets(0, cfg.SetSize, nil)
	nSets := int64(len(a.sets))
	for si := range a.sets {
		for _, sID := range a.sets[si].singles {
			a.totalProblems += nSets
			a.singles[sID].lIssues += nSets
		}
	}
	a.totalProblems += nSets
	a.locationProblems += nSets
	a.score = a.totalProblems
	if cfg.Phase != domain.PhaseDetection {
		return a, nil
	}

	// Every interaction owes δ rows of separation against every d-set it is
	// not a member of.
	separation := int64(cfg.Separation)
	for ii := range a.interactions {
		inter := &a.interactions[ii]
		inter.deltas = make(map[int]int64)
		for ti := range a.sets {
			if _, member := inter.sets[ti]; member {
				continue
			}
			inter.deltas[ti] = 0
			for _, sID := range inter.singles {
				a.totalProblems += separation
				a.singles[sID].dIssues += separation
				a.score += separation
			}
		}
	}
	a.totalProblems += nInteractions
	a.detectionProblems += nInteractions
	a.score += nInteractions

	return a, nil
}

// buildCatalog enumerates every (factor, value) pair.
func (a *Array) buildCatalog() {
	a.factors = make([]factor, len(a.cfg.Levels))
	for i, levels := range a.cfg.Levels {
		f := factor{index: i, levels: levels, singles: make([]int, levels)}
		for v := 0; v < levels; v++ {
			id := len(a.singles)
			a.singles = append(a.singles, single{
				factor: i,
				value:  v,
				rows:   make(map[int]struct{}),
			})
			f.singles[v] = id
		}
		a.factors[i] = f
	}
}

// buildInteractions enumerates all t-way combinations of singles, one factor
// at most per combination, by ascending factor index. Each finished
// interaction charges one coverage issue to every member single.
func (a *Array) buildInteractions(start, tRemaining int, stack []int) {
	if tRemaining == 0 {
		id := len(a.interactions)
		inter := interaction{
			id:      id,
			singles: append([]int(nil), stack...),
			rows:    make(map[int]struct{}),
			sets:    make(map[int]struct{}),
		}
		a.interactions = append(a.interactions, inter)
		a.interactionIDs[a.interactionKey(stack)] = id
		for _, sID := range stack {
			a.singles[sID].cIssues++
			a.totalProblems++
			a.score++
		}
		return
	}
	for col := start; col <= len(a.factors)-tRemaining; col++ {
		for v := 0; v < a.factors[col].levels; v++ {
			a.buildInteractions(col+1, tRemaining-1, append(stack, a.factors[col].singles[v]))
		}
	}
}

// buildSets enumerates all size-d combinations of interactions. Each finished
// set links itself into its member interactions and flattens their singles.
func (a *Array) buildSets(start, dRemaining int, stack []int) {
	if dRemaining == 0 {
		id := len(a.sets)
		set := tSet{
			id:        id,
			members:   append([]int(nil), stack...),
			rows:      make(map[int]struct{}),
			conflicts: make(map[int]struct{}),
		}
		for _, iID := range stack {
			a.interactions[iID].sets[id] = struct{}{}
			set.singles = append(set.singles, a.interactions[iID].singles...)
		}
		a.sets = append(a.sets, set)
		a.setIDs[a.setKey(stack)] = id
		return
	}
	for i := start; i <= len(a.interactions)-dRemaining; i++ {
		a.buildSets(i+1, dRemaining-1, append(stack, i))
	}
}

// interactionKey concatenates the member singles' fingerprints in factor
// order.
func (a *Array) interactionKey(singleIDs []int) string {
	var b strings.Builder
	for _, sID := range singleIDs {
		b.WriteString(a.singles[sID].key())
	}
	return b.String()
}

// setKey concatenates the member interactions' fingerprints in enumeration
// order.
func (a *Array) setKey(interactionIDs []int) string {
	var b strings.Builder
	for _, iID := range interactionIDs {
		b.WriteString(a.interactionKey(a.interactions[iID].singles))
	}
	return b.String()
}

// countInteractions computes how many t-way interactions enumeration would
// produce, saturating just above the configured limit.
func (a *Array) countInteractions() int {
	limit := a.cfg.MaxInteractions
	var count func(start, tRemaining int) int
	count = func(start, tRemaining int) int {
		if tRemaining == 0 {
			return 1
		}
		total := 0
		for col := start; col <= len(a.factors)-tRemaining; col++ {
			sub := count(col+1, tRemaining-1)
			total += sub * a.factors[col].levels
			if total > limit {
				return limit + 1
			}
		}
		return total
	}
	return count(0, a.cfg.Strength)
}

// binomialCapped computes C(n, k), saturating just above limit.
func binomialCapped(n, k, limit int) int {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	result := 1
	for i := 1; i <= k; i++ {
		result = result * (n - k + i) / i
		if result > limit {
			return limit + 1
		}
	}
	return result
}

// Config returns the configuration the array was built with, defaults
// applied.
func (a *Array) Config() domain.Config { return a.cfg }

// Seed returns the seed the array's generator actually uses.
func (a *Array) Seed() int64 { return a.seed }

// Score returns the number of outstanding problems. Zero means the array
// satisfies every property requested by the phase.
func (a *Array) Score() int64 { return a.score }

// NumRows returns the number of committed rows.
func (a *Array) NumRows() int { return a.numTests }

// Rows returns a deep copy of the committed rows.
func (a *Array) Rows() [][]int {
	rows := make([][]int, len(a.rows))
	for i, row := range a.rows {
		rows[i] = append([]int(nil), row...)
	}
	return rows
}

// IsCovering reports whether every t-way interaction appears in some row.
func (a *Array) IsCovering() bool { return a.covering }

// IsLocating reports whether every d-set is distinguishable from every other.
func (a *Array) IsLocating() bool { return a.locating }

// IsDetecting reports whether every interaction clears the separation margin
// against every disjoint d-set.
func (a *Array) IsDetecting() bool { return a.detecting }

// SetLogger installs a progress sink for row commits. Passing nil silences
// the array.
func (a *Array) SetLogger(logf func(format string, args ...any)) { a.logf = logf }

// Stats is a point-in-time view of the problem counters.
type Stats struct {
	Rows              int
	Score             int64
	TotalProblems     int64
	CoverageProblems  int64
	LocationProblems  int64
	DetectionProblems int64

	// Per-property composite scores: the problem counter plus the singles'
	// share of outstanding issues for that property.
	CoverageScore  int64
	LocationScore  int64
	DetectionScore int64
}

// Stats returns the current problem counters.
func (a *Array) Stats() Stats {
	st := Stats{
		Rows:              a.numTests,
		Score:             a.score,
		TotalProblems:     a.totalProblems,
		CoverageProblems:  a.coverageProblems,
		LocationProblems:  a.locationProblems,
		DetectionProblems: a.detectionProblems,
		CoverageScore:     a.coverageProblems,
		LocationScore:     a.locationProblems,
		DetectionScore:    a.detectionProblems,
	}
	for i := range a.singles {
		st.CoverageScore += a.singles[i].cIssues
		st.LocationScore += a.singles[i].lIssues
		st.DetectionScore += a.singles[i].dIssues
	}
	return st
}

// String renders the committed rows as a tab-separated row-per-line dump.
func (a *Array) String() string {
	return domain.FormatRows(a.rows)
}
