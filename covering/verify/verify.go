// Package verify audits a finished array against the properties its
// configuration promises. It recomputes everything from the raw rows rather
// than trusting engine bookkeeping, so it doubles as an oracle for the
// generator's end-to-end tests.
package verify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/example/arraygen/covering/domain"
)

// Assignment is one (factor, value) cell of an interaction.
type Assignment struct {
	Factor int
	Value  int
}

// Interaction is a t-way combination of assignments on distinct factors, in
// ascending factor order.
type Interaction []Assignment

// String renders the interaction like {(f0,1), (f2,0)}.
func (in Interaction) String() string {
	parts := make([]string, len(in))
	for i, a := range in {
		parts[i] = fmt.Sprintf("(f%d,%d)", a.Factor, a.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// MissingInteraction reports a t-way interaction absent from every row.
type MissingInteraction struct {
	Interaction Interaction
}

// IndistinguishableSets reports two distinct d-sets that appear in exactly
// the same rows.
type IndistinguishableSets struct {
	A, B []Interaction
	Rows []int
}

// ThinSeparation reports an interaction whose row set exceeds a disjoint
// d-set's row set by fewer than the required separation rows.
type ThinSeparation struct {
	Interaction Interaction
	Set         []Interaction
	Margin      int
}

// Report collects every violation found in one audit.
type Report struct {
	Missing           []MissingInteraction
	Indistinguishable []IndistinguishableSets
	Thin              []ThinSeparation
}

// OK reports whether the audit found no violations.
func (r *Report) OK() bool {
	return len(r.Missing) == 0 && len(r.Indistinguishable) == 0 && len(r.Thin) == 0
}

// Summary renders a one-line outcome for console output.
func (r *Report) Summary() string {
	if r.OK() {
		return "all properties hold"
	}
	return fmt.Sprintf("%d missing interactions, %d indistinguishable set pairs, %d thin separations",
		len(r.Missing), len(r.Indistinguishable), len(r.Thin))
}

// Audit checks rows against every property cfg's phase requires. The rows
// must match cfg's factor structure.
func Audit(cfg domain.Config, rows [][]int) (*Report, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != len(cfg.Levels) {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d",
				domain.ErrRowMismatch, i, len(row), len(cfg.Levels))
		}
		for col, v := range row {
			if v < 0 || v >= cfg.Levels[col] {
				return nil, fmt.Errorf("%w: row %d column %d: level %d out of range [0,%d)",
					domain.ErrRowMismatch, i, col, v, cfg.Levels[col])
			}
		}
	}

	interactions, rowSets := enumerateInteractions(cfg, rows)
	if len(interactions) > cfg.MaxInteractions {
		return nil, fmt.Errorf("%w: %d interactions exceed the limit of %d",
			domain.ErrTooLarge, len(interactions), cfg.MaxInteractions)
	}

	report := &Report{}
	for i, in := range interactions {
		if len(rowSets[i]) == 0 {
			report.Missing = append(report.Missing, MissingInteraction{Interaction: in})
		}
	}
	if cfg.Phase == domain.PhaseCoverage {
		return report, nil
	}

	sets := enumerateSets(len(interactions), cfg.SetSize)
	if len(sets) > cfg.MaxSets {
		return nil, fmt.Errorf("%w: %d interaction sets exceed the limit of %d",
			domain.ErrTooLarge, len(sets), cfg.MaxSets)
	}
	setRows := make([]map[int]struct{}, len(sets))
	for si, members := range sets {
		union := make(map[int]struct{})
		for _, ii := range members {
			for k := range rowSets[ii] {
				union[k] = struct{}{}
			}
		}
		setRows[si] = union
	}

	// Group sets by row-set fingerprint; any group of two or more is a
	// location violation.
	byRows := make(map[string][]int)
	for si := range sets {
		byRows[rowsKey(setRows[si])] = append(byRows[rowsKey(setRows[si])], si)
	}
	var groups [][]int
	for _, group := range byRows {
		if len(group) > 1 {
			groups = append(groups, group)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
	for _, group := range groups {
		for x := 0; x < len(group); x++ {
			for y := x + 1; y < len(group); y++ {
				report.Indistinguishable = append(report.Indistinguishable, IndistinguishableSets{
					A:    setInteractions(interactions, sets[group[x]]),
					B:    setInteractions(interactions, sets[group[y]]),
					Rows: sortedRows(setRows[group[x]]),
				})
			}
		}
	}
	if cfg.Phase != domain.PhaseDetection {
		return report, nil
	}

	for ii, in := range interactions {
		for si, members := range sets {
			if containsInteraction(members, ii) {
				continue
			}
			margin := 0
			for k := range rowSets[ii] {
				if _, ok := setRows[si][k]; !ok {
					margin++
				}
			}
			if margin < cfg.Separation {
				report.Thin = append(report.Thin, ThinSeparation{
					Interaction: in,
					Set:         setInteractions(interactions, sets[si]),
					Margin:      margin,
				})
			}
		}
	}
	return report, nil
}

// enumerateInteractions lists every t-way interaction in ascending factor
// order along with the set of rows containing it.
func enumerateInteractions(cfg domain.Config, rows [][]int) ([]Interaction, []map[int]struct{}) {
	var interactions []Interaction
	var rowSets []map[int]struct{}

	var walk func(start int, tRemaining int, stack Interaction)
	walk = func(start, tRemaining int, stack Interaction) {
		if tRemaining == 0 {
			in := append(Interaction(nil), stack...)
			present := make(map[int]struct{})
			for k, row := range rows {
				match := true
				for _, a := range in {
					if row[a.Factor] != a.Value {
						match = false
						break
					}
				}
				if match {
					present[k] = struct{}{}
				}
			}
			interactions = append(interactions, in)
			rowSets = append(rowSets, present)
			return
		}
		for col := start; col <= len(cfg.Levels)-tRemaining; col++ {
			for v := 0; v < cfg.Levels[col]; v++ {
				walk(col+1, tRemaining-1, append(stack, Assignment{Factor: col, Value: v}))
			}
		}
	}
	walk(0, cfg.Strength, nil)
	return interactions, rowSets
}

// enumerateSets lists every size-d combination of interaction indices.
func enumerateSets(n, d int) [][]int {
	var sets [][]int
	var walk func(start, dRemaining int, stack []int)
	walk = func(start, dRemaining int, stack []int) {
		if dRemaining == 0 {
			sets = append(sets, append([]int(nil), stack...))
			return
		}
		for i := start; i <= n-dRemaining; i++ {
			walk(i+1, dRemaining-1, append(stack, i))
		}
	}
	walk(0, d, nil)
	return sets
}

func setInteractions(interactions []Interaction, members []int) []Interaction {
	out := make([]Interaction, len(members))
	for i, ii := range members {
		out[i] = interactions[ii]
	}
	return out
}

func containsInteraction(members []int, ii int) bool {
	for _, m := range members {
		if m == ii {
			return true
		}
	}
	return false
}

func sortedRows(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func rowsKey(set map[int]struct{}) string {
	var b strings.Builder
	for _, k := range sortedRows(set) {
		fmt.Fprintf(&b, "%d,", k)
	}
	return b.String()
}
