package array

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/example/arraygen/covering/domain"
)

// rowInteractions recovers the IDs of the C(numFactors, t) interactions
// present in the given row by rebuilding each combination's fingerprint and
// looking it up. Called on every commit and, repeatedly, during look-ahead
// scoring.
func (a *Array) rowInteractions(row []int) []int {
	ids := make([]int, 0, binomialCapped(len(a.factors), a.cfg.Strength, 1<<30))
	var walk func(start, tRemaining int, key string)
	walk = func(start, tRemaining int, key string) {
		if tRemaining == 0 {
			ids = append(ids, a.interactionIDs[key])
			return
		}
		for col := start; col <= len(a.factors)-tRemaining; col++ {
			walk(col+1, tRemaining-1, key+"f"+strconv.Itoa(col)+","+strconv.Itoa(row[col]))
		}
	}
	walk(0, a.cfg.Strength, "")
	return ids
}

// AddRandomRow appends a uniformly random row, updating all counters but
// applying no scoring or tweaking. It seeds the very first row so that the
// heuristics in AddRow have state to work against.
func (a *Array) AddRandomRow() error {
	row := a.randomRow()
	return a.update(row, a.rowInteractions(row), true)
}

// randomRow builds a row with a uniform random level for every factor.
func (a *Array) randomRow() []int {
	row := make([]int, len(a.factors))
	for i := range a.factors {
		row[i] = a.rng.Intn(a.factors[i].levels)
	}
	return row
}

// update appends row and walks every affected entity, adjusting membership
// sets, per-single issue counters, and the global problem counters in the
// order required to keep the score identity intact.
//
// With keep=false all counter updates still happen, but the row-membership
// mutations are rolled back at the end: the committed row list and numTests
// come out unchanged while counters advance exactly as if the row had been
// kept. Look-ahead scoring relies on this to rank candidate rows by the
// signed counter change observed on a clone.
func (a *Array) update(row []int, rowInts []int, keep bool) error {
	rowIdx := a.numTests
	a.rows = append(a.rows, row)
	a.numTests++
	if keep && a.logf != nil {
		a.logf("pushed row %v", row)
	}

	// Membership first: the new row joins every single, interaction, and
	// d-set it touches. rowSets collects the d-sets present in this row.
	rowSets := make(map[int]struct{})
	for _, iID := range rowInts {
		inter := &a.interactions[iID]
		for _, sID := range inter.singles {
			a.singles[sID].rows[rowIdx] = struct{}{}
		}
		inter.rows[rowIdx] = struct{}{}
		for tID := range inter.sets {
			a.sets[tID].rows[rowIdx] = struct{}{}
			rowSets[tID] = struct{}{}
		}
	}

	// Coverage and detection hang off interactions.
	for _, iID := range rowInts {
		inter := &a.interactions[iID]

		if !inter.covered {
			inter.covered = true
			for _, sID := range inter.singles {
				a.singles[sID].cIssues--
				a.score--
			}
			a.score--
			a.coverageProblems--
			if a.coverageProblems == 0 {
				a.covering = true
			}
		}

		if a.cfg.Phase == domain.PhaseDetection && !inter.detectable {
			a.updateDetection(inter, rowSets)
		}
	}

	// Location hangs off d-sets.
	if a.cfg.Phase != domain.PhaseCoverage && !a.locating {
		if err := a.updateLocation(rowSets); err != nil {
			return err
		}
	}

	if !keep {
		for _, iID := range rowInts {
			inter := &a.interactions[iID]
			for _, sID := range inter.singles {
				delete(a.singles[sID].rows, rowIdx)
			}
			delete(inter.rows, rowIdx)
		}
		for tID := range rowSets {
			delete(a.sets[tID].rows, rowIdx)
		}
		a.numTests--
		a.rows = a.rows[:len(a.rows)-1]
	}
	return nil
}

// updateDetection advances the separation margins of one not-yet-detectable
// interaction after a row containing it was appended. Every d-set in the row
// that does not contain the interaction first takes a paired pre-decrement so
// that the blanket increment below nets out to zero for it; the paired
// adjustments around the singles' d_issues keep those counters equal to the
// number of still-deficient (set, margin) pairs.
func (a *Array) updateDetection(inter *interaction, rowSets map[int]struct{}) {
	separation := int64(a.cfg.Separation)
	inter.detectable = true // cleared below if any margin is still short

	for tID := range rowSets {
		if _, member := inter.sets[tID]; member {
			continue
		}
		if inter.deltas[tID] <= separation {
			for _, sID := range inter.singles {
				a.singles[sID].dIssues++
				a.score++
			}
		}
		inter.deltas[tID]--
	}
	for tID, delta := range inter.deltas {
		delta++
		inter.deltas[tID] = delta
		if delta < separation {
			inter.detectable = false
		}
		if delta <= separation {
			for _, sID := range inter.singles {
				a.singles[sID].dIssues--
				a.score--
			}
		}
	}
	if inter.detectable {
		a.score--
		a.detectionProblems--
		if a.detectionProblems == 0 {
			a.detecting = true
		}
	}
}

// updateLocation reconciles the location-conflict graph against the d-sets
// present in the new row. Sets appearing for the first time acquire conflicts
// with every other first-time set in the row; sets seen before shed every
// conflict partner that is absent from the row, since this row now tells the
// two apart. Conflict removal is symmetric; asymmetry means the bookkeeping
// is corrupt and surfaces as ErrInvariant.
func (a *Array) updateLocation(rowSets map[int]struct{}) error {
	nSets := int64(len(a.sets))

	// Deterministic processing order keeps runs reproducible for a seed.
	ordered := make([]int, 0, len(rowSets))
	for tID := range rowSets {
		ordered = append(ordered, tID)
	}
	sort.Ints(ordered)

	for _, tID := range ordered {
		set := &a.sets[tID]
		if set.locatable {
			continue
		}
		if len(set.rows) == 1 {
			// First appearance: the set's whole location budget retires, then
			// conflicts with the other first-time sets in this row reopen a
			// problem per single each.
			for _, sID := range set.singles {
				a.singles[sID].lIssues -= nSets
				a.score -= nSets
			}
			for _, otherID := range ordered {
				if otherID == tID || len(a.sets[otherID].rows) > 1 {
					continue
				}
				set.conflicts[otherID] = struct{}{}
				for _, sID := range set.singles {
					a.singles[sID].lIssues++
					a.score++
				}
			}
		} else {
			var solved int64
			for otherID := range set.conflicts {
				if _, inRow := rowSets[otherID]; inRow {
					continue
				}
				// This row contains set but not other, so the two are now
				// distinguishable.
				delete(set.conflicts, otherID)
				solved++
				other := &a.sets[otherID]
				if _, ok := other.conflicts[tID]; !ok {
					return fmt.Errorf("%w: conflict between sets %d and %d is not symmetric",
						domain.ErrInvariant, tID, otherID)
				}
				delete(other.conflicts, tID)
				for _, sID := range other.singles {
					a.singles[sID].lIssues--
					a.score--
				}
				if len(other.conflicts) == 0 {
					other.locatable = true
					a.score--
					a.locationProblems--
					if a.locationProblems == 0 {
						return fmt.Errorf("%w: location problems exhausted while set %d is still unlocatable",
							domain.ErrInvariant, tID)
					}
				}
			}
			for _, sID := range set.singles {
				a.singles[sID].lIssues -= solved
				a.score -= solved
			}
		}
		if len(set.conflicts) == 0 {
			set.locatable = true
			a.score--
			a.locationProblems--
			if a.locationProblems == 0 {
				a.locating = true
			}
		}
	}
	return nil
}
