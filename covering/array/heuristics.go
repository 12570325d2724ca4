package array

import (
	"math"
	"sync"

	"github.com/example/arraygen/covering/domain"
)

// Heuristic selects how AddRow initializes and tweaks the next candidate row.
// The driver picks one per row based on which kinds of problems remain.
type Heuristic int

const (
	// HeuristicCoverage initializes from the neediest singles and tweaks for
	// coverage only. Cheap; meant for early construction.
	HeuristicCoverage Heuristic = iota

	// HeuristicLocation locks the d-set with the most location conflicts
	// into the row and aligns the remaining factors with conflicting sets.
	HeuristicLocation

	// HeuristicDetection is reserved: a dedicated detection initializer and
	// tweak are future work, so it currently produces a random row.
	HeuristicDetection

	// HeuristicExhaustive scores every possible row by simulated commit on a
	// clone and keeps the best. Exponential in the number of factors; meant
	// only for the final few rows.
	HeuristicExhaustive
)

// String returns the label used in reports and metrics.
func (h Heuristic) String() string {
	switch h {
	case HeuristicCoverage:
		return "coverage"
	case HeuristicLocation:
		return "location"
	case HeuristicDetection:
		return "detection"
	case HeuristicExhaustive:
		return "exhaustive"
	}
	return "unknown"
}

// AddRow constructs one row under the given heuristic and commits it. The
// column permutation is reshuffled first so that tie-breaks and tweak order
// vary between rows.
func (a *Array) AddRow(h Heuristic) error {
	a.rng.Shuffle(len(a.permutation), func(i, j int) {
		a.permutation[i], a.permutation[j] = a.permutation[j], a.permutation[i]
	})

	var row []int
	switch h {
	case HeuristicCoverage:
		row = a.initRowSingles()
		a.tweakCoverage(row)
	case HeuristicLocation:
		var locked int
		row, locked = a.initRowSets()
		a.tweakLocation(row, locked)
	case HeuristicExhaustive:
		row = a.randomRow()
		if err := a.tweakExhaustive(row); err != nil {
			return err
		}
	default:
		row = a.randomRow()
	}

	return a.update(row, a.rowInteractions(row), true)
}

// initRowSingles greedily assigns each factor, in permuted order, the value
// whose single carries the most outstanding issues, weighting detection
// three-fold. Factors whose issues are fully solved for the target phase are
// assigned at random instead.
func (a *Array) initRowSingles() []int {
	row := make([]int, len(a.factors))
	for _, col := range a.permutation {
		f := &a.factors[col]
		if a.factorSolved(col) {
			row[col] = a.rng.Intn(f.levels)
			continue
		}

		worst := &a.singles[f.singles[0]]
		worstScore := worst.cIssues + worst.lIssues + 3*worst.dIssues
		for v := 1; v < f.levels; v++ {
			cur := &a.singles[f.singles[v]]
			curScore := cur.cIssues + cur.lIssues + 3*cur.dIssues
			if curScore > worstScore || (curScore == worstScore && a.rng.Intn(2) == 0) {
				worst, worstScore = cur, curScore
			}
		}
		row[col] = worst.value

		a.advanceDontCare(col, worst)
		if a.factorSolved(col) {
			row[col] = a.rng.Intn(f.levels)
		}
	}
	return row
}

// factorSolved reports whether the factor's don't-care tag has reached the
// array's target phase.
func (a *Array) factorSolved(col int) bool {
	switch a.cfg.Phase {
	case domain.PhaseCoverage:
		return a.dontCares[col] == dcCoverage
	case domain.PhaseLocation:
		return a.dontCares[col] == dcCoverageLocation
	case domain.PhaseDetection:
		return a.dontCares[col] == dcAll
	}
	return false
}

// advanceDontCare progresses the factor's tag when even its worst single has
// no issues left for the next property in line.
func (a *Array) advanceDontCare(col int, worst *single) {
	if a.dontCares[col] == dcNone && worst.cIssues == 0 {
		a.dontCares[col] = dcCoverage
	}
	if a.cfg.Phase != domain.PhaseCoverage && a.dontCares[col] == dcCoverage && worst.lIssues == 0 {
		a.dontCares[col] = dcCoverageLocation
	}
	if a.cfg.Phase == domain.PhaseDetection && a.dontCares[col] == dcCoverageLocation && worst.dIssues == 0 {
		a.dontCares[col] = dcAll
	}
}

// initRowSets starts from a random row and locks in the singles of the d-set
// with the most location conflicts. Ties are broken uniformly. Returns the
// row and the locked set's ID so the tweak can avoid the locked factors.
func (a *Array) initRowSets() ([]int, int) {
	row := a.randomRow()

	worstCount := -1
	var worstSets []int
	for i := range a.sets {
		n := len(a.sets[i].conflicts)
		if n >= worstCount {
			if n > worstCount {
				worstCount = n
				worstSets = worstSets[:0]
			}
			worstSets = append(worstSets, i)
		}
	}

	locked := worstSets[a.rng.Intn(len(worstSets))]
	for _, sID := range a.sets[locked].singles {
		s := &a.singles[sID]
		row[s.factor] = s.value
	}
	return row, locked
}

// tweakCoverage classifies each interaction in the row as already-covered
// (counting against its factors) or not-yet-covered (counting for them),
// then tries to improve the worst factor by cycling its value; as a last
// resort it sweeps unfinished factors for any value exposing an uncovered
// interaction.
func (a *Array) tweakCoverage(row []int) {
	problems := make([]int64, len(a.factors))
	local := append([]dontCare(nil), a.dontCares...)

	for _, iID := range a.rowInteractions(row) {
		inter := &a.interactions[iID]
		if len(inter.rows) != 0 {
			// Already covered: charge the factors involved, unless one of
			// them is past caring about coverage.
			skip := false
			for _, sID := range inter.singles {
				if local[a.singles[sID].factor] != dcNone {
					skip = true
					break
				}
			}
			if skip {
				continue
			}
			for _, sID := range inter.singles {
				problems[a.singles[sID].factor]++
			}
		} else {
			for _, sID := range inter.singles {
				problems[a.singles[sID].factor]--
			}
		}
	}

	var maxProblems int64
	for col := range a.factors {
		if problems[col] > maxProblems {
			maxProblems = problems[col]
		}
	}
	if maxProblems == 0 {
		return // row is good enough as is
	}

	for _, col := range a.permutation {
		if problems[col] != maxProblems {
			continue
		}
		orig := row[col]
		for i := 1; i < a.factors[col].levels; i++ {
			row[col] = (row[col] + 1) % a.factors[col].levels
			if a.coverageCeiling(row) < maxProblems {
				return // strict improvement, keep the change
			}
		}
		row[col] = orig
	}

	for _, col := range a.permutation {
		if local[col] != dcNone {
			continue
		}
		improved := false
		for i := 0; i < a.factors[col].levels; i++ {
			row[col] = (row[col] + 1) % a.factors[col].levels
			improved = false
			for _, iID := range a.rowInteractions(row) {
				inter := &a.interactions[iID]
				if len(inter.rows) == 0 {
					for _, sID := range inter.singles {
						local[a.singles[sID].factor] = dcCoverage
					}
					improved = true
				}
			}
			if improved {
				break
			}
		}
		if !improved {
			row[col] = a.rng.Intn(a.factors[col].levels)
		}
	}
}

// coverageCeiling recomputes the per-factor problem counts for a trial row
// and returns the worst count among factors that still have coverage issues.
func (a *Array) coverageCeiling(row []int) int64 {
	problems := make([]int64, len(a.factors))
	for _, iID := range a.rowInteractions(row) {
		inter := &a.interactions[iID]
		if len(inter.rows) != 0 {
			skip := false
			for _, sID := range inter.singles {
				if a.singles[sID].cIssues == 0 {
					skip = true
					break
				}
			}
			if skip {
				continue
			}
			for _, sID := range inter.singles {
				problems[a.singles[sID].factor]++
			}
		} else {
			for _, sID := range inter.singles {
				problems[a.singles[sID].factor]--
			}
		}
	}

	worst := int64(math.MinInt64)
	for col := range a.factors {
		if a.singles[a.factors[col].singles[row[col]]].cIssues == 0 {
			continue
		}
		if problems[col] > worst {
			worst = problems[col]
		}
	}
	return worst
}

// tweakLocation scores every single by how many of the locked set's conflict
// partners it appears in, then sets each unlocked factor to its
// highest-scoring value. Factors with no conflicting single keep their random
// assignment.
func (a *Array) tweakLocation(row []int, lockedID int) {
	locked := &a.sets[lockedID]

	lockedFactors := make([]bool, len(a.factors))
	for _, sID := range locked.singles {
		lockedFactors[a.singles[sID].factor] = true
	}

	scores := make([]int64, len(a.singles))
	for conflictID := range locked.conflicts {
		for _, sID := range a.sets[conflictID].singles {
			scores[sID]++
		}
	}

	for col := range a.factors {
		if lockedFactors[col] {
			continue
		}
		bestVal := 0
		var bestScore int64
		for v := 0; v < a.factors[col].levels; v++ {
			if sc := scores[a.factors[col].singles[v]]; sc > bestScore {
				bestVal, bestScore = v, sc
			}
		}
		if bestScore != 0 {
			row[col] = bestVal
		}
	}
}

// tweakExhaustive scores every candidate row by simulated commit on a clone
// and replaces row with the best scorer. Candidate scoring fans out across
// goroutines; the shared scores map is mutex-guarded.
func (a *Array) tweakExhaustive(row []int) error {
	candidates := a.enumerateCandidates(row)

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		scores   = make(map[int]int64, len(candidates))
		scoreErr error
	)
	for idx, cand := range candidates {
		wg.Add(1)
		go func(idx int, cand []int) {
			defer wg.Done()
			score, err := a.scoreCandidate(cand)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if scoreErr == nil {
					scoreErr = err
				}
				return
			}
			scores[idx] = score
		}(idx, cand)
	}
	wg.Wait()
	if scoreErr != nil {
		return scoreErr
	}

	best := int64(math.MinInt64)
	var bestIdx []int
	for idx := range candidates {
		if sc := scores[idx]; sc >= best {
			if sc > best {
				best = sc
				bestIdx = bestIdx[:0]
			}
			bestIdx = append(bestIdx, idx)
		}
	}
	copy(row, candidates[bestIdx[a.rng.Intn(len(bestIdx))]])
	return nil
}

// enumerateCandidates produces the full cartesian product of levels over all
// factors in permuted order, cycling values from the seed row's assignment
// for variety.
func (a *Array) enumerateCandidates(row []int) [][]int {
	var out [][]int
	work := append([]int(nil), row...)
	var walk func(depth int)
	walk = func(depth int) {
		if depth == len(a.factors) {
			out = append(out, append([]int(nil), work...))
			return
		}
		col := a.permutation[depth]
		orig := work[col]
		for offset := 0; offset < a.factors[col].levels; offset++ {
			work[col] = (orig + offset) % a.factors[col].levels
			walk(depth + 1)
		}
		work[col] = orig
	}
	walk(0)
	return out
}

// scoreCandidate commits the candidate on a clone with keep=false and scores
// the signed per-single counter deltas, weighted by the factor's level count
// and by property (coverage 1, location 2, detection 3).
func (a *Array) scoreCandidate(cand []int) (int64, error) {
	clone := a.Clone()
	if err := clone.update(cand, clone.rowInteractions(cand), false); err != nil {
		return 0, err
	}

	var rowScore int64
	for i := range a.singles {
		orig := &a.singles[i]
		after := &clone.singles[i]
		weight := int64(a.factors[orig.factor].levels)
		rowScore += weight * (orig.cIssues - after.cIssues)
		rowScore += 2 * weight * (orig.lIssues - after.lIssues)
		rowScore += 3 * weight * (orig.dIssues - after.dIssues)
	}
	return rowScore, nil
}
