package array

import (
	"testing"

	"github.com/example/arraygen/covering/domain"
)

func TestCoverageHeuristicBuildsPairwiseArray(t *testing.T) {
	// CA(2; 2,2,2): 12 coverage problems must reach zero within a handful of
	// rows under the coverage heuristic.
	a, err := New(coverageConfig([]int{2, 2, 2}, 2))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := a.AddRandomRow(); err != nil {
		t.Fatalf("AddRandomRow failed: %v", err)
	}
	for rows := 1; a.Score() > 0; rows++ {
		if rows > 20 {
			t.Fatalf("score still %d after %d rows", a.Score(), a.NumRows())
		}
		if err := a.AddRow(HeuristicCoverage); err != nil {
			t.Fatalf("AddRow failed: %v", err)
		}
		checkConsistency(t, a)
	}

	if !a.IsCovering() {
		t.Error("score is zero but the array is not marked covering")
	}
	for i := range a.interactions {
		if !a.interactions[i].covered {
			t.Errorf("interaction %d uncovered at score zero", i)
		}
	}
}

func TestStrengthOneCompletesInExactlyLevelsRows(t *testing.T) {
	// With t=1 and four levels per factor, the greedy single initializer
	// always picks a still-uncovered value, so the array completes in exactly
	// four rows.
	a, err := New(coverageConfig([]int{4, 4, 4, 4, 4}, 1))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := a.AddRandomRow(); err != nil {
		t.Fatalf("AddRandomRow failed: %v", err)
	}
	for a.Score() > 0 {
		if a.NumRows() > 4 {
			t.Fatalf("array took %d rows, want exactly 4", a.NumRows())
		}
		if err := a.AddRow(HeuristicCoverage); err != nil {
			t.Fatalf("AddRow failed: %v", err)
		}
	}
	if a.NumRows() != 4 {
		t.Errorf("array took %d rows, want exactly 4", a.NumRows())
	}
}

func TestExhaustiveEnumeratesFullProduct(t *testing.T) {
	a, err := New(coverageConfig([]int{2, 2, 2}, 2))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	candidates := a.enumerateCandidates([]int{0, 0, 0})
	if len(candidates) != 8 {
		t.Fatalf("enumerated %d candidates, want 8", len(candidates))
	}
	seen := make(map[string]bool)
	for _, cand := range candidates {
		seen[domain.FormatRows([][]int{cand})] = true
	}
	if len(seen) != 8 {
		t.Errorf("candidates contain duplicates: %d distinct of 8", len(seen))
	}
}

func TestExhaustiveHeuristicSolvesDetection(t *testing.T) {
	// Scenario: 2,2,2 at t=2, d=1, δ=1. At score zero every interaction must
	// clear one row of separation against every disjoint singleton set.
	cfg := domain.Config{
		Levels:     []int{2, 2, 2},
		Strength:   2,
		SetSize:    1,
		Separation: 1,
		Phase:      domain.PhaseDetection,
		RandomSeed: 17,
	}
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := a.AddRandomRow(); err != nil {
		t.Fatalf("AddRandomRow failed: %v", err)
	}
	for a.Score() > 0 {
		if a.NumRows() > 64 {
			t.Fatalf("score still %d after %d rows", a.Score(), a.NumRows())
		}
		h := HeuristicExhaustive
		if !a.IsCovering() {
			h = HeuristicCoverage
		}
		if err := a.AddRow(h); err != nil {
			t.Fatalf("AddRow failed: %v", err)
		}
		checkConsistency(t, a)
	}

	if !a.IsCovering() || !a.IsLocating() || !a.IsDetecting() {
		t.Fatalf("score zero but flags are covering=%v locating=%v detecting=%v",
			a.IsCovering(), a.IsLocating(), a.IsDetecting())
	}
	// Spell the detection property out against the raw rows.
	for i := range a.interactions {
		inter := &a.interactions[i]
		for ti := range a.sets {
			if _, member := inter.sets[ti]; member {
				continue
			}
			margin := 0
			for k := range inter.rows {
				if _, ok := a.sets[ti].rows[k]; !ok {
					margin++
				}
			}
			if margin < cfg.Separation {
				t.Errorf("interaction %d vs set %d: separation %d, want >= %d",
					i, ti, margin, cfg.Separation)
			}
		}
	}
}

func TestLocationHeuristicMakesProgress(t *testing.T) {
	cfg := domain.Config{
		Levels:     []int{2, 2, 2},
		Strength:   2,
		SetSize:    1,
		Phase:      domain.PhaseLocation,
		RandomSeed: 23,
	}
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := a.AddRandomRow(); err != nil {
		t.Fatalf("AddRandomRow failed: %v", err)
	}
	for a.Score() > 0 {
		if a.NumRows() > 64 {
			t.Fatalf("score still %d after %d rows", a.Score(), a.NumRows())
		}
		h := HeuristicLocation
		if !a.IsCovering() {
			h = HeuristicCoverage
		} else if a.Score() <= 8 {
			h = HeuristicExhaustive
		}
		if err := a.AddRow(h); err != nil {
			t.Fatalf("AddRow failed: %v", err)
		}
		checkConsistency(t, a)
	}

	// Location property spelled out: distinct sets never share an identical
	// row set.
	for i := range a.sets {
		for j := i + 1; j < len(a.sets); j++ {
			if len(a.sets[i].rows) != len(a.sets[j].rows) {
				continue
			}
			same := true
			for k := range a.sets[i].rows {
				if _, ok := a.sets[j].rows[k]; !ok {
					same = false
					break
				}
			}
			if same {
				t.Errorf("sets %d and %d share the same row set", i, j)
			}
		}
	}
}

func TestDontCareProgressionRandomizesSolvedFactors(t *testing.T) {
	a, err := New(coverageConfig([]int{2, 2, 2}, 1))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := a.AddRandomRow(); err != nil {
		t.Fatalf("AddRandomRow failed: %v", err)
	}
	for a.Score() > 0 && a.NumRows() < 8 {
		if err := a.AddRow(HeuristicCoverage); err != nil {
			t.Fatalf("AddRow failed: %v", err)
		}
	}
	if a.Score() != 0 {
		t.Fatalf("strength-1 array did not complete in 8 rows")
	}

	// One more initialization pass must now observe every factor as solved
	// and advance all tags to the coverage mark.
	a.initRowSingles()
	for col, dc := range a.dontCares {
		if dc != dcCoverage {
			t.Errorf("factor %d don't-care tag = %d, want %d", col, dc, dcCoverage)
		}
	}
}
