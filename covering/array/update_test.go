package array

import (
	"errors"
	"testing"

	"github.com/example/arraygen/covering/domain"
)

func TestInvariantsUnderRandomRows(t *testing.T) {
	// A prefix of random rows must keep every structural invariant intact,
	// for each phase.
	for _, phase := range []domain.Phase{domain.PhaseCoverage, domain.PhaseLocation, domain.PhaseDetection} {
		t.Run(phase.String(), func(t *testing.T) {
			cfg := domain.Config{
				Levels:     []int{3, 3, 2, 2},
				Strength:   2,
				SetSize:    1,
				Separation: 1,
				Phase:      phase,
				RandomSeed: 7,
			}
			a, err := New(cfg)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			for i := 0; i < 10; i++ {
				if err := a.AddRandomRow(); err != nil {
					t.Fatalf("AddRandomRow %d failed: %v", i, err)
				}
				checkConsistency(t, a)
			}
			if a.numTests != 10 {
				t.Errorf("numTests = %d, want 10", a.numTests)
			}
		})
	}
}

func TestInvariantsUnderHeuristicRows(t *testing.T) {
	cfg := domain.Config{
		Levels:     []int{3, 3, 2, 2},
		Strength:   2,
		SetSize:    2,
		Separation: 1,
		Phase:      domain.PhaseLocation,
		RandomSeed: 11,
	}
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := a.AddRandomRow(); err != nil {
		t.Fatalf("AddRandomRow failed: %v", err)
	}
	heuristics := []Heuristic{
		HeuristicCoverage, HeuristicCoverage, HeuristicLocation,
		HeuristicCoverage, HeuristicLocation, HeuristicDetection,
	}
	for i, h := range heuristics {
		if err := a.AddRow(h); err != nil {
			t.Fatalf("AddRow %d (%s) failed: %v", i, h, err)
		}
		checkConsistency(t, a)
	}
}

func TestLookAheadKeepsRowListIntact(t *testing.T) {
	cfg := domain.Config{
		Levels:     []int{2, 2, 2},
		Strength:   2,
		SetSize:    1,
		Separation: 1,
		Phase:      domain.PhaseDetection,
		RandomSeed: 3,
	}
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	seed := []int{0, 0, 0}
	if err := a.update(seed, a.rowInteractions(seed), true); err != nil {
		t.Fatalf("seed commit failed: %v", err)
	}

	// Committing the same candidate with keep=true on a clone and keep=false
	// on the original must advance counters identically; only membership and
	// the row list may differ.
	candidate := []int{0, 1, 1}
	committed := a.Clone()
	if err := committed.update(candidate, committed.rowInteractions(candidate), true); err != nil {
		t.Fatalf("committed update failed: %v", err)
	}
	if err := a.update(candidate, a.rowInteractions(candidate), false); err != nil {
		t.Fatalf("look-ahead update failed: %v", err)
	}

	if a.numTests != 1 {
		t.Errorf("numTests = %d, want 1 after keep=false", a.numTests)
	}
	if len(a.rows) != 1 {
		t.Errorf("rows = %d, want 1 after keep=false", len(a.rows))
	}
	if a.score != committed.score {
		t.Errorf("score = %d, committed clone has %d", a.score, committed.score)
	}
	if a.coverageProblems != committed.coverageProblems ||
		a.locationProblems != committed.locationProblems ||
		a.detectionProblems != committed.detectionProblems {
		t.Errorf("problem counters diverged: (%d,%d,%d) vs (%d,%d,%d)",
			a.coverageProblems, a.locationProblems, a.detectionProblems,
			committed.coverageProblems, committed.locationProblems, committed.detectionProblems)
	}
	for i := range a.singles {
		got, want := a.singles[i], committed.singles[i]
		if got.cIssues != want.cIssues || got.lIssues != want.lIssues || got.dIssues != want.dIssues {
			t.Errorf("single %s counters = (%d,%d,%d), committed clone has (%d,%d,%d)",
				got.key(), got.cIssues, got.lIssues, got.dIssues,
				want.cIssues, want.lIssues, want.dIssues)
		}
		// Membership rolled back: the candidate's row index must be gone.
		if _, ok := a.singles[i].rows[1]; ok {
			t.Errorf("single %s still holds rolled-back row 1", got.key())
		}
	}
}

func TestAsymmetricConflictIsInvariantError(t *testing.T) {
	cfg := domain.Config{
		Levels:     []int{2, 2, 2},
		Strength:   2,
		SetSize:    1,
		Phase:      domain.PhaseLocation,
		RandomSeed: 5,
	}
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	first := []int{0, 0, 0}
	if err := a.update(first, a.rowInteractions(first), true); err != nil {
		t.Fatalf("first commit failed: %v", err)
	}

	// The three pair-sets of row one are mutually conflicting. Break one
	// direction by hand; the next row that separates the pair must notice.
	t1 := a.setIDs["f0,0f1,0"]
	t2 := a.setIDs["f1,0f2,0"]
	if _, ok := a.sets[t1].conflicts[t2]; !ok {
		t.Fatalf("expected sets %d and %d to conflict after the first row", t1, t2)
	}
	delete(a.sets[t2].conflicts, t1)

	second := []int{0, 0, 1} // contains t1's interaction but not t2's
	err = a.update(second, a.rowInteractions(second), true)
	if !errors.Is(err, domain.ErrInvariant) {
		t.Fatalf("update error = %v, want ErrInvariant", err)
	}
}

func TestExhaustedLocationProblemsIsInvariantError(t *testing.T) {
	cfg := domain.Config{
		Levels:     []int{2, 2, 2},
		Strength:   2,
		SetSize:    1,
		Phase:      domain.PhaseLocation,
		RandomSeed: 5,
	}
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	first := []int{0, 0, 0}
	if err := a.update(first, a.rowInteractions(first), true); err != nil {
		t.Fatalf("first commit failed: %v", err)
	}

	// Leave t2 and t3 with t1 as their only conflict partner, then shrink the
	// location budget so whichever of them becomes locatable first drains it
	// to zero while t1 is still open mid-update.
	t1 := a.setIDs["f0,0f1,0"]
	t2 := a.setIDs["f1,0f2,0"]
	t3 := a.setIDs["f0,0f2,0"]
	delete(a.sets[t2].conflicts, t3)
	delete(a.sets[t3].conflicts, t2)
	if _, ok := a.sets[t2].conflicts[t1]; !ok {
		t.Fatalf("set %d should still conflict with %d", t2, t1)
	}
	a.locationProblems = 1

	second := []int{0, 0, 1} // contains t1's interaction but neither t2's nor t3's
	err = a.update(second, a.rowInteractions(second), true)
	if !errors.Is(err, domain.ErrInvariant) {
		t.Fatalf("update error = %v, want ErrInvariant", err)
	}
}
