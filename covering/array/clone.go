package array

import "math/rand"

// Clone produces an isolated deep copy: identical topology and counter state,
// no shared mutable state with the receiver. IDs are stable across the copy
// because enumeration order is deterministic, so entity references carry over
// unchanged. The clone runs silent and owns its own random generator, which
// makes Clone safe to call concurrently from look-ahead scoring goroutines.
func (a *Array) Clone() *Array {
	c := &Array{
		cfg:  a.cfg,
		seed: a.seed,
		rng:  rand.New(rand.NewSource(a.seed)),

		factors:      append([]factor(nil), a.factors...),
		singles:      append([]single(nil), a.singles...),
		interactions: append([]interaction(nil), a.interactions...),
		sets:         append([]tSet(nil), a.sets...),

		// Fingerprint maps are write-once during construction; sharing them
		// is safe and keeps clones cheap.
		interactionIDs: a.interactionIDs,
		setIDs:         a.setIDs,

		rows:     make([][]int, len(a.rows)),
		numTests: a.numTests,

		totalProblems:     a.totalProblems,
		coverageProblems:  a.coverageProblems,
		locationProblems:  a.locationProblems,
		detectionProblems: a.detectionProblems,
		score:             a.score,

		covering:  a.covering,
		locating:  a.locating,
		detecting: a.detecting,

		dontCares:   append([]dontCare(nil), a.dontCares...),
		permutation: append([]int(nil), a.permutation...),
	}

	// The shallow struct copies above still alias the per-entity maps and
	// slices; replace each with its own copy.
	for i := range c.factors {
		c.factors[i].singles = append([]int(nil), a.factors[i].singles...)
	}
	for i := range c.singles {
		c.singles[i].rows = copyIntSet(a.singles[i].rows)
	}
	for i := range c.interactions {
		src := &a.interactions[i]
		dst := &c.interactions[i]
		dst.singles = append([]int(nil), src.singles...)
		dst.rows = copyIntSet(src.rows)
		dst.sets = copyIntSet(src.sets)
		dst.deltas = copyInt64Map(src.deltas)
	}
	for i := range c.sets {
		src := &a.sets[i]
		dst := &c.sets[i]
		dst.members = append([]int(nil), src.members...)
		dst.singles = append([]int(nil), src.singles...)
		dst.rows = copyIntSet(src.rows)
		dst.conflicts = copyIntSet(src.conflicts)
	}
	for i, row := range a.rows {
		c.rows[i] = append([]int(nil), row...)
	}

	return c
}

func copyIntSet(src map[int]struct{}) map[int]struct{} {
	dst := make(map[int]struct{}, len(src))
	for k := range src {
		dst[k] = struct{}{}
	}
	return dst
}

func copyInt64Map(src map[int]int64) map[int]int64 {
	if src == nil {
		return nil
	}
	dst := make(map[int]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
