package array

import "strconv"

// The engine keeps one arena per entity kind and cross-references entities by
// index into those arenas. Fingerprint strings identify entities for lookup
// when recovering interactions from a concrete row.

// single represents one (factor, value) pair together with its bookkeeping:
// the rows it appears in and the outstanding issue counters for each of the
// three properties. Issue counters are signed because the location and
// detection updates run paired increments and decrements that may transiently
// dip below zero.
type single struct {
	factor int
	value  int

	rows map[int]struct{}

	cIssues int64
	lIssues int64
	dIssues int64
}

// singleKey returns the fingerprint of a (factor, value) pair, e.g. "f2,0".
func singleKey(factor, value int) string {
	return "f" + strconv.Itoa(factor) + "," + strconv.Itoa(value)
}

func (s *single) key() string { return singleKey(s.factor, s.value) }

// factor is one column of the array: its index and the IDs of its singles,
// indexed by level value.
type factor struct {
	index   int
	levels  int
	singles []int
}

// interaction is a t-way combination of singles from t distinct factors,
// listed in ascending factor order.
type interaction struct {
	id      int
	singles []int

	// rows is the intersection of the member singles' row sets.
	rows map[int]struct{}

	covered    bool
	detectable bool

	// sets holds the IDs of every d-set this interaction belongs to.
	sets map[int]struct{}

	// deltas maps each d-set NOT containing this interaction to the
	// separation margin |rows(interaction) \ rows(set)|. The margins are kept
	// current only while the interaction is not yet detectable; after that
	// they are no longer updated and may fall behind the true margins.
	deltas map[int]int64
}

// tSet is an unordered set of d distinct interactions.
type tSet struct {
	id      int
	members []int

	// singles flattens the member interactions' singles, keeping
	// multiplicity: a single shared by two members appears twice, and issue
	// accounting visits it twice.
	singles []int

	// rows is the union of the member interactions' row sets.
	rows map[int]struct{}

	locatable bool

	// conflicts holds the IDs of other d-sets whose row sets are currently
	// identical to this one's. The relation is kept symmetric.
	conflicts map[int]struct{}
}

// dontCare tracks, per factor, which properties are already fully solved for
// every value of that factor. Once a factor's tag reaches the array's target
// phase, row initializers assign that factor freely.
type dontCare int

const (
	dcNone             dontCare = iota // nothing solved yet for this factor
	dcCoverage                         // all coverage issues solved
	dcCoverageLocation                 // coverage and location issues solved
	dcAll                              // detection issues solved too
)
