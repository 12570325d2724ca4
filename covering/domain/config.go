package domain

import "fmt"

// Config holds the parameters of one array generation run.
type Config struct {
	// Levels gives the number of levels of each factor, in factor order.
	// Every factor needs at least 2 levels.
	Levels []int

	// Strength is the interaction strength t: the number of factors that
	// participate in each interaction. Must satisfy 1 <= t <= len(Levels).
	// Default: 2
	Strength int

	// SetSize is the d-set magnitude d: how many interactions make up each
	// set considered for location and detection. Must be >= 1.
	// Default: 1
	SetSize int

	// Separation is the detection margin δ: the number of rows by which an
	// interaction's row set must exceed any disjoint d-set's row set.
	// Only meaningful for PhaseDetection. Must be >= 0.
	// Default: 1
	Separation int

	// Phase is the strongest property the finished array must satisfy.
	// Default: PhaseCoverage
	Phase Phase

	// RandomSeed seeds the per-array generator.
	// Use 0 for a random seed, or a specific value for reproducibility.
	// Default: 0
	RandomSeed int64

	// MaxRows aborts generation once the array reaches this many rows
	// without solving all problems. 0 means no bound.
	MaxRows int

	// ExhaustiveLimit caps the number of candidate rows (the product of all
	// factor levels) for which the exhaustive look-ahead heuristic may be
	// used. Above the cap the driver falls back to cheaper heuristics.
	// Default: 4096
	ExhaustiveLimit int

	// EndgameScore is the score at or below which the driver switches to the
	// exhaustive look-ahead heuristic for the final rows.
	// Default: 32
	EndgameScore int

	// MaxInteractions bounds how many t-way interactions construction may
	// enumerate before giving up with ErrTooLarge.
	// Default: 1 << 20
	MaxInteractions int

	// MaxSets bounds how many d-sets construction may enumerate before
	// giving up with ErrTooLarge.
	// Default: 1 << 20
	MaxSets int
}

// DefaultConfig returns the default configuration for a pairwise covering
// array; Levels must still be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		Strength:        2,
		SetSize:         1,
		Separation:      1,
		Phase:           PhaseCoverage,
		ExhaustiveLimit: 4096,
		EndgameScore:    32,
		MaxInteractions: 1 << 20,
		MaxSets:         1 << 20,
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if len(c.Levels) < 1 {
		return fmt.Errorf("%w: need at least 1 factor", ErrInvalidConfig)
	}
	for i, l := range c.Levels {
		if l < 2 {
			return fmt.Errorf("%w: factor %d has %d levels, need at least 2", ErrInvalidConfig, i, l)
		}
	}
	if c.Strength < 1 || c.Strength > len(c.Levels) {
		return fmt.Errorf("%w: strength must be between 1 and %d, got %d",
			ErrInvalidConfig, len(c.Levels), c.Strength)
	}
	if c.SetSize < 1 {
		return fmt.Errorf("%w: set size must be at least 1, got %d", ErrInvalidConfig, c.SetSize)
	}
	if c.Separation < 0 {
		return fmt.Errorf("%w: separation must be non-negative, got %d", ErrInvalidConfig, c.Separation)
	}
	if c.Phase < PhaseCoverage || c.Phase > PhaseDetection {
		return fmt.Errorf("%w: unknown phase %d", ErrInvalidConfig, int(c.Phase))
	}
	if c.MaxRows < 0 {
		return fmt.Errorf("%w: max rows must be non-negative, got %d", ErrInvalidConfig, c.MaxRows)
	}
	return nil
}

// WithDefaults returns a new config with defaults applied for zero values.
func (c Config) WithDefaults() Config {
	defaults := DefaultConfig()
	if c.Strength == 0 {
		c.Strength = defaults.Strength
	}
	if c.SetSize == 0 {
		c.SetSize = defaults.SetSize
	}
	if c.ExhaustiveLimit == 0 {
		c.ExhaustiveLimit = defaults.ExhaustiveLimit
	}
	if c.EndgameScore == 0 {
		c.EndgameScore = defaults.EndgameScore
	}
	if c.MaxInteractions == 0 {
		c.MaxInteractions = defaults.MaxInteractions
	}
	if c.MaxSets == 0 {
		c.MaxSets = defaults.MaxSets
	}
	return c
}

// NumFactors returns the number of factors.
func (c *Config) NumFactors() int { return len(c.Levels) }

// CandidateSpace returns the product of all factor levels, saturating at
// limit+1 so callers can compare against a cap without overflow.
func (c *Config) CandidateSpace(limit int) int {
	product := 1
	for _, l := range c.Levels {
		product *= l
		if product > limit {
			return limit + 1
		}
	}
	return product
}
