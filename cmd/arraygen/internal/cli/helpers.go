package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/arraygen/covering/domain"
	"github.com/example/arraygen/internal/storage/sqlite"
)

// parseFactors converts a comma-separated level list like "2,2,3" into the
// per-factor level counts.
func parseFactors(arg string) ([]int, error) {
	if strings.TrimSpace(arg) == "" {
		return nil, fmt.Errorf("%w: no factors given (use --factors, e.g. --factors 2,2,3)",
			domain.ErrInvalidConfig)
	}
	parts := strings.Split(arg, ",")
	levels := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w: factor %d: %q is not a level count", domain.ErrInvalidConfig, i, p)
		}
		levels[i] = v
	}
	return levels, nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".arraygen.db"
	}
	return filepath.Join(home, ".arraygen", "runs.db")
}

// openStore opens (and migrates) the run database at the --db path.
func openStore(ctx context.Context) (*sqlite.Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	store, err := sqlite.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening run database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrating run database: %w", err)
	}
	return store, nil
}
