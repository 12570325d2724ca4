package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/arraygen/covering/domain"
	"github.com/example/arraygen/internal/storage"
)

// Create persists a new run.
func (s *Store) Create(ctx context.Context, run *storage.Run) error {
	configJSON, err := json.Marshal(run.Config)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, config_json, seed, num_rows, score, array_text, duration_us, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, string(configJSON), run.Seed, run.NumRows, run.Score, run.ArrayText,
		run.Duration.Microseconds(), run.CreatedAt.UTC())
	return err
}

// Get retrieves a run by full ID, or by unique ID prefix.
func (s *Store) Get(ctx context.Context, runID string) (*storage.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, config_json, seed, num_rows, score, array_text, duration_us, created_at
		FROM runs WHERE id = ? OR id LIKE ? LIMIT 2
	`, runID, runID+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*storage.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: run %s", domain.ErrNotFound, runID)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: prefix %s is ambiguous", domain.ErrNotFound, runID)
	}
}

// List lists runs newest first.
func (s *Store) List(ctx context.Context, opts storage.ListOptions) ([]*storage.Run, error) {
	query := `
		SELECT id, config_json, seed, num_rows, score, array_text, duration_us, created_at
		FROM runs ORDER BY created_at DESC
	`
	args := []any{}
	if opts.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, opts.Limit, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*storage.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Delete deletes a run by ID.
func (s *Store) Delete(ctx context.Context, runID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: run %s", domain.ErrNotFound, runID)
	}
	return nil
}

func scanRun(rows *sql.Rows) (*storage.Run, error) {
	run := &storage.Run{}
	var configJSON string
	var durationUS int64
	var createdAt time.Time

	if err := rows.Scan(&run.ID, &configJSON, &run.Seed, &run.NumRows, &run.Score,
		&run.ArrayText, &durationUS, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(configJSON), &run.Config); err != nil {
		return nil, err
	}
	run.Duration = time.Duration(durationUS) * time.Microsecond
	run.CreatedAt = createdAt
	return run, nil
}
