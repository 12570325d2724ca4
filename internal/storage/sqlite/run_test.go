package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/arraygen/covering/domain"
	"github.com/example/arraygen/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func testRun(id string, createdAt time.Time) *storage.Run {
	return &storage.Run{
		ID: id,
		Config: domain.Config{
			Levels:   []int{2, 2, 2},
			Strength: 2,
			Phase:    domain.PhaseCoverage,
		}.WithDefaults(),
		Seed:      99,
		NumRows:   5,
		Score:     0,
		ArrayText: "0\t1\t0\t\n1\t0\t1\t\n",
		Duration:  1500 * time.Millisecond,
		CreatedAt: createdAt,
	}
}

func TestRunRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := testRun("aaaaaaaa-1111-2222-3333-444444444444", time.Now())
	require.NoError(t, store.Create(ctx, run))

	got, err := store.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, run.Config.Levels, got.Config.Levels)
	assert.Equal(t, run.Config.Phase, got.Config.Phase)
	assert.Equal(t, run.Seed, got.Seed)
	assert.Equal(t, run.NumRows, got.NumRows)
	assert.Equal(t, run.Score, got.Score)
	assert.Equal(t, run.ArrayText, got.ArrayText)
	assert.Equal(t, run.Duration, got.Duration)
}

func TestRunGetByPrefix(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testRun("aaaaaaaa-1111-2222-3333-444444444444", time.Now())))
	require.NoError(t, store.Create(ctx, testRun("bbbbbbbb-1111-2222-3333-444444444444", time.Now())))

	got, err := store.Get(ctx, "aaaaaaaa")
	require.NoError(t, err)
	assert.Equal(t, "aaaaaaaa-1111-2222-3333-444444444444", got.ID)

	_, err = store.Get(ctx, "cccccccc")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	require.NoError(t, store.Create(ctx, testRun("aaaaaaaa-1111-2222-3333-444444444444", base)))
	require.NoError(t, store.Create(ctx, testRun("bbbbbbbb-1111-2222-3333-444444444444", base.Add(time.Minute))))
	require.NoError(t, store.Create(ctx, testRun("cccccccc-1111-2222-3333-444444444444", base.Add(2*time.Minute))))

	runs, err := store.List(ctx, storage.ListOptions{})
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "cccccccc-1111-2222-3333-444444444444", runs[0].ID)
	assert.Equal(t, "aaaaaaaa-1111-2222-3333-444444444444", runs[2].ID)

	limited, err := store.List(ctx, storage.ListOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "bbbbbbbb-1111-2222-3333-444444444444", limited[0].ID)
}

func TestRunDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := testRun("aaaaaaaa-1111-2222-3333-444444444444", time.Now())
	require.NoError(t, store.Create(ctx, run))
	require.NoError(t, store.Delete(ctx, run.ID))

	_, err := store.Get(ctx, run.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, run.ID), domain.ErrNotFound)
}
