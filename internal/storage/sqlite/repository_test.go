package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hn-newest-parser/internal/observability"
	"hn-newest-parser/internal/storage"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(":memory:", 5*time.Second, observability.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSaveAndGetLastRun(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	started := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	older := &storage.RunRecord{
		RunID:      uuid.New(),
		Analysis:   "verify",
		SampleHash: "aaa",
		SampleSize: 100,
		Outcome:    "sorted",
		StartedAt:  started.Add(-time.Hour),
		FinishedAt: started.Add(-time.Hour + time.Minute),
	}
	newer := &storage.RunRecord{
		RunID:         uuid.New(),
		Analysis:      "verify",
		SampleHash:    "bbb",
		SampleSize:    100,
		FailedLookups: 2,
		Outcome:       "not sorted",
		StartedAt:     started,
		FinishedAt:    started.Add(time.Minute),
	}
	require.NoError(t, repo.SaveRun(ctx, older))
	require.NoError(t, repo.SaveRun(ctx, newer))

	last, err := repo.GetLastRun(ctx, "verify")
	require.NoError(t, err)
	assert.Equal(t, newer.RunID, last.RunID)
	assert.Equal(t, "bbb", last.SampleHash)
	assert.Equal(t, 2, last.FailedLookups)
	assert.True(t, started.Equal(last.StartedAt))
}

func TestSaveRunUpdatesExisting(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	run := &storage.RunRecord{
		RunID:      uuid.New(),
		Analysis:   "authors",
		SampleHash: "hash",
		SampleSize: 100,
		Outcome:    "running",
		StartedAt:  time.Now().UTC(),
		FinishedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.SaveRun(ctx, run))

	run.Outcome = "3 duplicate authors"
	require.NoError(t, repo.SaveRun(ctx, run))

	last, err := repo.GetLastRun(ctx, "authors")
	require.NoError(t, err)
	assert.Equal(t, "3 duplicate authors", last.Outcome)
}

func TestGetLastRunEmpty(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.GetLastRun(context.Background(), "search")
	assert.ErrorIs(t, err, storage.ErrNoRuns)
}
