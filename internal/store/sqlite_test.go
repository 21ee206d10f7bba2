package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "ingest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteRunLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "map", "role", true)
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, RunStatusRunning, run.Status)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "map", got.StageFrom)
	assert.Equal(t, "role", got.StageTo)
	assert.True(t, got.Overwrite)
	assert.Nil(t, got.FinishedAt)

	require.NoError(t, s.CompleteRun(ctx, run.ID, RunStatusComplete))

	got, err = s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusComplete, got.Status)
	require.NotNil(t, got.FinishedAt)
	assert.False(t, got.FinishedAt.Before(got.StartedAt))
}

func TestSQLiteCompleteUnknownRun(t *testing.T) {
	s := newTestSQLite(t)
	err := s.CompleteRun(context.Background(), "nope", RunStatusFailed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteGetUnknownRun(t *testing.T) {
	s := newTestSQLite(t)
	_, err := s.GetRun(context.Background(), "nope")
	assert.Error(t, err)
}

func TestSQLiteListRunsFilter(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	first, err := s.CreateRun(ctx, "map", "role", false)
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, "salary", "geo", false)
	require.NoError(t, err)
	require.NoError(t, s.CompleteRun(ctx, first.ID, RunStatusFailed))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	failed, err := s.ListRuns(ctx, RunFilter{Status: RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, first.ID, failed[0].ID)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteSteps(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "map", "role", false)
	require.NoError(t, err)

	require.NoError(t, s.RecordStep(ctx, run.ID, "jobs.csv", "map", "done", ""))
	require.NoError(t, s.RecordStep(ctx, run.ID, "jobs.csv", "salary", "fail", "bad input"))

	steps, err := s.ListSteps(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "map", steps[0].Stage)
	assert.Empty(t, steps[0].Error)
	assert.Equal(t, "fail", steps[1].Status)
	assert.Equal(t, "bad input", steps[1].Error)

	none, err := s.ListSteps(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, none)
}
