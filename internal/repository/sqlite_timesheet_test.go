package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/alexanderramin/tasktree/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimesheetRepo_Sums(t *testing.T) {
	repo := NewSQLiteTimesheetRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.NewTestTimesheet(2, 30)))
	require.NoError(t, repo.Create(ctx, testutil.NewTestTimesheet(2, 45)))
	require.NoError(t, repo.Create(ctx, testutil.NewTestTimesheet(3, 60)))
	gone := testutil.NewTestTimesheet(3, 600)
	require.NoError(t, repo.Create(ctx, gone))
	require.NoError(t, repo.Delete(ctx, gone.ID))

	durations, err := repo.SumMinutesByTask(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.TaskDuration{{TaskID: 2, Minutes: 75}, {TaskID: 3, Minutes: 60}}, durations)

	total, err := repo.SumMinutesForTask(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(75), total)

	total, err = repo.SumMinutesForTask(ctx, 99)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestTimesheetRepo_GetByID(t *testing.T) {
	repo := NewSQLiteTimesheetRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	ts := testutil.NewTestTimesheet(7, 15)
	ts.Note = "review"
	require.NoError(t, repo.Create(ctx, ts))

	got, err := repo.GetByID(ctx, ts.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.TaskID)
	assert.Equal(t, 15, got.Minutes)
	assert.Equal(t, "review", got.Note)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
