package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/alexanderramin/tasktree/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessRepo_UpsertAndGet(t *testing.T) {
	repo := NewSQLiteGroupTaskAccessRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	rule := testutil.NewTestAccess(1, 10, true, domain.AccessTasks, domain.AccessTimesheets)
	rule.Description = "team"
	require.NoError(t, repo.Upsert(ctx, rule))
	assert.NotZero(t, rule.ID)

	got, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	assert.True(t, got.Recursive)
	assert.Equal(t, "team", got.Description)
	assert.Len(t, got.Entries, 2)
	e, ok := got.Entry(domain.AccessTimesheets)
	require.True(t, ok)
	assert.True(t, e.Insert)
}

func TestAccessRepo_UpsertReplacesEntries(t *testing.T) {
	repo := NewSQLiteGroupTaskAccessRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	first := testutil.NewTestAccess(1, 10, true, domain.AccessTasks, domain.AccessTimesheets)
	require.NoError(t, repo.Upsert(ctx, first))

	second := &domain.GroupTaskAccess{TaskID: 1, GroupID: 10, Recursive: false}
	second.SetEntry(domain.AccessEntry{Type: domain.AccessOwnTimesheets, Select: true})
	require.NoError(t, repo.Upsert(ctx, second))
	assert.Equal(t, first.ID, second.ID, "same task/group pair keeps its row")

	got, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	assert.False(t, got.Recursive)
	require.Len(t, got.Entries, 1)
	_, ok := got.Entry(domain.AccessOwnTimesheets)
	assert.True(t, ok)
}

func TestAccessRepo_ListAllAndDelete(t *testing.T) {
	repo := NewSQLiteGroupTaskAccessRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, testutil.NewTestAccess(1, 10, true, domain.AccessTasks)))
	require.NoError(t, repo.Upsert(ctx, testutil.NewTestAccess(2, 10, false)))
	require.NoError(t, repo.Upsert(ctx, testutil.NewTestAccess(2, 11, true, domain.AccessTasks, domain.AccessTimesheets)))

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Len(t, all[0].Entries, 1)
	assert.Empty(t, all[1].Entries, "rule without entries still listed")
	assert.Len(t, all[2].Entries, 2)

	require.NoError(t, repo.Delete(ctx, 2, 11))
	_, err = repo.Get(ctx, 2, 11)
	assert.ErrorIs(t, err, ErrNotFound)

	all, err = repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
