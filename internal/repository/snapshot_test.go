package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/alexanderramin/tasktree/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeSnapshotReader_ReadsEverything(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	tasks := NewSQLiteTaskRepo(database)
	root := testutil.NewTestTask("Root")
	require.NoError(t, tasks.Create(ctx, root))
	child := testutil.NewTestTask("Child", testutil.WithParent(root.ID))
	require.NoError(t, tasks.Create(ctx, child))

	require.NoError(t, NewSQLiteGroupTaskAccessRepo(database).Upsert(ctx,
		testutil.NewTestAccess(child.ID, 3, true, domain.AccessTasks)))
	require.NoError(t, NewSQLiteProjectRepo(database).Create(ctx,
		testutil.NewTestProject("P", child.ID, domain.CostCenterNamespace{Nummernkreis: 5, Bereich: 1, Number: 1})))
	require.NoError(t, NewSQLiteTimesheetRepo(database).Create(ctx, testutil.NewTestTimesheet(child.ID, 90)))

	reader := NewSQLiteTreeSnapshotReader(testutil.NewTestUoW(database))
	snap, err := reader.ReadTreeSnapshot(ctx)
	require.NoError(t, err)

	assert.Len(t, snap.Tasks, 2)
	require.Len(t, snap.AccessRules, 1)
	assert.Equal(t, child.ID, snap.AccessRules[0].TaskID)
	require.Len(t, snap.Projects, 1)
	assert.Equal(t, child.ID, *snap.Projects[0].TaskID)
	assert.Equal(t, []domain.TaskDuration{{TaskID: child.ID, Minutes: 90}}, snap.Durations)
}

func TestTreeSnapshotReader_EmptyStore(t *testing.T) {
	reader := NewSQLiteTreeSnapshotReader(testutil.NewTestUoW(testutil.NewTestDB(t)))
	snap, err := reader.ReadTreeSnapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Tasks)
	assert.Empty(t, snap.AccessRules)
	assert.Empty(t, snap.Projects)
	assert.Empty(t, snap.Durations)
}
