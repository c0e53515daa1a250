package service

import (
	"bytes"
	"context"
	"database/sql"
	"testing"

	"github.com/alexanderramin/tasktree/internal/db"
	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/alexanderramin/tasktree/internal/repository"
	"github.com/alexanderramin/tasktree/internal/tasktree"
	"github.com/alexanderramin/tasktree/internal/testutil"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	database *sql.DB
	uow      db.UnitOfWork
	tree     *tasktree.TaskTree
	log      *bytes.Buffer

	tasks      TaskService
	access     AccessService
	timesheets TimesheetService
	orders     OrderService
	projects   ProjectService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	tree := newTreeOver(database)
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(testLogger(&buf))

	return &testEnv{
		database:   database,
		uow:        uow,
		tree:       tree,
		log:        &buf,
		tasks:      NewTaskService(repository.NewSQLiteTaskRepo(database), uow, tree, obs),
		access:     NewAccessService(uow, tree, obs),
		timesheets: NewTimesheetService(repository.NewSQLiteTimesheetRepo(database), uow, tree, obs),
		orders:     NewOrderService(uow, tree, obs),
		projects:   NewProjectService(uow, tree, obs),
	}
}

func newTreeOver(database *sql.DB) *tasktree.TaskTree {
	return tasktree.New(tasktree.Sources{
		Snapshots:   repository.NewSQLiteTreeSnapshotReader(db.NewSQLiteUnitOfWork(database)),
		CostCenters: repository.NewSQLiteKost2Repo(database),
		Orders:      repository.NewSQLiteOrderPositionRepo(database),
		Durations:   repository.NewSQLiteTimesheetRepo(database),
	})
}

// seed creates Root > {Development > Backend, Operations} through the task
// service and returns the ids by title.
func (e *testEnv) seed(t *testing.T) map[string]int64 {
	t.Helper()
	ctx := context.Background()
	ids := map[string]int64{}
	create := func(title string, parent string) {
		task := testutil.NewTestTask(title)
		if parent != "" {
			task.ParentID = domain.Int64Ptr(ids[parent])
		}
		_, err := e.tasks.Create(ctx, task)
		require.NoError(t, err)
		ids[title] = task.ID
	}
	create("Root", "")
	create("Development", "Root")
	create("Operations", "Root")
	create("Backend", "Development")
	return ids
}
