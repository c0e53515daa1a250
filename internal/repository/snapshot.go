package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/tasktree/internal/db"
	"github.com/alexanderramin/tasktree/internal/domain"
)

// SQLiteTreeSnapshotReader reads everything a task tree rebuild needs inside
// one read transaction, so tasks, rules, projects and durations agree.
type SQLiteTreeSnapshotReader struct {
	uow db.UnitOfWork
}

// NewSQLiteTreeSnapshotReader creates a reader on top of uow.
func NewSQLiteTreeSnapshotReader(uow db.UnitOfWork) *SQLiteTreeSnapshotReader {
	return &SQLiteTreeSnapshotReader{uow: uow}
}

func (r *SQLiteTreeSnapshotReader) ReadTreeSnapshot(ctx context.Context) (*domain.TreeSnapshot, error) {
	snap := &domain.TreeSnapshot{}
	err := r.uow.WithinReadTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		if snap.Tasks, err = NewSQLiteTaskRepo(tx).ListAll(ctx); err != nil {
			return fmt.Errorf("reading tasks: %w", err)
		}
		if snap.AccessRules, err = NewSQLiteGroupTaskAccessRepo(tx).ListAll(ctx); err != nil {
			return fmt.Errorf("reading access rules: %w", err)
		}
		if snap.Projects, err = NewSQLiteProjectRepo(tx).ListAll(ctx); err != nil {
			return fmt.Errorf("reading projects: %w", err)
		}
		if snap.Durations, err = NewSQLiteTimesheetRepo(tx).SumMinutesByTask(ctx); err != nil {
			return fmt.Errorf("reading durations: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}
