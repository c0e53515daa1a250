package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/tasktree/internal/db"
	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/alexanderramin/tasktree/internal/repository"
	"github.com/alexanderramin/tasktree/internal/tasktree"
	"github.com/google/uuid"
)

type timesheetService struct {
	timesheets repository.TimesheetRepo
	uow        db.UnitOfWork
	tree       Tree
	observer   UseCaseObserver
}

func NewTimesheetService(timesheets repository.TimesheetRepo, uow db.UnitOfWork, tree Tree, observers ...UseCaseObserver) TimesheetService {
	return &timesheetService{
		timesheets: timesheets,
		uow:        uow,
		tree:       tree,
		observer:   useCaseObserverOrNoop(observers),
	}
}

// Log books a time sheet on a task that accepts bookings and invalidates the
// task's cached duration.
func (s *timesheetService) Log(ctx context.Context, ts *domain.Timesheet) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"task_id": ts.TaskID, "minutes": ts.Minutes}
	defer observe(ctx, s.observer, "log-timesheet", startedAt, fields, &err)

	if ts.Minutes <= 0 {
		return fmt.Errorf("minutes must be positive, got %d: %w", ts.Minutes, ErrInvalidInput)
	}
	var node *tasktree.TaskNode
	if node, err = s.tree.GetTaskNodeByID(ctx, ts.TaskID); err != nil {
		return err
	}
	if node == nil {
		return fmt.Errorf("task %d: %w", ts.TaskID, tasktree.ErrUnknownTask)
	}
	if !node.IsBookableForTimesheets() {
		return fmt.Errorf("task %d: %w", ts.TaskID, ErrTaskNotBookable)
	}

	if ts.ID == "" {
		ts.ID = uuid.New().String()
	}
	if ts.StartedAt.IsZero() {
		ts.StartedAt = startedAt.Add(-time.Duration(ts.Minutes) * time.Minute)
	}
	ts.CreatedAt = startedAt
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteTimesheetRepo(tx).Create(ctx, ts)
	})
	if err != nil {
		return err
	}
	s.tree.ResetTotalDuration(ts.TaskID)
	return nil
}

func (s *timesheetService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"timesheet_id": id}
	defer observe(ctx, s.observer, "delete-timesheet", startedAt, fields, &err)

	var ts *domain.Timesheet
	if ts, err = s.timesheets.GetByID(ctx, id); err != nil {
		return err
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteTimesheetRepo(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.tree.ResetTotalDuration(ts.TaskID)
	return nil
}
