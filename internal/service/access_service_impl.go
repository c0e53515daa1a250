package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/tasktree/internal/db"
	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/alexanderramin/tasktree/internal/repository"
	"github.com/alexanderramin/tasktree/internal/tasktree"
)

type accessService struct {
	uow      db.UnitOfWork
	tree     Tree
	observer UseCaseObserver
}

func NewAccessService(uow db.UnitOfWork, tree Tree, observers ...UseCaseObserver) AccessService {
	return &accessService{uow: uow, tree: tree, observer: useCaseObserverOrNoop(observers)}
}

func (s *accessService) Set(ctx context.Context, g *domain.GroupTaskAccess) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"task_id": g.TaskID, "group_id": g.GroupID}
	defer observe(ctx, s.observer, "set-access", startedAt, fields, &err)

	if g.GroupID <= 0 {
		return fmt.Errorf("group id %d: %w", g.GroupID, ErrInvalidInput)
	}
	for at, e := range g.Entries {
		if !domain.ValidAccessTypes[string(at)] || e.Type != at {
			return fmt.Errorf("access type %q: %w", at, ErrInvalidInput)
		}
	}
	if err = s.requireTask(ctx, g.TaskID); err != nil {
		return err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteGroupTaskAccessRepo(tx).Upsert(ctx, g)
	})
	if err != nil {
		return err
	}
	return s.tree.SetGroupTaskAccess(g)
}

func (s *accessService) Remove(ctx context.Context, taskID, groupID int64) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"task_id": taskID, "group_id": groupID}
	defer observe(ctx, s.observer, "remove-access", startedAt, fields, &err)

	if err = s.requireTask(ctx, taskID); err != nil {
		return err
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteGroupTaskAccessRepo(tx).Delete(ctx, taskID, groupID)
	})
	if err != nil {
		return err
	}
	return s.tree.RemoveGroupTaskAccess(taskID, groupID)
}

func (s *accessService) requireTask(ctx context.Context, taskID int64) error {
	node, err := s.tree.GetTaskNodeByID(ctx, taskID)
	if err != nil {
		return err
	}
	if node == nil {
		return fmt.Errorf("task %d: %w", taskID, tasktree.ErrUnknownTask)
	}
	return nil
}
