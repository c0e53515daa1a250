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

type orderService struct {
	uow      db.UnitOfWork
	tree     Tree
	observer UseCaseObserver
}

func NewOrderService(uow db.UnitOfWork, tree Tree, observers ...UseCaseObserver) OrderService {
	return &orderService{uow: uow, tree: tree, observer: useCaseObserverOrNoop(observers)}
}

func (s *orderService) AddPosition(ctx context.Context, o *domain.OrderContribution) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"task_id": o.TaskID, "position": o.Key()}
	defer observe(ctx, s.observer, "add-order-position", startedAt, fields, &err)

	if o.PersonDays.Valid && o.PersonDays.Decimal.IsNegative() {
		return fmt.Errorf("person days %s: %w", o.PersonDays.Decimal, ErrInvalidInput)
	}
	var node *tasktree.TaskNode
	if node, err = s.tree.GetTaskNodeByID(ctx, o.TaskID); err != nil {
		return err
	}
	if node == nil {
		return fmt.Errorf("task %d: %w", o.TaskID, tasktree.ErrUnknownTask)
	}

	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteOrderPositionRepo(tx).Create(ctx, o)
	})
	if err != nil {
		return err
	}
	s.tree.SetOrderPositionsDirty()
	return nil
}

func (s *orderService) RemovePosition(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "remove-order-position", startedAt, map[string]any{"position_id": id}, &err)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteOrderPositionRepo(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.tree.SetOrderPositionsDirty()
	return nil
}
