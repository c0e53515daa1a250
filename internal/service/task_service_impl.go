package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tasktree/internal/db"
	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/alexanderramin/tasktree/internal/repository"
	"github.com/alexanderramin/tasktree/internal/tasktree"
)

type taskService struct {
	tasks    repository.TaskRepo
	uow      db.UnitOfWork
	tree     Tree
	observer UseCaseObserver
}

func NewTaskService(tasks repository.TaskRepo, uow db.UnitOfWork, tree Tree, observers ...UseCaseObserver) TaskService {
	return &taskService{
		tasks:    tasks,
		uow:      uow,
		tree:     tree,
		observer: useCaseObserverOrNoop(observers),
	}
}

// Create persists a new task and adds it to the tree. A task without parent
// is placed under the existing root; only the first task becomes the root.
func (s *taskService) Create(ctx context.Context, t *domain.Task) (node *tasktree.TaskNode, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"title": t.Title}
	defer observe(ctx, s.observer, "create-task", startedAt, fields, &err)

	if err = normalizeTask(t); err != nil {
		return nil, err
	}

	if t.ParentID == nil {
		var root *tasktree.TaskNode
		root, err = s.tree.Root(ctx)
		if err != nil {
			return nil, err
		}
		if root != nil {
			rootID := root.ID()
			t.ParentID = &rootID
		}
	} else if _, err = s.requireNode(ctx, *t.ParentID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteTaskRepo(tx).Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	fields["task_id"] = t.ID

	node, err = s.tree.AddTaskNode(t)
	return node, err
}

func (s *taskService) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

// Update persists the task and applies it to the tree, moving the node when
// the parent changed. Moves that would create a cycle are rejected before
// anything is written.
func (s *taskService) Update(ctx context.Context, t *domain.Task) (node *tasktree.TaskNode, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"task_id": t.ID}
	defer observe(ctx, s.observer, "update-task", startedAt, fields, &err)

	if err = normalizeTask(t); err != nil {
		return nil, err
	}
	if node, err = s.requireNode(ctx, t.ID); err != nil {
		return nil, err
	}
	if t.ParentID == nil && !node.IsRoot() {
		err = fmt.Errorf("task %d needs a parent: %w", t.ID, ErrInvalidInput)
		return nil, err
	}
	if t.ParentID != nil {
		var parent *tasktree.TaskNode
		if parent, err = s.requireNode(ctx, *t.ParentID); err != nil {
			return nil, err
		}
		if parent == node || node.IsParentOf(parent) {
			err = fmt.Errorf("moving task %d under %d: %w", t.ID, *t.ParentID, tasktree.ErrCyclicParent)
			return nil, err
		}
		fields["parent_id"] = *t.ParentID
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteTaskRepo(tx).Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	node, err = s.tree.AddOrUpdateTaskNode(t)
	return node, err
}

func (s *taskService) Move(ctx context.Context, taskID, parentID int64) (*tasktree.TaskNode, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	t.ParentID = &parentID
	return s.Update(ctx, t)
}

func (s *taskService) requireNode(ctx context.Context, id int64) (*tasktree.TaskNode, error) {
	node, err := s.tree.GetTaskNodeByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("task %d: %w", id, tasktree.ErrUnknownTask)
	}
	return node, nil
}

func normalizeTask(t *domain.Task) error {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return fmt.Errorf("task title is required: %w", ErrInvalidInput)
	}
	if t.Status == "" {
		t.Status = domain.TaskOpened
	}
	if t.Status != domain.TaskOpened && t.Status != domain.TaskClosed {
		return fmt.Errorf("task status %q: %w", t.Status, ErrInvalidInput)
	}
	if t.BookingStatus == "" {
		t.BookingStatus = domain.BookingInherit
	}
	if !domain.ValidBookingStatuses[string(t.BookingStatus)] {
		return fmt.Errorf("booking status %q: %w", t.BookingStatus, ErrInvalidInput)
	}
	if t.MaxHours != nil && *t.MaxHours < 0 {
		return fmt.Errorf("max hours %d: %w", *t.MaxHours, ErrInvalidInput)
	}
	return nil
}
