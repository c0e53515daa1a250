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

type projectService struct {
	uow      db.UnitOfWork
	tree     Tree
	observer UseCaseObserver
}

func NewProjectService(uow db.UnitOfWork, tree Tree, observers ...UseCaseObserver) ProjectService {
	return &projectService{uow: uow, tree: tree, observer: useCaseObserverOrNoop(observers)}
}

// Create persists the project. Project links are only read during a full
// rebuild, so the tree is marked expired.
func (s *projectService) Create(ctx context.Context, p *domain.Project) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"name": p.Name}
	defer observe(ctx, s.observer, "create-project", startedAt, fields, &err)

	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("project name is required: %w", ErrInvalidInput)
	}
	if p.TaskID != nil {
		var node *tasktree.TaskNode
		if node, err = s.tree.GetTaskNodeByID(ctx, *p.TaskID); err != nil {
			return err
		}
		if node == nil {
			return fmt.Errorf("task %d: %w", *p.TaskID, tasktree.ErrUnknownTask)
		}
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteProjectRepo(tx).Create(ctx, p)
	})
	if err != nil {
		return err
	}
	fields["project_id"] = p.ID
	s.tree.SetExpired()
	return nil
}
