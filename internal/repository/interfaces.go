package repository

import (
	"context"

	"github.com/alexanderramin/tasktree/internal/domain"
)

type TaskRepo interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	ListAll(ctx context.Context) ([]*domain.Task, error)
	ListChildren(ctx context.Context, parentID int64) ([]*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
}

type GroupTaskAccessRepo interface {
	Upsert(ctx context.Context, g *domain.GroupTaskAccess) error
	Get(ctx context.Context, taskID, groupID int64) (*domain.GroupTaskAccess, error)
	Delete(ctx context.Context, taskID, groupID int64) error
	ListAll(ctx context.Context) ([]*domain.GroupTaskAccess, error)
}

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
	ListAll(ctx context.Context) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
}

type Kost2Repo interface {
	Create(ctx context.Context, k *domain.Kost2) error
	GetByCode(ctx context.Context, code string) (*domain.Kost2, error)
	FindByCode(ctx context.Context, code string) (*domain.Kost2, error)
	ListActiveByNamespace(ctx context.Context, ns domain.CostCenterNamespace) ([]*domain.Kost2, error)
}

type OrderPositionRepo interface {
	Create(ctx context.Context, o *domain.OrderContribution) error
	Delete(ctx context.Context, id string) error
	ListByTask(ctx context.Context, taskID int64) ([]domain.OrderContribution, error)
	ListWorkloadReferences(ctx context.Context) (map[int64][]domain.OrderContribution, error)
}

type TimesheetRepo interface {
	Create(ctx context.Context, ts *domain.Timesheet) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Timesheet, error)
	SumMinutesByTask(ctx context.Context) ([]domain.TaskDuration, error)
	SumMinutesForTask(ctx context.Context, taskID int64) (int64, error)
}

// TreeSnapshotReader loads the full record set the task tree is built from.
type TreeSnapshotReader interface {
	ReadTreeSnapshot(ctx context.Context) (*domain.TreeSnapshot, error)
}
