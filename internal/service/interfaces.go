package service

import (
	"context"

	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/alexanderramin/tasktree/internal/tasktree"
)

// Tree is the part of the task tree cache the write path keeps current.
// *tasktree.TaskTree implements it.
type Tree interface {
	Root(ctx context.Context) (*tasktree.TaskNode, error)
	GetTaskNodeByID(ctx context.Context, id int64) (*tasktree.TaskNode, error)
	IsBookableForTimesheets(ctx context.Context, taskID int64) (bool, error)
	AddTaskNode(task *domain.Task) (*tasktree.TaskNode, error)
	AddOrUpdateTaskNode(task *domain.Task) (*tasktree.TaskNode, error)
	SetGroupTaskAccess(rule *domain.GroupTaskAccess) error
	RemoveGroupTaskAccess(taskID, groupID int64) error
	ResetTotalDuration(taskID int64)
	SetOrderPositionsDirty()
	SetExpired()
}

type TaskService interface {
	Create(ctx context.Context, t *domain.Task) (*tasktree.TaskNode, error)
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) (*tasktree.TaskNode, error)
	Move(ctx context.Context, taskID, parentID int64) (*tasktree.TaskNode, error)
}

type AccessService interface {
	Set(ctx context.Context, g *domain.GroupTaskAccess) error
	Remove(ctx context.Context, taskID, groupID int64) error
}

type TimesheetService interface {
	Log(ctx context.Context, ts *domain.Timesheet) error
	Delete(ctx context.Context, id string) error
}

type OrderService interface {
	AddPosition(ctx context.Context, o *domain.OrderContribution) error
	RemovePosition(ctx context.Context, id string) error
}

type ProjectService interface {
	Create(ctx context.Context, p *domain.Project) error
}
