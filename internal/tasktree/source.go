package tasktree

import (
	"context"
	"errors"

	"github.com/alexanderramin/tasktree/internal/domain"
)

var (
	// ErrNoRootTask is returned by Refresh when a non-empty record set has no
	// task without a parent. The previously published tree stays in place.
	ErrNoRootTask = errors.New("no root task found")

	ErrTaskExists   = errors.New("task already in tree")
	ErrCyclicParent = errors.New("parent would create a cycle")
	ErrUnknownTask  = errors.New("task not in tree")

	errNoSnapshotSource = errors.New("no snapshot source configured")
)

// SnapshotSource reads every record the tree is built from in one consistent
// read.
type SnapshotSource interface {
	ReadTreeSnapshot(ctx context.Context) (*domain.TreeSnapshot, error)
}

// CostCenterSource looks up kost2 codes. FindByCode returns nil, nil for a
// code that does not exist; any error aborts the resolution.
type CostCenterSource interface {
	ListActiveByNamespace(ctx context.Context, ns domain.CostCenterNamespace) ([]*domain.Kost2, error)
	FindByCode(ctx context.Context, code string) (*domain.Kost2, error)
}

// OrderSource lists all live order positions grouped by the task they
// reference.
type OrderSource interface {
	ListWorkloadReferences(ctx context.Context) (map[int64][]domain.OrderContribution, error)
}

type DurationSource interface {
	SumMinutesForTask(ctx context.Context, taskID int64) (int64, error)
}

// BookabilityFunc decides whether time sheets may be booked on a task.
type BookabilityFunc func(task *domain.Task) bool

func defaultBookability(task *domain.Task) bool {
	return task.BookableForTimesheets()
}

// Sources bundles the collaborators the tree reads from. Only Snapshots is
// required; a nil source behaves as if it held no records.
type Sources struct {
	Snapshots   SnapshotSource
	CostCenters CostCenterSource
	Orders      OrderSource
	Durations   DurationSource
}
