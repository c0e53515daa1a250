package testutil

import (
	"sync/atomic"
	"time"

	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var testTaskIDCounter atomic.Int64

// NextTaskID returns a process-unique task id for fixtures that need one
// before the record is persisted.
func NextTaskID() int64 {
	return 1000 + testTaskIDCounter.Add(1)
}

// Task options
type TaskOption func(*domain.Task)

func WithParent(id int64) TaskOption {
	return func(t *domain.Task) {
		t.ParentID = &id
	}
}

func WithTaskID(id int64) TaskOption {
	return func(t *domain.Task) {
		t.ID = id
	}
}

func WithMaxHours(h int) TaskOption {
	return func(t *domain.Task) {
		t.MaxHours = &h
	}
}

// WithKost2AllowList sets an allow-mode cost-center list.
func WithKost2AllowList(list string) TaskOption {
	return func(t *domain.Task) {
		t.Kost2List = &list
		t.Kost2IsDenyList = false
	}
}

// WithKost2DenyList sets a deny-mode cost-center list.
func WithKost2DenyList(list string) TaskOption {
	return func(t *domain.Task) {
		t.Kost2List = &list
		t.Kost2IsDenyList = true
	}
}

func WithTaskStatus(s domain.TaskStatus) TaskOption {
	return func(t *domain.Task) {
		t.Status = s
	}
}

func WithBookingStatus(s domain.BookingStatus) TaskOption {
	return func(t *domain.Task) {
		t.BookingStatus = s
	}
}

func NewTestTask(title string, opts ...TaskOption) *domain.Task {
	now := time.Now().UTC()
	t := &domain.Task{
		Title:         title,
		Status:        domain.TaskOpened,
		BookingStatus: domain.BookingInherit,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewTestProject links a project to taskID under the given namespace.
func NewTestProject(name string, taskID int64, ns domain.CostCenterNamespace) *domain.Project {
	now := time.Now().UTC()
	return &domain.Project{
		Name:      name,
		TaskID:    &taskID,
		Namespace: ns,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func NewTestKost2(code string, ns domain.CostCenterNamespace) *domain.Kost2 {
	return &domain.Kost2{
		Code:      code,
		Namespace: ns,
		State:     domain.Kost2Active,
	}
}

// NewTestAccess builds a rule with one entry per given access type, all
// operations granted.
func NewTestAccess(taskID, groupID int64, recursive bool, types ...domain.AccessType) *domain.GroupTaskAccess {
	g := &domain.GroupTaskAccess{TaskID: taskID, GroupID: groupID, Recursive: recursive}
	for _, at := range types {
		g.SetEntry(domain.AccessEntry{Type: at, Select: true, Insert: true, Update: true, Delete: true})
	}
	return g
}

// NewTestOrderPosition builds a position; personDays "" leaves the workload null.
func NewTestOrderPosition(orderNumber, positionNumber int, taskID int64, personDays string) domain.OrderContribution {
	o := domain.OrderContribution{
		ID:             uuid.New().String(),
		OrderNumber:    orderNumber,
		PositionNumber: positionNumber,
		TaskID:         taskID,
	}
	if personDays != "" {
		o.PersonDays = decimal.NewNullDecimal(decimal.RequireFromString(personDays))
	}
	return o
}

func NewTestTimesheet(taskID int64, minutes int) *domain.Timesheet {
	now := time.Now().UTC()
	return &domain.Timesheet{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		StartedAt: now.Add(-time.Duration(minutes) * time.Minute),
		Minutes:   minutes,
		CreatedAt: now,
	}
}
