package domain

import (
	"strings"
	"time"
)

// Task is the persisted record of one node in the work-breakdown hierarchy.
// The task tree keeps a private copy of it per node.
type Task struct {
	ID            int64
	ParentID      *int64
	Title         string
	Status        TaskStatus
	Deleted       bool
	BookingStatus BookingStatus

	// Kost2List holds cost-center suffixes separated by ',' or ';'. A nil
	// list is distinct from an empty one: only a present list lets the task
	// inherit a project from its ancestors.
	Kost2List       *string
	Kost2IsDenyList bool

	MaxHours  *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy so callers cannot mutate a cached snapshot.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	if t.ParentID != nil {
		p := *t.ParentID
		c.ParentID = &p
	}
	if t.Kost2List != nil {
		s := *t.Kost2List
		c.Kost2List = &s
	}
	if t.MaxHours != nil {
		h := *t.MaxHours
		c.MaxHours = &h
	}
	return &c
}

// IsRoot reports whether the record carries no parent reference.
func (t *Task) IsRoot() bool {
	return t.ParentID == nil
}

// SameParent reports whether both tasks reference the same parent id.
func (t *Task) SameParent(other *Task) bool {
	if t.ParentID == nil || other.ParentID == nil {
		return t.ParentID == nil && other.ParentID == nil
	}
	return *t.ParentID == *other.ParentID
}

// BookableForTimesheets is the default timesheet predicate: closed, deleted
// and booking-locked tasks reject new time sheets.
func (t *Task) BookableForTimesheets() bool {
	if t.Deleted || t.Status == TaskClosed {
		return false
	}
	switch t.BookingStatus {
	case BookingNoBooking, BookingTreeClosed:
		return false
	}
	return true
}

// ParseKost2List splits a stored allow/deny list into trimmed entries.
// Returns nil when the list is absent or contains no entries.
func ParseKost2List(s *string) []string {
	if s == nil {
		return nil
	}
	fields := strings.FieldsFunc(*s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}
