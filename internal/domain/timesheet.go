package domain

import "time"

// Timesheet records time spent on a task.
type Timesheet struct {
	ID        string
	TaskID    int64
	StartedAt time.Time
	Minutes   int
	Note      string
	Deleted   bool
	CreatedAt time.Time
}

// TaskDuration is an aggregated duration row: the minutes of all time sheets
// booked directly on one task.
type TaskDuration struct {
	TaskID  int64
	Minutes int64
}

// TreeSnapshot is everything a full task tree rebuild reads in one
// consistent read scope.
type TreeSnapshot struct {
	Tasks       []*Task
	AccessRules []*GroupTaskAccess
	Projects    []*Project
	Durations   []TaskDuration
}
