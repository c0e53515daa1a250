package domain

type TaskStatus string

const (
	TaskOpened TaskStatus = "opened"
	TaskClosed TaskStatus = "closed"
)

// BookingStatus controls whether time sheets may be booked on a task.
type BookingStatus string

const (
	BookingInherit    BookingStatus = "inherit"
	BookingOpened     BookingStatus = "opened"
	BookingOnlyLeafs  BookingStatus = "only_leafs"
	BookingNoBooking  BookingStatus = "no_booking"
	BookingTreeClosed BookingStatus = "tree_closed"
)

// ValidBookingStatuses is the canonical set of accepted booking status strings.
var ValidBookingStatuses = map[string]bool{
	"inherit": true, "opened": true, "only_leafs": true,
	"no_booking": true, "tree_closed": true,
}

// AccessType is the category an access entry grants rights for.
type AccessType string

const (
	AccessTasks                AccessType = "tasks"
	AccessTimesheets           AccessType = "timesheets"
	AccessOwnTimesheets        AccessType = "own_timesheets"
	AccessTaskAccessManagement AccessType = "task_access_management"
)

// ValidAccessTypes is the canonical set of accepted access type strings.
var ValidAccessTypes = map[string]bool{
	"tasks": true, "timesheets": true, "own_timesheets": true,
	"task_access_management": true,
}

type OperationType string

const (
	OpSelect OperationType = "select"
	OpInsert OperationType = "insert"
	OpUpdate OperationType = "update"
	OpDelete OperationType = "delete"
)

type Kost2State string

const (
	Kost2Active    Kost2State = "active"
	Kost2NonActive Kost2State = "nonactive"
	Kost2Ended     Kost2State = "ended"
)
