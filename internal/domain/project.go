package domain

import "time"

// CostCenterNamespace identifies the block of cost-center codes owned by a project.
type CostCenterNamespace struct {
	Nummernkreis int
	Bereich      int
	Number       int
}

// Project groups tasks for accounting. TaskID links the project to the task
// subtree it covers; tasks below inherit the project lazily.
type Project struct {
	ID        int64
	Name      string
	TaskID    *int64
	Namespace CostCenterNamespace
	Deleted   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Kost2 is a cost-center code. Code is the fully formatted number, e.g. "5.010.01.02".
type Kost2 struct {
	ID          int64
	Code        string
	Namespace   CostCenterNamespace
	State       Kost2State
	Description string
}

// IsActive reports whether new bookings may use the code.
func (k *Kost2) IsActive() bool {
	return k.State == Kost2Active
}
