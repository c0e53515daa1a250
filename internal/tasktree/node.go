package tasktree

import (
	"sort"
	"sync"

	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/shopspring/decimal"
)

// durationUnknown marks a node whose own time sheet minutes were not loaded yet.
const durationUnknown int64 = -1

// TaskNode is the cached representation of one task: its place in the
// hierarchy, a private copy of the task record and the values derived from
// it. Structural fields are only changed by the owning TaskTree.
type TaskNode struct {
	mu sync.RWMutex

	id       int64
	parent   *TaskNode
	children []*TaskNode
	task     *domain.Task
	project  *domain.Project

	accessEntries map[int64]*domain.GroupTaskAccess

	// orderedPersonDays is the sum of the order positions booked directly
	// on this task. Null means no position carries a workload figure.
	orderedPersonDays decimal.NullDecimal

	// totalDuration is the sum of minutes booked directly on this task.
	totalDuration int64
	// durationGen counts resets of totalDuration so a load that raced a
	// reset does not store a stale figure.
	durationGen uint64

	bookableForTimesheets bool
}

func newTaskNode(task *domain.Task) *TaskNode {
	return &TaskNode{
		id:            task.ID,
		task:          task.Clone(),
		accessEntries: make(map[int64]*domain.GroupTaskAccess),
		totalDuration: durationUnknown,
	}
}

func (n *TaskNode) ID() int64 {
	return n.id
}

// Task returns a copy of the cached task record.
func (n *TaskNode) Task() *domain.Task {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.task.Clone()
}

func (n *TaskNode) Title() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.task.Title
}

// MaxHours returns the task's hour budget, or nil.
func (n *TaskNode) MaxHours() *int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.task.MaxHours == nil {
		return nil
	}
	h := *n.task.MaxHours
	return &h
}

func (n *TaskNode) IsDeleted() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.task.Deleted
}

// Parent returns the parent node, or nil for the root and for nodes whose
// parent could not be resolved.
func (n *TaskNode) Parent() *TaskNode {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.parent
}

// ParentID returns the id of the attached parent node.
func (n *TaskNode) ParentID() (int64, bool) {
	p := n.Parent()
	if p == nil {
		return 0, false
	}
	return p.id, true
}

// IsRoot reports whether the node is the top of the hierarchy: no parent
// node and no parent reference on its task.
func (n *TaskNode) IsRoot() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.parent == nil && n.task.ParentID == nil
}

// Children returns a copy of the child list in insertion order.
func (n *TaskNode) Children() []*TaskNode {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*TaskNode, len(n.children))
	copy(out, n.children)
	return out
}

// SortedChildren returns the children ordered by title, then id.
func (n *TaskNode) SortedChildren() []*TaskNode {
	children := n.Children()
	sort.SliceStable(children, func(i, j int) bool {
		ti, tj := children[i].Title(), children[j].Title()
		if ti != tj {
			return ti < tj
		}
		return children[i].id < children[j].id
	})
	return children
}

func (n *TaskNode) HasChildren() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.children) > 0
}

// IsParentOf reports whether n is a proper ancestor of other.
func (n *TaskNode) IsParentOf(other *TaskNode) bool {
	if other == nil {
		return false
	}
	for p := other.Parent(); p != nil; p = p.Parent() {
		if p == n {
			return true
		}
	}
	return false
}

// Depth is the number of parent links between n and the top of its branch.
func (n *TaskNode) Depth() int {
	depth := 0
	for p := n.Parent(); p != nil; p = p.Parent() {
		depth++
	}
	return depth
}

// PathToAncestor returns the nodes from just below ancestorID down to n.
// The ancestor itself is excluded; with an ancestorID that is not on the
// branch the path ends below the root, which is excluded as well.
func (n *TaskNode) PathToAncestor(ancestorID int64) []*TaskNode {
	var path []*TaskNode
	for cur := n; cur != nil; {
		if cur.id == ancestorID {
			break
		}
		parent := cur.Parent()
		if parent == nil {
			break
		}
		path = append(path, cur)
		cur = parent
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Project returns the project linked to this task. With recursive set the
// nearest ancestor's project is returned when the task has none.
func (n *TaskNode) Project(recursive bool) *domain.Project {
	for cur := n; cur != nil; cur = cur.Parent() {
		cur.mu.RLock()
		p := cur.project
		cur.mu.RUnlock()
		if p != nil {
			c := *p
			return &c
		}
		if !recursive {
			return nil
		}
	}
	return nil
}

// OrderedPersonDays returns the workload of the order positions referencing
// this task directly. Valid is false when there is none.
func (n *TaskNode) OrderedPersonDays() decimal.NullDecimal {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.orderedPersonDays
}

// TotalDuration returns the cached minutes booked on this task, or -1.
func (n *TaskNode) TotalDuration() int64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.totalDuration
}

func (n *TaskNode) IsBookableForTimesheets() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.bookableForTimesheets
}

func (n *TaskNode) setTask(task *domain.Task, bookable bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.task = task.Clone()
	n.bookableForTimesheets = bookable
}

func (n *TaskNode) setBookable(bookable bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.bookableForTimesheets = bookable
}

func (n *TaskNode) setParentRef(parentID *int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if parentID == nil {
		n.task.ParentID = nil
		return
	}
	id := *parentID
	n.task.ParentID = &id
}

func (n *TaskNode) setProject(p *domain.Project) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if p == nil {
		n.project = nil
		return
	}
	c := *p
	n.project = &c
}

func (n *TaskNode) setOrderedPersonDays(v decimal.NullDecimal) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orderedPersonDays = v
}

func (n *TaskNode) setTotalDuration(minutes int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.totalDuration = minutes
}

func (n *TaskNode) totalDurationGen() (int64, uint64) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.totalDuration, n.durationGen
}

// storeLoadedDuration caches minutes read at generation gen. It reports
// false and leaves the node untouched if a reset happened since.
func (n *TaskNode) storeLoadedDuration(gen uint64, minutes int64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.durationGen != gen {
		return false
	}
	n.totalDuration = minutes
	return true
}

func (n *TaskNode) resetTotalDuration() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.durationGen++
	n.totalDuration = durationUnknown
}

// addChild links child under n. Adding a child twice is a no-op.
func (n *TaskNode) addChild(child *TaskNode) {
	n.mu.Lock()
	for _, c := range n.children {
		if c == child {
			n.mu.Unlock()
			return
		}
	}
	n.children = append(n.children, child)
	n.mu.Unlock()

	child.mu.Lock()
	child.parent = n
	child.mu.Unlock()
}

func (n *TaskNode) removeChild(child *TaskNode) {
	n.mu.Lock()
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i:i], n.children[i+1:]...)
			break
		}
	}
	n.mu.Unlock()

	child.mu.Lock()
	if child.parent == n {
		child.parent = nil
	}
	child.mu.Unlock()
}

// moveTo detaches n from its current parent and attaches it under parent.
func (n *TaskNode) moveTo(parent *TaskNode) {
	if old := n.Parent(); old != nil {
		if old == parent {
			return
		}
		old.removeChild(n)
	}
	parent.addChild(n)
}
