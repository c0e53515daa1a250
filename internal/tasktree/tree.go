// Package tasktree keeps the complete task hierarchy in memory. It is built
// from a snapshot of the persistent store, kept current by incremental
// updates from the write path and rebuilt when it expires.
package tasktree

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/tasktree/internal/clock"
	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// TaskTree is safe for concurrent use. Lookups run against the most recently
// published root and index; structural writers are serialized.
type TaskTree struct {
	// mu serializes structural writers and the build phase of Refresh.
	// Lock order: mu, orderMu, mapMu.
	mu sync.Mutex

	// mapMu guards root and nodes.
	mapMu sync.RWMutex
	root  *TaskNode
	nodes map[int64]*TaskNode

	orderMu    sync.Mutex
	orderRefs  map[int64][]domain.OrderContribution
	orderDirty bool

	refreshGroup singleflight.Group
	lastRefresh  atomic.Int64 // unix nanos, 0 = never
	expired      atomic.Bool
	lastModified atomic.Int64 // unix millis

	sources     Sources
	bookable    BookabilityFunc
	clock       clock.Clock
	expiry      ExpiryPolicy
	logger      *slog.Logger
	hoursPerDay decimal.Decimal
}

type Option func(*TaskTree)

func WithLogger(l *slog.Logger) Option {
	return func(t *TaskTree) {
		if l != nil {
			t.logger = l
		}
	}
}

func WithClock(c clock.Clock) Option {
	return func(t *TaskTree) {
		if c != nil {
			t.clock = c
		}
	}
}

func WithExpiry(p ExpiryPolicy) Option {
	return func(t *TaskTree) {
		if p != nil {
			t.expiry = p
		}
	}
}

func WithBookability(f BookabilityFunc) Option {
	return func(t *TaskTree) {
		if f != nil {
			t.bookable = f
		}
	}
}

// WithHoursPerDay sets the factor used to turn a task's max hours into
// person days. Non-positive values are ignored.
func WithHoursPerDay(hours decimal.Decimal) Option {
	return func(t *TaskTree) {
		if hours.IsPositive() {
			t.hoursPerDay = hours
		}
	}
}

// New returns an empty, expired tree. The first lookup triggers a refresh.
func New(sources Sources, opts ...Option) *TaskTree {
	t := &TaskTree{
		nodes:       make(map[int64]*TaskNode),
		orderDirty:  true,
		sources:     sources,
		bookable:    defaultBookability,
		clock:       clock.Real(),
		expiry:      DefaultExpiry(),
		logger:      slog.New(slog.DiscardHandler),
		hoursPerDay: decimal.NewFromInt(8),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.expired.Store(true)
	return t
}

// GetTaskNodeByID returns the node for id, refreshing first when the tree
// is stale. An unknown id yields nil without error.
func (t *TaskTree) GetTaskNodeByID(ctx context.Context, id int64) (*TaskNode, error) {
	if err := t.CheckRefresh(ctx); err != nil {
		return nil, err
	}
	return t.PeekTaskNode(id), nil
}

// PeekTaskNode looks up id without the staleness check.
func (t *TaskTree) PeekTaskNode(id int64) *TaskNode {
	t.mapMu.RLock()
	defer t.mapMu.RUnlock()
	return t.nodes[id]
}

func (t *TaskTree) Root(ctx context.Context) (*TaskNode, error) {
	if err := t.CheckRefresh(ctx); err != nil {
		return nil, err
	}
	return t.currentRoot(), nil
}

func (t *TaskTree) currentRoot() *TaskNode {
	t.mapMu.RLock()
	defer t.mapMu.RUnlock()
	return t.root
}

// Size returns the number of indexed nodes.
func (t *TaskTree) Size() int {
	t.mapMu.RLock()
	defer t.mapMu.RUnlock()
	return len(t.nodes)
}

// TimeOfLastModification returns when the structure or an access rule last
// changed. Successive values are strictly increasing.
func (t *TaskTree) TimeOfLastModification() time.Time {
	return time.UnixMilli(t.lastModified.Load())
}

func (t *TaskTree) touch() {
	now := t.clock.Now().UnixMilli()
	for {
		last := t.lastModified.Load()
		next := now
		if next <= last {
			next = last + 1
		}
		if t.lastModified.CompareAndSwap(last, next) {
			return
		}
	}
}

// IsExpired reports whether the next checked lookup will rebuild the tree.
func (t *TaskTree) IsExpired() bool {
	if t.expired.Load() {
		return true
	}
	last := t.lastRefresh.Load()
	if last == 0 {
		return true
	}
	return t.expiry.Expired(time.Unix(0, last), t.clock.Now())
}

// SetExpired forces a rebuild on the next checked lookup.
func (t *TaskTree) SetExpired() {
	t.expired.Store(true)
}

// Clear drops every node and marks the tree expired.
func (t *TaskTree) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.mapMu.Lock()
	t.root = nil
	t.nodes = make(map[int64]*TaskNode)
	t.mapMu.Unlock()

	t.orderMu.Lock()
	t.orderRefs = nil
	t.orderDirty = true
	t.orderMu.Unlock()

	t.lastRefresh.Store(0)
	t.expired.Store(true)
	t.touch()
}

// AddTaskNode inserts a node for a newly persisted task. A task whose parent
// is not in the tree is attached under the root, or becomes the root when
// the tree is empty.
func (t *TaskTree) AddTaskNode(task *domain.Task) (*TaskNode, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.addTaskNodeLocked(task)
}

func (t *TaskTree) addTaskNodeLocked(task *domain.Task) (*TaskNode, error) {
	if task == nil {
		return nil, fmt.Errorf("add task node: nil task")
	}
	if t.PeekTaskNode(task.ID) != nil {
		return nil, fmt.Errorf("add task node %d: %w", task.ID, ErrTaskExists)
	}

	node := newTaskNode(task)
	node.setBookable(t.bookable(node.task))

	var parent *TaskNode
	if task.ParentID != nil {
		parent = t.PeekTaskNode(*task.ParentID)
	}
	root := t.currentRoot()

	switch {
	case parent != nil:
		parent.addChild(node)
	case root == nil:
		if task.ParentID != nil {
			t.logger.Warn("parent of new task not in tree, task becomes root",
				"task_id", task.ID, "parent_id", *task.ParentID)
			node.setParentRef(nil)
		}
	default:
		if task.ParentID != nil {
			t.logger.Warn("parent of new task not in tree, attaching under root",
				"task_id", task.ID, "parent_id", *task.ParentID, "root_id", root.id)
			recordAnomaly(anomalyMissingParent)
		}
		node.setParentRef(&root.id)
		root.addChild(node)
	}

	t.mapMu.Lock()
	t.nodes[node.id] = node
	if root == nil && parent == nil {
		t.root = node
	}
	t.mapMu.Unlock()

	t.touch()
	t.SetOrderPositionsDirty()
	return node, nil
}

// AddOrUpdateTaskNode inserts the task or updates the cached record of an
// existing node, moving it when its parent changed.
func (t *TaskTree) AddOrUpdateTaskNode(task *domain.Task) (*TaskNode, error) {
	if task == nil {
		return nil, fmt.Errorf("update task node: nil task")
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	node := t.PeekTaskNode(task.ID)
	if node == nil {
		return t.addTaskNodeLocked(task)
	}

	updated := task.Clone()
	currentParent := node.Parent()
	root := t.currentRoot()

	var target *TaskNode
	switch {
	case updated.ParentID == nil:
		if node != root && root != nil {
			t.logger.Warn("task lost its parent, keeping it under root",
				"task_id", node.id, "root_id", root.id)
			target = root
		}
	default:
		target = t.PeekTaskNode(*updated.ParentID)
		if target == nil {
			if root == nil || root == node {
				return nil, fmt.Errorf("update task node %d: parent %d: %w",
					node.id, *updated.ParentID, ErrUnknownTask)
			}
			t.logger.Warn("parent of task not in tree, attaching under root",
				"task_id", node.id, "parent_id", *updated.ParentID, "root_id", root.id)
			recordAnomaly(anomalyMissingParent)
			target = root
		}
	}

	if target != nil {
		if target == node || node.IsParentOf(target) {
			return nil, fmt.Errorf("update task node %d: parent %d: %w",
				node.id, target.id, ErrCyclicParent)
		}
		updated.ParentID = &target.id
	}

	structural := target != currentParent
	node.setTask(updated, t.bookable(updated))
	if structural && target != nil {
		node.moveTo(target)
	}

	if structural {
		t.SetOrderPositionsDirty()
	}
	t.touch()
	return node, nil
}

// SetGroupTaskAccess stores the rule on the node of rule.TaskID.
func (t *TaskTree) SetGroupTaskAccess(rule *domain.GroupTaskAccess) error {
	if rule == nil {
		return fmt.Errorf("set group task access: nil rule")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	node := t.PeekTaskNode(rule.TaskID)
	if node == nil {
		return fmt.Errorf("set group task access on task %d: %w", rule.TaskID, ErrUnknownTask)
	}
	node.SetGroupTaskAccess(rule)
	t.touch()
	return nil
}

// RemoveGroupTaskAccess drops the group's rule from the task's node.
func (t *TaskTree) RemoveGroupTaskAccess(taskID, groupID int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	node := t.PeekTaskNode(taskID)
	if node == nil {
		return fmt.Errorf("remove group task access on task %d: %w", taskID, ErrUnknownTask)
	}
	if node.RemoveGroupTaskAccess(groupID) {
		t.touch()
	}
	return nil
}

// GetPath returns the nodes from below ancestorID (or below the root when
// ancestorID is nil) down to the task, top-down. Unknown tasks give an
// empty path.
func (t *TaskTree) GetPath(ctx context.Context, taskID int64, ancestorID *int64) ([]*TaskNode, error) {
	node, err := t.GetTaskNodeByID(ctx, taskID)
	if err != nil || node == nil {
		return nil, err
	}
	var stop int64 = -1
	if ancestorID != nil {
		stop = *ancestorID
	}
	return node.PathToAncestor(stop), nil
}

// GetDescendants returns the subtree below the task in depth-first order.
func (t *TaskTree) GetDescendants(ctx context.Context, taskID int64, includeSelf bool) ([]*TaskNode, error) {
	node, err := t.GetTaskNodeByID(ctx, taskID)
	if err != nil || node == nil {
		return nil, err
	}
	var out []*TaskNode
	if includeSelf {
		out = append(out, node)
	}
	return collectDescendants(node, out), nil
}

func collectDescendants(n *TaskNode, out []*TaskNode) []*TaskNode {
	for _, c := range n.Children() {
		out = append(out, c)
		out = collectDescendants(c, out)
	}
	return out
}

func (t *TaskTree) GetDescendantIDs(ctx context.Context, taskID int64, includeSelf bool) ([]int64, error) {
	nodes, err := t.GetDescendants(ctx, taskID, includeSelf)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(nodes))
	for i, n := range nodes {
		ids[i] = n.id
	}
	return ids, nil
}

// GetAncestorAndDescendantTaskIDs returns the sorted union of the given
// tasks, all their ancestors and all their descendants. The root is only
// included when withRoot is set.
func (t *TaskTree) GetAncestorAndDescendantTaskIDs(ctx context.Context, taskIDs []int64, withRoot bool) ([]int64, error) {
	if err := t.CheckRefresh(ctx); err != nil {
		return nil, err
	}
	root := t.currentRoot()
	set := make(map[int64]struct{})
	for _, id := range taskIDs {
		node := t.PeekTaskNode(id)
		if node == nil {
			continue
		}
		for cur := node; cur != nil; cur = cur.Parent() {
			set[cur.id] = struct{}{}
		}
		for _, d := range collectDescendants(node, nil) {
			set[d.id] = struct{}{}
		}
	}
	if root != nil && !withRoot {
		delete(set, root.id)
	}
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Walk visits the tree depth-first from the root, children ordered by
// title. Returning false from fn skips the node's subtree.
func (t *TaskTree) Walk(ctx context.Context, fn func(node *TaskNode, depth int) bool) error {
	root, err := t.Root(ctx)
	if err != nil || root == nil {
		return err
	}
	walkNode(root, 0, fn)
	return nil
}

// WalkFrom is Walk starting at the given task.
func (t *TaskTree) WalkFrom(ctx context.Context, taskID int64, fn func(node *TaskNode, depth int) bool) error {
	node, err := t.GetTaskNodeByID(ctx, taskID)
	if err != nil {
		return err
	}
	if node == nil {
		return fmt.Errorf("walk from task %d: %w", taskID, ErrUnknownTask)
	}
	walkNode(node, 0, fn)
	return nil
}

func walkNode(n *TaskNode, depth int, fn func(*TaskNode, int) bool) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.SortedChildren() {
		walkNode(c, depth+1, fn)
	}
}

// GetProject returns the task's own project or the nearest ancestor's.
func (t *TaskTree) GetProject(ctx context.Context, taskID int64) (*domain.Project, error) {
	node, err := t.GetTaskNodeByID(ctx, taskID)
	if err != nil || node == nil {
		return nil, err
	}
	return node.Project(true), nil
}

// Duration returns the minutes booked on the task, including its subtree
// when recursive is set. Missing per-node values are loaded on demand.
func (t *TaskTree) Duration(ctx context.Context, taskID int64, recursive bool) (int64, error) {
	node, err := t.GetTaskNodeByID(ctx, taskID)
	if err != nil || node == nil {
		return 0, err
	}
	return t.duration(ctx, node, recursive)
}

func (t *TaskTree) duration(ctx context.Context, n *TaskNode, recursive bool) (int64, error) {
	own, gen := n.totalDurationGen()
	if own == durationUnknown {
		own = 0
		if t.sources.Durations != nil {
			minutes, err := t.sources.Durations.SumMinutesForTask(ctx, n.id)
			if err != nil {
				return 0, fmt.Errorf("load duration of task %d: %w", n.id, err)
			}
			own = minutes
		}
		n.storeLoadedDuration(gen, own)
	}
	if !recursive {
		return own, nil
	}
	total := own
	for _, c := range n.Children() {
		d, err := t.duration(ctx, c, true)
		if err != nil {
			return 0, err
		}
		total += d
	}
	return total, nil
}

// ResetTotalDuration forces the task's minutes to be reloaded on next use.
func (t *TaskTree) ResetTotalDuration(taskID int64) {
	if node := t.PeekTaskNode(taskID); node != nil {
		node.resetTotalDuration()
	}
}

func (t *TaskTree) IsBookableForTimesheets(ctx context.Context, taskID int64) (bool, error) {
	node, err := t.GetTaskNodeByID(ctx, taskID)
	if err != nil || node == nil {
		return false, err
	}
	return node.IsBookableForTimesheets(), nil
}
