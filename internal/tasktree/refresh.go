package tasktree

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/tasktree/internal/domain"
)

const refreshKey = "refresh"

// CheckRefresh rebuilds the tree when it is expired.
func (t *TaskTree) CheckRefresh(ctx context.Context) error {
	if !t.IsExpired() {
		return nil
	}
	return t.Refresh(ctx)
}

// Refresh rebuilds the whole tree from a fresh snapshot and publishes it in
// one swap. Concurrent callers share a single rebuild. On failure the
// previously published tree is left untouched.
func (t *TaskTree) Refresh(ctx context.Context) error {
	_, err, _ := t.refreshGroup.Do(refreshKey, func() (any, error) {
		return nil, t.refresh(ctx)
	})
	return err
}

func (t *TaskTree) refresh(ctx context.Context) error {
	start := time.Now()
	err := t.rebuild(ctx)
	refreshDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		refreshTotal.WithLabelValues(resultFailure).Inc()
		t.logger.Error("task tree refresh failed", "error", err)
		return err
	}
	refreshTotal.WithLabelValues(resultSuccess).Inc()
	return nil
}

func (t *TaskTree) rebuild(ctx context.Context) error {
	if t.sources.Snapshots == nil {
		return fmt.Errorf("refresh task tree: %w", errNoSnapshotSource)
	}
	modifiedBefore := t.lastModified.Load()

	snap, err := t.sources.Snapshots.ReadTreeSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("refresh task tree: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	root, nodes, err := t.build(snap)
	if err != nil {
		return fmt.Errorf("refresh task tree: %w", err)
	}

	// The new nodes carry no ordered person days yet. Publishing them and
	// invalidating the order cache under orderMu keeps a reader from pairing
	// them with the previous refs.
	t.orderMu.Lock()
	t.mapMu.Lock()
	t.root = root
	t.nodes = nodes
	t.mapMu.Unlock()
	t.orderDirty = true
	t.orderMu.Unlock()

	nodeCount.Set(float64(len(nodes)))
	t.lastRefresh.Store(t.clock.Now().UnixNano())
	// A write that landed while the snapshot was read may be missing from it.
	t.expired.Store(t.lastModified.Load() != modifiedBefore)
	t.touch()

	t.logger.Info("task tree refreshed", "nodes", len(nodes))
	return nil
}

// build wires a new, unpublished tree from the snapshot.
func (t *TaskTree) build(snap *domain.TreeSnapshot) (*TaskNode, map[int64]*TaskNode, error) {
	nodes := make(map[int64]*TaskNode, len(snap.Tasks))
	ordered := make([]*TaskNode, 0, len(snap.Tasks))
	var root *TaskNode

	for _, task := range snap.Tasks {
		if task == nil {
			continue
		}
		if _, dup := nodes[task.ID]; dup {
			t.logger.Warn("duplicate task id in snapshot, keeping first", "task_id", task.ID)
			recordAnomaly(anomalyDuplicateTask)
			continue
		}
		node := newTaskNode(task)
		if task.ParentID == nil {
			if root == nil {
				root = node
			} else {
				t.logger.Error("second root task found, moving it under the first root",
					"task_id", task.ID, "root_id", root.id)
				recordAnomaly(anomalyDuplicateRoot)
				node.task.ParentID = &root.id
			}
		}
		nodes[task.ID] = node
		ordered = append(ordered, node)
	}

	if root == nil {
		if len(nodes) == 0 {
			return nil, nodes, nil
		}
		return nil, nil, ErrNoRootTask
	}

	for _, node := range ordered {
		if node == root {
			continue
		}
		parentID := *node.task.ParentID
		parent := nodes[parentID]
		if parent == nil {
			t.logger.Error("parent task not found, node left unattached",
				"task_id", node.id, "parent_id", parentID)
			recordAnomaly(anomalyMissingParent)
			continue
		}
		if parent == node || node.IsParentOf(parent) {
			t.logger.Error("parent link would close a cycle, node left unattached",
				"task_id", node.id, "parent_id", parentID)
			recordAnomaly(anomalyCycle)
			continue
		}
		parent.addChild(node)
	}

	for _, rule := range snap.AccessRules {
		node := nodes[rule.TaskID]
		if node == nil {
			t.logger.Warn("access rule references unknown task",
				"task_id", rule.TaskID, "group_id", rule.GroupID)
			recordAnomaly(anomalyUnknownAccess)
			continue
		}
		node.SetGroupTaskAccess(rule)
	}

	for _, p := range snap.Projects {
		if p.TaskID == nil {
			continue
		}
		node := nodes[*p.TaskID]
		if node == nil {
			t.logger.Warn("project references unknown task",
				"project_id", p.ID, "task_id", *p.TaskID)
			recordAnomaly(anomalyUnknownProject)
			continue
		}
		node.setProject(p)
	}

	durations := make(map[int64]int64, len(snap.Durations))
	for _, d := range snap.Durations {
		durations[d.TaskID] = d.Minutes
	}
	for _, node := range ordered {
		node.totalDuration = durations[node.id]
		node.bookableForTimesheets = t.bookable(node.task)
	}

	return root, nodes, nil
}
