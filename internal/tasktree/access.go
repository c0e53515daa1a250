package tasktree

import (
	"sort"

	"github.com/alexanderramin/tasktree/internal/domain"
)

// GroupTaskAccess returns a copy of the explicit rule of the group on this
// task, or nil.
func (n *TaskNode) GroupTaskAccess(groupID int64) *domain.GroupTaskAccess {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.accessEntries[groupID].Clone()
}

// GroupTaskAccessList returns copies of all explicit rules ordered by group id.
func (n *TaskNode) GroupTaskAccessList() []*domain.GroupTaskAccess {
	n.mu.RLock()
	out := make([]*domain.GroupTaskAccess, 0, len(n.accessEntries))
	for _, g := range n.accessEntries {
		out = append(out, g.Clone())
	}
	n.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].GroupID < out[j].GroupID })
	return out
}

// AccessEntry returns the entry of the group's explicit rule for the access
// type. Only the rule on this node is consulted.
func (n *TaskNode) AccessEntry(groupID int64, accessType domain.AccessType) (domain.AccessEntry, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.accessEntries[groupID].Entry(accessType)
}

// HasPermission reports whether the group's explicit rule on this node
// grants op for the access type. Missing rule or entry means false.
func (n *TaskNode) HasPermission(groupID int64, accessType domain.AccessType, op domain.OperationType) bool {
	e, ok := n.AccessEntry(groupID, accessType)
	if !ok {
		return false
	}
	return e.Allows(op)
}

// SetGroupTaskAccess stores a copy of the rule, replacing any earlier rule of
// the same group. The rule's TaskID is set to this node.
func (n *TaskNode) SetGroupTaskAccess(rule *domain.GroupTaskAccess) {
	if rule == nil {
		return
	}
	c := rule.Clone()
	c.TaskID = n.id
	n.mu.Lock()
	defer n.mu.Unlock()
	n.accessEntries[c.GroupID] = c
}

// RemoveGroupTaskAccess drops the group's rule and reports whether one existed.
func (n *TaskNode) RemoveGroupTaskAccess(groupID int64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.accessEntries[groupID]; !ok {
		return false
	}
	delete(n.accessEntries, groupID)
	return true
}

// FindGroupTaskAccess resolves the rule that applies to this node for the
// group: its own rule if present, otherwise the rule of the nearest ancestor
// that is marked recursive. Non-recursive ancestor rules are skipped.
// The second result is the node carrying the rule.
func (n *TaskNode) FindGroupTaskAccess(groupID int64) (*domain.GroupTaskAccess, *TaskNode) {
	if g := n.GroupTaskAccess(groupID); g != nil {
		return g, n
	}
	for p := n.Parent(); p != nil; p = p.Parent() {
		g := p.GroupTaskAccess(groupID)
		if g != nil && g.Recursive {
			return g, p
		}
	}
	return nil, nil
}
