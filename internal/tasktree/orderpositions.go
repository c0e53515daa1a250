package tasktree

import (
	"context"
	"fmt"

	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/shopspring/decimal"
)

// SetOrderPositionsDirty makes the next order position query reload the
// references.
func (t *TaskTree) SetOrderPositionsDirty() {
	t.orderMu.Lock()
	t.orderDirty = true
	t.orderMu.Unlock()
}

// RefreshOrderPositions reloads all order position references and
// recomputes every node's ordered person days.
func (t *TaskTree) RefreshOrderPositions(ctx context.Context) error {
	t.orderMu.Lock()
	defer t.orderMu.Unlock()
	_, err := t.refreshOrderPositionsLocked(ctx)
	return err
}

// orderPositions returns the current references, reloading them when dirty.
// The returned map is never mutated after publication.
func (t *TaskTree) orderPositions(ctx context.Context) (map[int64][]domain.OrderContribution, error) {
	t.orderMu.Lock()
	defer t.orderMu.Unlock()
	if !t.orderDirty && t.orderRefs != nil {
		return t.orderRefs, nil
	}
	return t.refreshOrderPositionsLocked(ctx)
}

func (t *TaskTree) refreshOrderPositionsLocked(ctx context.Context) (map[int64][]domain.OrderContribution, error) {
	refs := map[int64][]domain.OrderContribution{}
	if t.sources.Orders != nil {
		loaded, err := t.sources.Orders.ListWorkloadReferences(ctx)
		if err != nil {
			orderRefreshTotal.WithLabelValues(resultFailure).Inc()
			return nil, fmt.Errorf("refresh order positions: %w", err)
		}
		if loaded != nil {
			refs = loaded
		}
	}

	t.mapMu.RLock()
	nodes := t.nodes
	t.mapMu.RUnlock()

	for _, n := range nodes {
		n.setOrderedPersonDays(decimal.NullDecimal{})
	}
	for taskID, positions := range refs {
		node := nodes[taskID]
		if node == nil {
			t.logger.Warn("order positions reference unknown task",
				"task_id", taskID, "positions", len(positions))
			recordAnomaly(anomalyUnknownPosition)
			continue
		}
		node.setOrderedPersonDays(sumPersonDays(positions))
	}

	t.orderRefs = refs
	t.orderDirty = false
	orderRefreshTotal.WithLabelValues(resultSuccess).Inc()
	return refs, nil
}

func sumPersonDays(positions []domain.OrderContribution) decimal.NullDecimal {
	var sum decimal.NullDecimal
	for _, p := range positions {
		if !p.PersonDays.Valid {
			continue
		}
		if !sum.Valid {
			sum = decimal.NullDecimal{Decimal: decimal.Zero, Valid: true}
		}
		sum.Decimal = sum.Decimal.Add(p.PersonDays.Decimal)
	}
	return sum
}

// HasOrderPositions reports whether order positions reference the task, or
// with recursive set any task in its subtree.
func (t *TaskTree) HasOrderPositions(ctx context.Context, taskID int64, recursive bool) (bool, error) {
	node, err := t.GetTaskNodeByID(ctx, taskID)
	if err != nil || node == nil {
		return false, err
	}
	refs, err := t.orderPositions(ctx)
	if err != nil {
		return false, err
	}
	return hasPositions(refs, node, recursive), nil
}

func hasPositions(refs map[int64][]domain.OrderContribution, n *TaskNode, recursive bool) bool {
	if len(refs[n.id]) > 0 {
		return true
	}
	if !recursive {
		return false
	}
	for _, c := range n.Children() {
		if hasPositions(refs, c, true) {
			return true
		}
	}
	return false
}

// GetOrderPositionEntries returns the order positions referencing the task
// directly.
func (t *TaskTree) GetOrderPositionEntries(ctx context.Context, taskID int64) ([]domain.OrderContribution, error) {
	if err := t.CheckRefresh(ctx); err != nil {
		return nil, err
	}
	refs, err := t.orderPositions(ctx)
	if err != nil {
		return nil, err
	}
	positions := refs[taskID]
	if len(positions) == 0 {
		return nil, nil
	}
	return append([]domain.OrderContribution(nil), positions...), nil
}

// GetPersonDays returns the planned workload of the task: the person days
// ordered on it directly if it has order positions, else its max hours
// converted to days, else the sum over its children. Deleted tasks and
// subtrees without any figure yield null.
//
// Only positions on the task itself win over its max hours; positions further
// down the subtree do not. A budgeted parent of an ordered child answers with
// its own max hours, and a parent with neither figure sums its children, so
// no order is counted twice.
func (t *TaskTree) GetPersonDays(ctx context.Context, taskID int64) (decimal.NullDecimal, error) {
	node, err := t.GetTaskNodeByID(ctx, taskID)
	if err != nil || node == nil {
		return decimal.NullDecimal{}, err
	}
	refs, err := t.orderPositions(ctx)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return t.personDays(refs, node), nil
}

func (t *TaskTree) personDays(refs map[int64][]domain.OrderContribution, n *TaskNode) decimal.NullDecimal {
	if n.IsDeleted() {
		return decimal.NullDecimal{}
	}
	if len(refs[n.id]) > 0 {
		return n.OrderedPersonDays()
	}
	if h := n.MaxHours(); h != nil {
		return decimal.NullDecimal{
			Decimal: decimal.NewFromInt(int64(*h)).Div(t.hoursPerDay),
			Valid:   true,
		}
	}
	var sum decimal.NullDecimal
	for _, c := range n.Children() {
		d := t.personDays(refs, c)
		if !d.Valid {
			continue
		}
		if !sum.Valid {
			sum = decimal.NullDecimal{Decimal: decimal.Zero, Valid: true}
		}
		sum.Decimal = sum.Decimal.Add(d.Decimal)
	}
	return sum
}

// GetPersonDaysNode returns the task or the nearest ancestor whose own
// order positions or max hours define the planned workload, or nil.
func (t *TaskTree) GetPersonDaysNode(ctx context.Context, taskID int64) (*TaskNode, error) {
	node, err := t.GetTaskNodeByID(ctx, taskID)
	if err != nil || node == nil {
		return nil, err
	}
	refs, err := t.orderPositions(ctx)
	if err != nil {
		return nil, err
	}
	for cur := node; cur != nil; cur = cur.Parent() {
		if len(refs[cur.id]) > 0 || cur.MaxHours() != nil {
			return cur, nil
		}
	}
	return nil, nil
}

// GetOrderedPersonDaysSum sums the ordered person days of the task and its
// whole subtree, ignoring max hours. Null when no position in the subtree
// carries a workload.
func (t *TaskTree) GetOrderedPersonDaysSum(ctx context.Context, taskID int64) (decimal.NullDecimal, error) {
	node, err := t.GetTaskNodeByID(ctx, taskID)
	if err != nil || node == nil {
		return decimal.NullDecimal{}, err
	}
	if _, err := t.orderPositions(ctx); err != nil {
		return decimal.NullDecimal{}, err
	}
	return orderedSum(node), nil
}

func orderedSum(n *TaskNode) decimal.NullDecimal {
	sum := n.OrderedPersonDays()
	for _, c := range n.Children() {
		d := orderedSum(c)
		if !d.Valid {
			continue
		}
		if !sum.Valid {
			sum = decimal.NullDecimal{Decimal: decimal.Zero, Valid: true}
		}
		sum.Decimal = sum.Decimal.Add(d.Decimal)
	}
	return sum
}
