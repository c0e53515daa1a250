package tasktree

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/tasktree/internal/domain"
)

const kost2Wildcard = "*"

// GetKost2List returns the cost centers bookable on the task, sorted by
// code. With recursive set, ancestors are tried in turn until one yields a
// non-empty list. Nil means no cost center applies.
func (t *TaskTree) GetKost2List(ctx context.Context, taskID int64, recursive bool) ([]*domain.Kost2, error) {
	node, err := t.GetTaskNodeByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	for node != nil {
		list, err := t.kost2ListOf(ctx, node)
		if err != nil {
			return nil, fmt.Errorf("kost2 list of task %d: %w", node.id, err)
		}
		if len(list) > 0 {
			sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
			return list, nil
		}
		if !recursive {
			break
		}
		node = node.Parent()
	}
	return nil, nil
}

// kost2ListOf resolves the cost centers of one node without looking at
// ancestors, except for inheriting the project when the task carries its
// own code list.
func (t *TaskTree) kost2ListOf(ctx context.Context, node *TaskNode) ([]*domain.Kost2, error) {
	task := node.Task()
	codes := domain.ParseKost2List(task.Kost2List)
	project := node.Project(len(codes) > 0)

	if project != nil {
		if t.sources.CostCenters == nil {
			return nil, nil
		}
		active, err := t.sources.CostCenters.ListActiveByNamespace(ctx, project.Namespace)
		if err != nil {
			return nil, err
		}
		return filterKost2(active, codes, task.Kost2IsDenyList), nil
	}

	if task.Kost2IsDenyList || len(codes) == 0 || t.sources.CostCenters == nil {
		return nil, nil
	}
	var result []*domain.Kost2
	for _, code := range codes {
		if code == kost2Wildcard {
			continue
		}
		k, err := t.sources.CostCenters.FindByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if k != nil && k.IsActive() {
			result = append(result, k)
		}
	}
	return result, nil
}

// filterKost2 keeps the codes matching the suffix list in allow mode, or the
// codes matching none of them in deny mode. An empty list keeps all; a lone
// wildcard keeps all in allow mode and none in deny mode.
func filterKost2(candidates []*domain.Kost2, suffixes []string, deny bool) []*domain.Kost2 {
	if len(candidates) == 0 {
		return nil
	}
	if len(suffixes) == 0 {
		return append([]*domain.Kost2(nil), candidates...)
	}
	if len(suffixes) == 1 && suffixes[0] == kost2Wildcard {
		if deny {
			return nil
		}
		return append([]*domain.Kost2(nil), candidates...)
	}
	var out []*domain.Kost2
	for _, k := range candidates {
		keep := deny
		for _, s := range suffixes {
			if strings.HasSuffix(k.Code, s) {
				keep = !deny
				break
			}
		}
		if keep {
			out = append(out, k)
		}
	}
	return out
}
