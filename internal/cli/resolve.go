package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/tasktree/internal/tasktree"
)

// resolveTaskID resolves a task identifier which can be:
//   - A numeric task id
//   - A title, matched case-insensitively against the whole tree
func resolveTaskID(ctx context.Context, app *App, input string) (int64, error) {
	if input == "" {
		return 0, fmt.Errorf("task ID is required")
	}
	if id, err := strconv.ParseInt(input, 10, 64); err == nil {
		node, err := app.Tree.GetTaskNodeByID(ctx, id)
		if err != nil {
			return 0, err
		}
		if node == nil {
			return 0, fmt.Errorf("task #%d: %w", id, tasktree.ErrUnknownTask)
		}
		return id, nil
	}

	var matches []int64
	err := app.Tree.Walk(ctx, func(n *tasktree.TaskNode, _ int) bool {
		if strings.EqualFold(n.Title(), input) {
			matches = append(matches, n.ID())
		}
		return true
	})
	if err != nil {
		return 0, err
	}

	switch len(matches) {
	case 0:
		return 0, fmt.Errorf("task not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return 0, fmt.Errorf("task title %q is ambiguous (%d matches)", input, len(matches))
	}
}

// requireNode resolves input and returns its node.
func requireNode(ctx context.Context, app *App, input string) (*tasktree.TaskNode, error) {
	id, err := resolveTaskID(ctx, app, input)
	if err != nil {
		return nil, err
	}
	node, err := app.Tree.GetTaskNodeByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("task #%d: %w", id, tasktree.ErrUnknownTask)
	}
	return node, nil
}
