package cli

import (
	"fmt"

	"github.com/alexanderramin/tasktree/internal/cli/formatter"
	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/alexanderramin/tasktree/internal/tasktree"
	"github.com/spf13/cobra"
)

func newTreeCmd(app *App) *cobra.Command {
	var rootRef string
	var depth int
	var showDeleted bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the task tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var items []formatter.TreeItem
			visit := func(n *tasktree.TaskNode, level int) bool {
				if n.IsDeleted() && !showDeleted {
					return false
				}
				task := n.Task()
				item := formatter.TreeItem{
					ID:      n.ID(),
					Title:   task.Title,
					Level:   level,
					IsLast:  level == 0 || isLastVisible(n, showDeleted),
					Closed:  task.Status == domain.TaskClosed,
					Deleted: task.Deleted,
				}
				if minutes, err := app.Tree.Duration(ctx, n.ID(), true); err == nil && minutes > 0 {
					item.Detail = formatter.FormatMinutes(minutes)
				}
				items = append(items, item)
				return depth <= 0 || level < depth
			}

			var err error
			if rootRef != "" {
				var id int64
				if id, err = resolveTaskID(ctx, app, rootRef); err != nil {
					return err
				}
				err = app.Tree.WalkFrom(ctx, id, visit)
			} else {
				err = app.Tree.Walk(ctx, visit)
			}
			if err != nil {
				return err
			}

			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("No tasks."))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTree(items))
			return nil
		},
	}

	cmd.Flags().StringVar(&rootRef, "root", "", "Start at this task (id or title)")
	cmd.Flags().IntVar(&depth, "depth", 0, "Maximum depth below the start task (0 = unlimited)")
	cmd.Flags().BoolVar(&showDeleted, "deleted", false, "Include deleted tasks")

	return cmd
}

// isLastVisible reports whether n is the last of its siblings that the tree
// command prints.
func isLastVisible(n *tasktree.TaskNode, showDeleted bool) bool {
	parent := n.Parent()
	if parent == nil {
		return true
	}
	siblings := parent.SortedChildren()
	for i := len(siblings) - 1; i >= 0; i-- {
		s := siblings[i]
		if s.IsDeleted() && !showDeleted {
			continue
		}
		return s.ID() == n.ID()
	}
	return true
}
