package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/spf13/cobra"
)

func newAccessCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "access",
		Short: "Manage group access rules",
	}

	cmd.AddCommand(
		newAccessSetCmd(app),
		newAccessRemoveCmd(app),
		newAccessCheckCmd(app),
	)

	return cmd
}

func newAccessSetCmd(app *App) *cobra.Command {
	var groupID int64
	var recursive bool
	var types []string
	var ops, description string

	cmd := &cobra.Command{
		Use:   "set TASK",
		Short: "Grant a group access on a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			taskID, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			rule := &domain.GroupTaskAccess{
				TaskID:      taskID,
				GroupID:     groupID,
				Recursive:   recursive,
				Description: description,
			}
			for _, at := range types {
				entry, err := parseAccessEntry(at, ops)
				if err != nil {
					return err
				}
				rule.SetEntry(entry)
			}
			if err := app.Access.Set(ctx, rule); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set access of group %d on task #%d\n", groupID, taskID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&groupID, "group", 0, "Group id")
	cmd.Flags().BoolVar(&recursive, "recursive", false, "Apply to descendants without a rule of their own")
	cmd.Flags().StringSliceVar(&types, "types", []string{string(domain.AccessTasks)}, "Access types (tasks, timesheets, own_timesheets, task_access_management)")
	cmd.Flags().StringVar(&ops, "ops", "s", "Granted operations: any of s(elect) i(nsert) u(pdate) d(elete)")
	cmd.Flags().StringVar(&description, "description", "", "Free-text note")
	_ = cmd.MarkFlagRequired("group")

	return cmd
}

func parseAccessEntry(accessType, ops string) (domain.AccessEntry, error) {
	accessType = strings.ToLower(strings.TrimSpace(accessType))
	if !domain.ValidAccessTypes[accessType] {
		return domain.AccessEntry{}, fmt.Errorf("unknown access type %q", accessType)
	}
	e := domain.AccessEntry{Type: domain.AccessType(accessType)}
	for _, r := range strings.ToLower(ops) {
		switch r {
		case 's':
			e.Select = true
		case 'i':
			e.Insert = true
		case 'u':
			e.Update = true
		case 'd':
			e.Delete = true
		default:
			return domain.AccessEntry{}, fmt.Errorf("unknown operation %q in %q", r, ops)
		}
	}
	return e, nil
}

func newAccessRemoveCmd(app *App) *cobra.Command {
	var groupID int64

	cmd := &cobra.Command{
		Use:   "remove TASK",
		Short: "Remove a group's rule from a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			taskID, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Access.Remove(ctx, taskID, groupID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed access of group %d on task #%d\n", groupID, taskID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&groupID, "group", 0, "Group id")
	_ = cmd.MarkFlagRequired("group")

	return cmd
}

func newAccessCheckCmd(app *App) *cobra.Command {
	var groupID int64
	var accessType, op string

	cmd := &cobra.Command{
		Use:   "check TASK",
		Short: "Show which rule grants a group access on a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			node, err := requireNode(ctx, app, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			rule, owner := node.FindGroupTaskAccess(groupID)
			if rule == nil {
				fmt.Fprintf(out, "Group %d has no rule on task #%d or a recursive ancestor\n", groupID, node.ID())
				return nil
			}
			entry, ok := rule.Entry(domain.AccessType(accessType))
			allowed := ok && entry.Allows(domain.OperationType(op))
			fmt.Fprintf(out, "Rule of group %d on #%d %s: %s %s allowed=%t\n",
				groupID, owner.ID(), owner.Title(), accessType, op, allowed)
			return nil
		},
	}

	cmd.Flags().Int64Var(&groupID, "group", 0, "Group id")
	cmd.Flags().StringVar(&accessType, "type", string(domain.AccessTasks), "Access type")
	cmd.Flags().StringVar(&op, "op", string(domain.OpSelect), "Operation (select, insert, update, delete)")
	_ = cmd.MarkFlagRequired("group")

	return cmd
}
