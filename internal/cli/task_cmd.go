package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/spf13/cobra"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	cmd.AddCommand(
		newTaskAddCmd(app),
		newTaskMoveCmd(app),
		newTaskCloseCmd(app),
	)

	return cmd
}

func newTaskAddCmd(app *App) *cobra.Command {
	var title, parentRef, kost2, booking string
	var deny bool
	maxHours := &optionalIntFlag{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t := &domain.Task{
				Title:           title,
				Status:          domain.TaskOpened,
				BookingStatus:   domain.BookingStatus(strings.ToLower(booking)),
				Kost2IsDenyList: deny,
				MaxHours:        maxHours.value,
			}
			if parentRef != "" {
				parentID, err := resolveTaskID(ctx, app, parentRef)
				if err != nil {
					return err
				}
				t.ParentID = &parentID
			}
			if cmd.Flags().Changed("kost2") {
				t.Kost2List = &kost2
			}

			node, err := app.Tasks.Create(ctx, t)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task #%d %s\n", node.ID(), node.Title())
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&parentRef, "parent", "", "Parent task (id or title); defaults to the root")
	cmd.Flags().Var(maxHours, "max-hours", "Planned maximum hours")
	cmd.Flags().StringVar(&kost2, "kost2", "", "Cost-center suffixes, separated by ',' or ';' ('*' for all)")
	cmd.Flags().BoolVar(&deny, "kost2-deny", false, "Treat --kost2 as a deny list")
	cmd.Flags().StringVar(&booking, "booking", string(domain.BookingInherit), "Booking status (inherit, opened, only_leafs, no_booking, tree_closed)")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newTaskMoveCmd(app *App) *cobra.Command {
	var parentRef string

	cmd := &cobra.Command{
		Use:   "move ID",
		Short: "Move a task under another parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			parentID, err := resolveTaskID(ctx, app, parentRef)
			if err != nil {
				return err
			}
			node, err := app.Tasks.Move(ctx, id, parentID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved task #%d under #%d\n", node.ID(), parentID)
			return nil
		},
	}

	cmd.Flags().StringVar(&parentRef, "parent", "", "New parent task (id or title)")
	_ = cmd.MarkFlagRequired("parent")

	return cmd
}

func newTaskCloseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "close ID",
		Short: "Close a task for further bookings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			t, err := app.Tasks.GetByID(ctx, id)
			if err != nil {
				return err
			}
			t.Status = domain.TaskClosed
			if _, err := app.Tasks.Update(ctx, t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Closed task #%d %s\n", t.ID, t.Title)
			return nil
		},
	}
}
