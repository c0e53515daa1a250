package cli

import (
	"fmt"

	"github.com/alexanderramin/tasktree/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newNodeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "node ID",
		Short: "Show one task with its derived figures",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			node, err := requireNode(ctx, app, args[0])
			if err != nil {
				return err
			}
			id := node.ID()

			path, err := app.Tree.GetPath(ctx, id, nil)
			if err != nil {
				return err
			}
			minutes, err := app.Tree.Duration(ctx, id, true)
			if err != nil {
				return err
			}
			personDays, err := app.Tree.GetPersonDays(ctx, id)
			if err != nil {
				return err
			}
			ordered, err := app.Tree.GetOrderedPersonDaysSum(ctx, id)
			if err != nil {
				return err
			}

			titles := make([]string, 0, len(path))
			for _, n := range path {
				titles = append(titles, n.Title())
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatNode(formatter.NodeDetail{
				Task:        node.Task(),
				Path:        titles,
				Project:     node.Project(true),
				Bookable:    node.IsBookableForTimesheets(),
				Minutes:     minutes,
				PersonDays:  personDays,
				Ordered:     ordered,
				Children:    len(node.Children()),
				AccessRules: node.GroupTaskAccessList(),
			}))
			return nil
		},
	}
}

func newPathCmd(app *App) *cobra.Command {
	var ancestorRef string

	cmd := &cobra.Command{
		Use:   "path ID",
		Short: "Print the path from the root (or --ancestor) down to a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			var ancestor *int64
			if ancestorRef != "" {
				aid, err := resolveTaskID(ctx, app, ancestorRef)
				if err != nil {
					return err
				}
				ancestor = &aid
			}

			path, err := app.Tree.GetPath(ctx, id, ancestor)
			if err != nil {
				return err
			}
			titles := make([]string, 0, len(path))
			for _, n := range path {
				titles = append(titles, n.Title())
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPath(titles))
			return nil
		},
	}

	cmd.Flags().StringVar(&ancestorRef, "ancestor", "", "Stop below this task (id or title)")
	return cmd
}

func newKost2Cmd(app *App) *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "kost2 ID",
		Short: "List the cost centers a task may book on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			list, err := app.Tree.GetKost2List(ctx, id, recursive)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatKost2List(list))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Fall back to ancestor lists")
	return cmd
}

func newPersonDaysCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "persondays ID",
		Short: "Show planned and ordered person days of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			planned, err := app.Tree.GetPersonDays(ctx, id)
			if err != nil {
				return err
			}
			ordered, err := app.Tree.GetOrderedPersonDaysSum(ctx, id)
			if err != nil {
				return err
			}
			source, err := app.Tree.GetPersonDaysNode(ctx, id)
			if err != nil {
				return err
			}
			entries, err := app.Tree.GetOrderPositionEntries(ctx, id)
			if err != nil {
				return err
			}

			from := formatter.Dim("--")
			if source != nil {
				from = fmt.Sprintf("#%d %s", source.ID(), source.Title())
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.KeyValue([][2]string{
				{"Planned", formatter.FormatPersonDays(planned)},
				{"Ordered", formatter.FormatPersonDays(ordered)},
				{"Defined at", from},
			}))
			fmt.Fprintln(out)
			fmt.Fprintln(out, formatter.FormatOrderPositions(entries))
			return nil
		},
	}
}

func newRefreshCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Rebuild the task tree from the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Tree.Refresh(cmd.Context()); err != nil {
				return err
			}
			if err := app.Tree.RefreshOrderPositions(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Refreshed %d tasks\n", app.Tree.Size())
			return nil
		},
	}
}
