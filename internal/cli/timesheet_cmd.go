package cli

import (
	"fmt"

	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/spf13/cobra"
)

func newTimesheetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timesheet",
		Short: "Book and remove time sheets",
	}

	cmd.AddCommand(
		newTimesheetLogCmd(app),
		newTimesheetDeleteCmd(app),
	)

	return cmd
}

func newTimesheetLogCmd(app *App) *cobra.Command {
	var minutes int
	var note string

	cmd := &cobra.Command{
		Use:   "log TASK",
		Short: "Book minutes on a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			taskID, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			ts := &domain.Timesheet{TaskID: taskID, Minutes: minutes, Note: note}
			if err := app.Timesheets.Log(ctx, ts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %dm on task #%d (%s)\n", minutes, taskID, ts.ID)
			return nil
		},
	}

	cmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "Minutes spent")
	cmd.Flags().StringVar(&note, "note", "", "Optional note")
	_ = cmd.MarkFlagRequired("minutes")

	return cmd
}

func newTimesheetDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a time sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Timesheets.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted time sheet %s\n", args[0])
			return nil
		},
	}
}
