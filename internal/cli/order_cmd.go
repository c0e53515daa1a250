package cli

import (
	"fmt"

	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/spf13/cobra"
)

func newOrderCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Manage order positions booked onto tasks",
	}

	cmd.AddCommand(
		newOrderAddCmd(app),
		newOrderRemoveCmd(app),
	)

	return cmd
}

func newOrderAddCmd(app *App) *cobra.Command {
	var orderNumber, positionNumber int
	var title string
	personDays := &nullDecimalFlag{}

	cmd := &cobra.Command{
		Use:   "add TASK",
		Short: "Add an order position to a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			taskID, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			pos := &domain.OrderContribution{
				OrderNumber:    orderNumber,
				PositionNumber: positionNumber,
				TaskID:         taskID,
				Title:          title,
				PersonDays:     personDays.value,
			}
			if err := app.Orders.AddPosition(ctx, pos); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added position %s to task #%d (%s)\n", pos.Key(), taskID, pos.ID)
			return nil
		},
	}

	cmd.Flags().IntVar(&orderNumber, "order", 0, "Order number")
	cmd.Flags().IntVar(&positionNumber, "position", 1, "Position number within the order")
	cmd.Flags().StringVar(&title, "title", "", "Position title")
	cmd.Flags().Var(personDays, "person-days", "Ordered workload in person days")
	_ = cmd.MarkFlagRequired("order")

	return cmd
}

func newOrderRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Remove an order position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Orders.RemovePosition(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed order position %s\n", args[0])
			return nil
		},
	}
}
