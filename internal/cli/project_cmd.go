package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/spf13/cobra"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	cmd.AddCommand(newProjectAddCmd(app))

	return cmd
}

func newProjectAddCmd(app *App) *cobra.Command {
	var name, taskRef, namespace string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a project linked to a task subtree",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ns, err := parseNamespace(namespace)
			if err != nil {
				return err
			}
			p := &domain.Project{Name: name, Namespace: ns}
			if taskRef != "" {
				taskID, err := resolveTaskID(ctx, app, taskRef)
				if err != nil {
					return err
				}
				p.TaskID = &taskID
			}
			if err := app.Projects.Create(ctx, p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%d)\n", p.Name, p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().StringVar(&taskRef, "task", "", "Task the project covers (id or title)")
	cmd.Flags().StringVar(&namespace, "namespace", "", "Cost-center namespace as nummernkreis.bereich.number, e.g. 5.10.1")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("namespace")

	return cmd
}

// parseNamespace parses "5.10.1" into a cost-center namespace.
func parseNamespace(s string) (domain.CostCenterNamespace, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return domain.CostCenterNamespace{}, fmt.Errorf("invalid namespace %q: want nummernkreis.bereich.number", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return domain.CostCenterNamespace{}, fmt.Errorf("invalid namespace %q: %q is not a number", s, p)
		}
		nums[i] = n
	}
	return domain.CostCenterNamespace{Nummernkreis: nums[0], Bereich: nums[1], Number: nums[2]}, nil
}
