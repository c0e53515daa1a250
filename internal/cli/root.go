package cli

import (
	"github.com/alexanderramin/tasktree/internal/cli/formatter"
	"github.com/alexanderramin/tasktree/internal/service"
	"github.com/alexanderramin/tasktree/internal/tasktree"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// App holds the task tree and the services used by CLI commands.
type App struct {
	Tree       *tasktree.TaskTree
	Tasks      service.TaskService
	Access     service.AccessService
	Timesheets service.TimesheetService
	Orders     service.OrderService
	Projects   service.ProjectService

	// Metrics defaults to the process-wide Prometheus registry.
	Metrics prometheus.Gatherer

	// Plain disables colored output by default, e.g. when stdout is not a
	// terminal. The --plain flag can only turn it on.
	Plain bool
}

// NewRootCmd creates the top-level "tasktree" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var plain bool

	root := &cobra.Command{
		Use:           "tasktree",
		Short:         "Inspect and edit the cached work-breakdown tree",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			formatter.SetPlain(plain || app.Plain)
		},
	}
	root.PersistentFlags().BoolVar(&plain, "plain", false, "Disable colors")

	root.AddCommand(
		newTreeCmd(app),
		newNodeCmd(app),
		newPathCmd(app),
		newKost2Cmd(app),
		newPersonDaysCmd(app),
		newTaskCmd(app),
		newAccessCmd(app),
		newTimesheetCmd(app),
		newOrderCmd(app),
		newProjectCmd(app),
		newRefreshCmd(app),
		newStatsCmd(app),
	)

	return root
}
