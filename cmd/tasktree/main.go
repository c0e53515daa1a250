package main

import (
	"fmt"
	"os"

	"github.com/alexanderramin/tasktree/internal/cli"
	"github.com/alexanderramin/tasktree/internal/config"
	"github.com/alexanderramin/tasktree/internal/db"
	"github.com/alexanderramin/tasktree/internal/repository"
	"github.com/alexanderramin/tasktree/internal/service"
	"github.com/alexanderramin/tasktree/internal/tasktree"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr)

	// Open database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	// Wire the tree over its persistence collaborators
	timesheetRepo := repository.NewSQLiteTimesheetRepo(database)
	tree := tasktree.New(
		tasktree.Sources{
			Snapshots:   repository.NewSQLiteTreeSnapshotReader(uow),
			CostCenters: repository.NewSQLiteKost2Repo(database),
			Orders:      repository.NewSQLiteOrderPositionRepo(database),
			Durations:   timesheetRepo,
		},
		tasktree.WithLogger(logger),
		tasktree.WithExpiry(cfg.Expiry()),
		tasktree.WithHoursPerDay(cfg.HoursPerDay),
	)

	// Wire services
	var observers []service.UseCaseObserver
	if cfg.LogUseCases {
		observers = append(observers, service.NewLogUseCaseObserver(logger))
	}

	app := &cli.App{
		Tree:       tree,
		Tasks:      service.NewTaskService(repository.NewSQLiteTaskRepo(database), uow, tree, observers...),
		Access:     service.NewAccessService(uow, tree, observers...),
		Timesheets: service.NewTimesheetService(timesheetRepo, uow, tree, observers...),
		Orders:     service.NewOrderService(uow, tree, observers...),
		Projects:   service.NewProjectService(uow, tree, observers...),
		Plain:      !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}

	// Execute root command
	return cli.NewRootCmd(app).Execute()
}
