package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/tasktree/internal/db"
	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/google/uuid"
)

// SQLiteTimesheetRepo implements TimesheetRepo using a SQLite database.
type SQLiteTimesheetRepo struct {
	db db.DBTX
}

// NewSQLiteTimesheetRepo creates a new SQLiteTimesheetRepo.
func NewSQLiteTimesheetRepo(db db.DBTX) *SQLiteTimesheetRepo {
	return &SQLiteTimesheetRepo{db: db}
}

func (r *SQLiteTimesheetRepo) Create(ctx context.Context, ts *domain.Timesheet) error {
	if ts.ID == "" {
		ts.ID = uuid.New().String()
	}
	if ts.CreatedAt.IsZero() {
		ts.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO timesheets (id, task_id, started_at, minutes, note, deleted, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ts.ID, ts.TaskID, formatTime(ts.StartedAt), ts.Minutes, ts.Note,
		boolToInt(ts.Deleted), formatTime(ts.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting timesheet: %w", err)
	}
	return nil
}

func (r *SQLiteTimesheetRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE timesheets SET deleted = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting timesheet: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("timesheet %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteTimesheetRepo) GetByID(ctx context.Context, id string) (*domain.Timesheet, error) {
	var ts domain.Timesheet
	var startedAt, createdAt string
	var deleted int
	err := r.db.QueryRowContext(ctx, `SELECT id, task_id, started_at, minutes, note, deleted, created_at
		FROM timesheets WHERE id = ?`, id,
	).Scan(&ts.ID, &ts.TaskID, &startedAt, &ts.Minutes, &ts.Note, &deleted, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("timesheet %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning timesheet: %w", err)
	}
	ts.Deleted = intToBool(deleted)
	if ts.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, fmt.Errorf("parsing started_at: %w", err)
	}
	if ts.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &ts, nil
}

// SumMinutesByTask aggregates the live time sheets per task in one query.
func (r *SQLiteTimesheetRepo) SumMinutesByTask(ctx context.Context) ([]domain.TaskDuration, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT task_id, SUM(minutes) FROM timesheets
		WHERE deleted = 0 GROUP BY task_id ORDER BY task_id`)
	if err != nil {
		return nil, fmt.Errorf("aggregating timesheet durations: %w", err)
	}
	defer rows.Close()

	var durations []domain.TaskDuration
	for rows.Next() {
		var d domain.TaskDuration
		if err := rows.Scan(&d.TaskID, &d.Minutes); err != nil {
			return nil, fmt.Errorf("scanning duration row: %w", err)
		}
		durations = append(durations, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating duration rows: %w", err)
	}
	return durations, nil
}

func (r *SQLiteTimesheetRepo) SumMinutesForTask(ctx context.Context, taskID int64) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(minutes), 0) FROM timesheets
		WHERE task_id = ? AND deleted = 0`, taskID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing timesheet minutes for task %d: %w", taskID, err)
	}
	return total, nil
}
