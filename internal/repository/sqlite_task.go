package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/tasktree/internal/db"
	"github.com/alexanderramin/tasktree/internal/domain"
)

// taskColumns is the canonical SELECT column list for tasks.
const taskColumns = `id, parent_id, title, status, deleted, booking_status,
		kost2_list, kost2_is_deny_list, max_hours, created_at, updated_at`

// SQLiteTaskRepo implements TaskRepo using a SQLite database.
type SQLiteTaskRepo struct {
	db db.DBTX
}

// NewSQLiteTaskRepo creates a new SQLiteTaskRepo.
func NewSQLiteTaskRepo(db db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: db}
}

// Create inserts t. A zero ID lets SQLite assign one, which is written back to t.
func (r *SQLiteTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}
	if t.Status == "" {
		t.Status = domain.TaskOpened
	}
	if t.BookingStatus == "" {
		t.BookingStatus = domain.BookingInherit
	}

	query := `INSERT INTO tasks (id, parent_id, title, status, deleted, booking_status,
		kost2_list, kost2_is_deny_list, max_hours, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var id interface{}
	if t.ID != 0 {
		id = t.ID
	}
	res, err := r.db.ExecContext(ctx, query,
		id,
		nullableInt64(t.ParentID),
		t.Title,
		string(t.Status),
		boolToInt(t.Deleted),
		string(t.BookingStatus),
		nullableString(t.Kost2List),
		boolToInt(t.Kost2IsDenyList),
		nullableIntToValue(t.MaxHours),
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	if t.ID == 0 {
		t.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading task id: %w", err)
		}
	}
	return nil
}

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	t, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return t, nil
}

func (r *SQLiteTaskRepo) ListAll(ctx context.Context) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (r *SQLiteTaskRepo) ListChildren(ctx context.Context, parentID int64) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE parent_id = ? ORDER BY title, id`
	rows, err := r.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("listing child tasks: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (r *SQLiteTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	t.UpdatedAt = time.Now().UTC()
	query := `UPDATE tasks SET parent_id = ?, title = ?, status = ?, deleted = ?,
		booking_status = ?, kost2_list = ?, kost2_is_deny_list = ?, max_hours = ?,
		updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		nullableInt64(t.ParentID),
		t.Title,
		string(t.Status),
		boolToInt(t.Deleted),
		string(t.BookingStatus),
		nullableString(t.Kost2List),
		boolToInt(t.Kost2IsDenyList),
		nullableIntToValue(t.MaxHours),
		formatTime(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("task %d: %w", t.ID, ErrNotFound)
	}
	return nil
}

func scanTasks(rows *sql.Rows) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	var parentID, maxHours sql.NullInt64
	var kost2List sql.NullString
	var status, bookingStatus, createdAt, updatedAt string
	var deleted, isDeny int

	err := row.Scan(
		&t.ID, &parentID, &t.Title, &status, &deleted, &bookingStatus,
		&kost2List, &isDeny, &maxHours, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}

	t.ParentID = int64Ptr(parentID)
	t.Status = domain.TaskStatus(status)
	t.Deleted = intToBool(deleted)
	t.BookingStatus = domain.BookingStatus(bookingStatus)
	t.Kost2List = stringPtr(kost2List)
	t.Kost2IsDenyList = intToBool(isDeny)
	t.MaxHours = intPtr(maxHours)

	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &t, nil
}
