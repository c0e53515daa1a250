package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/tasktree/internal/db"
	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/google/uuid"
)

const orderPositionColumns = `id, order_number, position_number, task_id, title, person_days`

// SQLiteOrderPositionRepo implements OrderPositionRepo using a SQLite database.
// Person days are stored as decimal strings to keep them exact.
type SQLiteOrderPositionRepo struct {
	db db.DBTX
}

// NewSQLiteOrderPositionRepo creates a new SQLiteOrderPositionRepo.
func NewSQLiteOrderPositionRepo(db db.DBTX) *SQLiteOrderPositionRepo {
	return &SQLiteOrderPositionRepo{db: db}
}

func (r *SQLiteOrderPositionRepo) Create(ctx context.Context, o *domain.OrderContribution) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	var taskID interface{}
	if o.TaskID != 0 {
		taskID = o.TaskID
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO order_positions
		(id, order_number, position_number, task_id, title, person_days)
		VALUES (?, ?, ?, ?, ?, ?)`,
		o.ID, o.OrderNumber, o.PositionNumber, taskID, o.Title, o.PersonDays,
	)
	if err != nil {
		return fmt.Errorf("inserting order position: %w", err)
	}
	return nil
}

// Delete marks the position deleted; it no longer contributes workload.
func (r *SQLiteOrderPositionRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE order_positions SET deleted = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting order position: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("order position %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteOrderPositionRepo) ListByTask(ctx context.Context, taskID int64) ([]domain.OrderContribution, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+orderPositionColumns+` FROM order_positions
		WHERE task_id = ? AND deleted = 0
		ORDER BY order_number, position_number`, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing order positions by task: %w", err)
	}
	defer rows.Close()
	return scanOrderPositions(rows)
}

// ListWorkloadReferences groups all live positions that reference a task by task id.
func (r *SQLiteOrderPositionRepo) ListWorkloadReferences(ctx context.Context) (map[int64][]domain.OrderContribution, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+orderPositionColumns+` FROM order_positions
		WHERE task_id IS NOT NULL AND deleted = 0
		ORDER BY task_id, order_number, position_number`)
	if err != nil {
		return nil, fmt.Errorf("listing order workload references: %w", err)
	}
	defer rows.Close()

	list, err := scanOrderPositions(rows)
	if err != nil {
		return nil, err
	}
	refs := make(map[int64][]domain.OrderContribution)
	for _, o := range list {
		refs[o.TaskID] = append(refs[o.TaskID], o)
	}
	return refs, nil
}

func scanOrderPositions(rows *sql.Rows) ([]domain.OrderContribution, error) {
	var list []domain.OrderContribution
	for rows.Next() {
		var o domain.OrderContribution
		var taskID sql.NullInt64
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.PositionNumber, &taskID, &o.Title, &o.PersonDays); err != nil {
			return nil, fmt.Errorf("scanning order position: %w", err)
		}
		o.TaskID = taskID.Int64
		list = append(list, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order positions: %w", err)
	}
	return list, nil
}
