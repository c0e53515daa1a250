package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/tasktree/internal/db"
	"github.com/alexanderramin/tasktree/internal/domain"
)

// SQLiteGroupTaskAccessRepo implements GroupTaskAccessRepo. A rule is stored
// as one group_task_access row plus one access_entries row per access type.
// Upsert issues several statements; run it inside UnitOfWork.WithinTx.
type SQLiteGroupTaskAccessRepo struct {
	db db.DBTX
}

// NewSQLiteGroupTaskAccessRepo creates a new SQLiteGroupTaskAccessRepo.
func NewSQLiteGroupTaskAccessRepo(db db.DBTX) *SQLiteGroupTaskAccessRepo {
	return &SQLiteGroupTaskAccessRepo{db: db}
}

func (r *SQLiteGroupTaskAccessRepo) Upsert(ctx context.Context, g *domain.GroupTaskAccess) error {
	query := `INSERT INTO group_task_access (task_id, group_id, recursive, description)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(task_id, group_id) DO UPDATE SET
			recursive = excluded.recursive,
			description = excluded.description
		RETURNING id`
	if err := r.db.QueryRowContext(ctx, query,
		g.TaskID, g.GroupID, boolToInt(g.Recursive), g.Description,
	).Scan(&g.ID); err != nil {
		return fmt.Errorf("upserting group task access: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM access_entries WHERE access_id = ?`, g.ID); err != nil {
		return fmt.Errorf("clearing access entries: %w", err)
	}
	for _, e := range g.Entries {
		_, err := r.db.ExecContext(ctx, `INSERT INTO access_entries
			(access_id, access_type, can_select, can_insert, can_update, can_delete)
			VALUES (?, ?, ?, ?, ?, ?)`,
			g.ID, string(e.Type),
			boolToInt(e.Select), boolToInt(e.Insert), boolToInt(e.Update), boolToInt(e.Delete),
		)
		if err != nil {
			return fmt.Errorf("inserting access entry %s: %w", e.Type, err)
		}
	}
	return nil
}

func (r *SQLiteGroupTaskAccessRepo) Get(ctx context.Context, taskID, groupID int64) (*domain.GroupTaskAccess, error) {
	var g domain.GroupTaskAccess
	var recursive int
	err := r.db.QueryRowContext(ctx, `SELECT id, task_id, group_id, recursive, description
		FROM group_task_access WHERE task_id = ? AND group_id = ?`, taskID, groupID,
	).Scan(&g.ID, &g.TaskID, &g.GroupID, &recursive, &g.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("group task access: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning group task access: %w", err)
	}
	g.Recursive = intToBool(recursive)

	rows, err := r.db.QueryContext(ctx, `SELECT access_type, can_select, can_insert, can_update, can_delete
		FROM access_entries WHERE access_id = ?`, g.ID)
	if err != nil {
		return nil, fmt.Errorf("listing access entries: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		e, err := scanAccessEntry(rows)
		if err != nil {
			return nil, err
		}
		g.SetEntry(e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating access entries: %w", err)
	}
	return &g, nil
}

func (r *SQLiteGroupTaskAccessRepo) Delete(ctx context.Context, taskID, groupID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM access_entries WHERE access_id IN
		(SELECT id FROM group_task_access WHERE task_id = ? AND group_id = ?)`, taskID, groupID)
	if err != nil {
		return fmt.Errorf("deleting access entries: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM group_task_access WHERE task_id = ? AND group_id = ?`, taskID, groupID); err != nil {
		return fmt.Errorf("deleting group task access: %w", err)
	}
	return nil
}

// ListAll returns every rule with its entries, ordered by id.
func (r *SQLiteGroupTaskAccessRepo) ListAll(ctx context.Context) ([]*domain.GroupTaskAccess, error) {
	query := `SELECT g.id, g.task_id, g.group_id, g.recursive, g.description,
			e.access_type, e.can_select, e.can_insert, e.can_update, e.can_delete
		FROM group_task_access g
		LEFT JOIN access_entries e ON e.access_id = g.id
		ORDER BY g.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing group task access: %w", err)
	}
	defer rows.Close()

	var result []*domain.GroupTaskAccess
	var current *domain.GroupTaskAccess
	for rows.Next() {
		var g domain.GroupTaskAccess
		var recursive int
		var accessType sql.NullString
		var sel, ins, upd, del sql.NullInt64
		if err := rows.Scan(&g.ID, &g.TaskID, &g.GroupID, &recursive, &g.Description,
			&accessType, &sel, &ins, &upd, &del); err != nil {
			return nil, fmt.Errorf("scanning group task access row: %w", err)
		}
		if current == nil || current.ID != g.ID {
			g.Recursive = intToBool(recursive)
			g.Entries = make(map[domain.AccessType]domain.AccessEntry)
			current = &g
			result = append(result, current)
		}
		if accessType.Valid {
			current.SetEntry(domain.AccessEntry{
				Type:   domain.AccessType(accessType.String),
				Select: sel.Int64 != 0,
				Insert: ins.Int64 != 0,
				Update: upd.Int64 != 0,
				Delete: del.Int64 != 0,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating group task access: %w", err)
	}
	return result, nil
}

func scanAccessEntry(row rowScanner) (domain.AccessEntry, error) {
	var e domain.AccessEntry
	var accessType string
	var sel, ins, upd, del int
	if err := row.Scan(&accessType, &sel, &ins, &upd, &del); err != nil {
		return e, fmt.Errorf("scanning access entry: %w", err)
	}
	e.Type = domain.AccessType(accessType)
	e.Select = intToBool(sel)
	e.Insert = intToBool(ins)
	e.Update = intToBool(upd)
	e.Delete = intToBool(del)
	return e, nil
}
