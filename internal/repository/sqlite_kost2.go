package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/tasktree/internal/db"
	"github.com/alexanderramin/tasktree/internal/domain"
)

const kost2Columns = `id, code, nummernkreis, bereich, number, state, description`

// SQLiteKost2Repo implements Kost2Repo using a SQLite database.
type SQLiteKost2Repo struct {
	db db.DBTX
}

// NewSQLiteKost2Repo creates a new SQLiteKost2Repo.
func NewSQLiteKost2Repo(db db.DBTX) *SQLiteKost2Repo {
	return &SQLiteKost2Repo{db: db}
}

func (r *SQLiteKost2Repo) Create(ctx context.Context, k *domain.Kost2) error {
	if k.State == "" {
		k.State = domain.Kost2Active
	}
	var id interface{}
	if k.ID != 0 {
		id = k.ID
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO kost2 (id, code, nummernkreis, bereich, number, state, description)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, k.Code, k.Namespace.Nummernkreis, k.Namespace.Bereich, k.Namespace.Number,
		string(k.State), k.Description,
	)
	if err != nil {
		return fmt.Errorf("inserting kost2: %w", err)
	}
	if k.ID == 0 {
		if k.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("reading kost2 id: %w", err)
		}
	}
	return nil
}

func (r *SQLiteKost2Repo) GetByCode(ctx context.Context, code string) (*domain.Kost2, error) {
	k, err := scanKost2(r.db.QueryRowContext(ctx, `SELECT `+kost2Columns+` FROM kost2 WHERE code = ?`, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("kost2 %q: %w", code, ErrNotFound)
		}
		return nil, err
	}
	return k, nil
}

// FindByCode is GetByCode with an unknown code reported as nil, nil.
func (r *SQLiteKost2Repo) FindByCode(ctx context.Context, code string) (*domain.Kost2, error) {
	k, err := r.GetByCode(ctx, code)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return k, err
}

// ListActiveByNamespace returns the active codes of one project namespace, ordered by code.
func (r *SQLiteKost2Repo) ListActiveByNamespace(ctx context.Context, ns domain.CostCenterNamespace) ([]*domain.Kost2, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+kost2Columns+` FROM kost2
		WHERE nummernkreis = ? AND bereich = ? AND number = ? AND state = ?
		ORDER BY code`,
		ns.Nummernkreis, ns.Bereich, ns.Number, string(domain.Kost2Active))
	if err != nil {
		return nil, fmt.Errorf("listing active kost2: %w", err)
	}
	defer rows.Close()

	var list []*domain.Kost2
	for rows.Next() {
		k, err := scanKost2(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating kost2: %w", err)
	}
	return list, nil
}

func scanKost2(row rowScanner) (*domain.Kost2, error) {
	var k domain.Kost2
	var state string
	err := row.Scan(&k.ID, &k.Code, &k.Namespace.Nummernkreis, &k.Namespace.Bereich,
		&k.Namespace.Number, &state, &k.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning kost2: %w", err)
	}
	k.State = domain.Kost2State(state)
	return &k, nil
}
