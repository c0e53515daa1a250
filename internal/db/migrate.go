package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent so the whole
// list is replayed on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// The tasks table carries no foreign key on parent_id: integrity anomalies
// (dangling parents, duplicate roots) are tolerated by the task tree cache.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS tasks (
		id                 INTEGER PRIMARY KEY AUTOINCREMENT,
		parent_id          INTEGER,
		title              TEXT NOT NULL,
		status             TEXT NOT NULL DEFAULT 'opened'
		                   CHECK(status IN ('opened','closed')),
		deleted            INTEGER NOT NULL DEFAULT 0,
		booking_status     TEXT NOT NULL DEFAULT 'inherit'
		                   CHECK(booking_status IN ('inherit','opened','only_leafs','no_booking','tree_closed')),
		kost2_list         TEXT,
		kost2_is_deny_list INTEGER NOT NULL DEFAULT 0,
		max_hours          INTEGER,
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id)`,

	`CREATE TABLE IF NOT EXISTS group_task_access (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id     INTEGER NOT NULL,
		group_id    INTEGER NOT NULL,
		recursive   INTEGER NOT NULL DEFAULT 1,
		description TEXT NOT NULL DEFAULT '',
		UNIQUE(task_id, group_id)
	)`,

	`CREATE TABLE IF NOT EXISTS access_entries (
		access_id   INTEGER NOT NULL REFERENCES group_task_access(id) ON DELETE CASCADE,
		access_type TEXT NOT NULL
		            CHECK(access_type IN ('tasks','timesheets','own_timesheets','task_access_management')),
		can_select  INTEGER NOT NULL DEFAULT 0,
		can_insert  INTEGER NOT NULL DEFAULT 0,
		can_update  INTEGER NOT NULL DEFAULT 0,
		can_delete  INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (access_id, access_type)
	)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		name         TEXT NOT NULL,
		task_id      INTEGER,
		nummernkreis INTEGER NOT NULL,
		bereich      INTEGER NOT NULL,
		number       INTEGER NOT NULL,
		deleted      INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_projects_task ON projects(task_id)`,

	`CREATE TABLE IF NOT EXISTS kost2 (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		code         TEXT NOT NULL UNIQUE,
		nummernkreis INTEGER NOT NULL,
		bereich      INTEGER NOT NULL,
		number       INTEGER NOT NULL,
		state        TEXT NOT NULL DEFAULT 'active'
		             CHECK(state IN ('active','nonactive','ended')),
		description  TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE INDEX IF NOT EXISTS idx_kost2_namespace ON kost2(nummernkreis, bereich, number)`,

	`CREATE TABLE IF NOT EXISTS order_positions (
		id              TEXT PRIMARY KEY,
		order_number    INTEGER NOT NULL,
		position_number INTEGER NOT NULL,
		task_id         INTEGER,
		title           TEXT NOT NULL DEFAULT '',
		person_days     TEXT,
		deleted         INTEGER NOT NULL DEFAULT 0,
		UNIQUE(order_number, position_number)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_order_positions_task ON order_positions(task_id)`,

	`CREATE TABLE IF NOT EXISTS timesheets (
		id         TEXT PRIMARY KEY,
		task_id    INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		minutes    INTEGER NOT NULL CHECK(minutes >= 0),
		note       TEXT NOT NULL DEFAULT '',
		deleted    INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_timesheets_task ON timesheets(task_id)`,
}
