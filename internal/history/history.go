// Package history is a local, append-only activity log for successful
// mutations (todo create/update/delete/toggle, plan save, login/logout).
// It exists for diagnostics and the `dayplan history` command; todo reads
// are always served by the backend, never from here.
package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const dbFileName = "history.sqlite"

type Event struct {
	ID      int64     `json:"id"`
	Kind    string    `json:"kind"`
	Subject string    `json:"subject,omitempty"`
	Detail  string    `json:"detail,omitempty"`
	At      time.Time `json:"at"`
}

// Common event kinds.
const (
	KindTodoCreate = "todo.create"
	KindTodoUpdate = "todo.update"
	KindTodoDelete = "todo.delete"
	KindTodoToggle = "todo.toggle"
	KindPlanSave   = "plan.save"
	KindLogin      = "session.login"
	KindLogout     = "session.logout"
)

type Log struct {
	db *sql.DB
}

// Open opens (and if needed creates) the log at dir/history.sqlite.
func Open(ctx context.Context, dir string) (*Log, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", filepath.Join(dir, dbFileName))
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout avoids
	// "database is locked" flakiness when CLI and TUI overlap.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Log{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			subject TEXT NOT NULL DEFAULT '',
			detail TEXT NOT NULL DEFAULT '',
			at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_at ON events(at_unixms);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (l *Log) Close() error { return l.db.Close() }

// Append records one event. Callers treat failures as non-fatal; a broken
// local log must never block a successful backend mutation.
func (l *Log) Append(ctx context.Context, kind, subject, detail string) error {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		kind = "unknown"
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO events (kind, subject, detail, at_unixms) VALUES (?, ?, ?, ?)`,
		kind, subject, detail, time.Now().UnixMilli(),
	)
	return err
}

// Recent returns the newest events first, at most limit of them.
func (l *Log) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, kind, subject, detail, at_unixms FROM events ORDER BY at_unixms DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var ev Event
		var atMS int64
		if err := rows.Scan(&ev.ID, &ev.Kind, &ev.Subject, &ev.Detail, &atMS); err != nil {
			return nil, err
		}
		ev.At = time.UnixMilli(atMS)
		out = append(out, ev)
	}
	return out, rows.Err()
}
