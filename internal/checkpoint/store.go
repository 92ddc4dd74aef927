// Package checkpoint persists named parameter values to a SQLite database,
// one snapshot per (run, step).
//
// Schema:
//
//	snapshots(id, run, step, ts)
//	params(snapshot_id, name, value)
package checkpoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/born-ml/raccoon/internal/nn"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// ErrNotFound is returned when a run has no snapshot.
var ErrNotFound = errors.New("checkpoint: not found")

const schema = `
CREATE TABLE IF NOT EXISTS snapshots(
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run TEXT NOT NULL,
	step INTEGER NOT NULL,
	ts REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS snapshots_run_step ON snapshots(run, step);
CREATE TABLE IF NOT EXISTS params(
	snapshot_id INTEGER NOT NULL REFERENCES snapshots(id),
	name TEXT NOT NULL,
	value REAL NOT NULL,
	PRIMARY KEY(snapshot_id, name)
);`

// Store is a checkpoint database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists. Use ":memory:" for a throwaway store.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("checkpoint: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes values as the snapshot of run at step in one transaction.
func (s *Store) Save(ctx context.Context, run string, step int, values map[string]float64) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("checkpoint: save %s@%d: %w", run, step, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO snapshots(run, step, ts) VALUES(?,?,?)",
		run, step, float64(time.Now().UnixMilli())/1000.0)
	if err != nil {
		return fmt.Errorf("checkpoint: save %s@%d: %w", run, step, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("checkpoint: save %s@%d: %w", run, step, err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO params(snapshot_id, name, value) VALUES(?,?,?)")
	if err != nil {
		return fmt.Errorf("checkpoint: save %s@%d: %w", run, step, err)
	}
	defer stmt.Close()

	for name, v := range values {
		if _, err = stmt.ExecContext(ctx, id, name, v); err != nil {
			return fmt.Errorf("checkpoint: save %s@%d param %q: %w", run, step, name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("checkpoint: save %s@%d: %w", run, step, err)
	}
	return nil
}

// Latest returns the snapshot of run with the highest step. When a step was
// saved more than once the most recent save wins.
func (s *Store) Latest(ctx context.Context, run string) (int, map[string]float64, error) {
	var id int64
	var step int
	err := s.db.QueryRowContext(ctx,
		"SELECT id, step FROM snapshots WHERE run = ? ORDER BY step DESC, id DESC LIMIT 1",
		run).Scan(&id, &step)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil, fmt.Errorf("%w: run %q", ErrNotFound, run)
	}
	if err != nil {
		return 0, nil, fmt.Errorf("checkpoint: latest %s: %w", run, err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT name, value FROM params WHERE snapshot_id = ?", id)
	if err != nil {
		return 0, nil, fmt.Errorf("checkpoint: latest %s: %w", run, err)
	}
	defer rows.Close()

	values := make(map[string]float64)
	for rows.Next() {
		var name string
		var v float64
		if err := rows.Scan(&name, &v); err != nil {
			return 0, nil, fmt.Errorf("checkpoint: latest %s: %w", run, err)
		}
		values[name] = v
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("checkpoint: latest %s: %w", run, err)
	}
	return step, values, nil
}

// Runs returns the names of all runs with at least one snapshot, sorted.
func (s *Store) Runs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT run FROM snapshots ORDER BY run")
	if err != nil {
		return nil, fmt.Errorf("checkpoint: runs: %w", err)
	}
	defer rows.Close()

	var runs []string
	for rows.Next() {
		var run string
		if err := rows.Scan(&run); err != nil {
			return nil, fmt.Errorf("checkpoint: runs: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Restore loads the latest snapshot of run into m and returns its step.
// Entries of the snapshot that m has no parameter for are ignored.
func (s *Store) Restore(ctx context.Context, run string, m nn.Module) (int, error) {
	step, values, err := s.Latest(ctx, run)
	if err != nil {
		return 0, err
	}
	if err := nn.LoadStateDict(m, values); err != nil {
		return 0, fmt.Errorf("checkpoint: restore %s@%d: %w", run, step, err)
	}
	return step, nil
}
