// Package depcache persists which source files each definition was built
// from, so a later run can tell which definitions a file change affects.
package depcache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	started_at INTEGER NOT NULL,
	inputs     INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS deps (
	run_id     TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	definition TEXT NOT NULL,
	file       TEXT NOT NULL,
	PRIMARY KEY (run_id, definition, file)
);
CREATE INDEX IF NOT EXISTS deps_file ON deps(file);
`

// Cache is a sqlite-backed dependency store. It is safe for concurrent use
// to the extent database/sql is.
type Cache struct {
	db *sql.DB
}

// Run is one recorded parse session.
type Run struct {
	ID        string
	StartedAt time.Time
	Inputs    int
}

// Open opens or creates the cache database at path.
func Open(ctx context.Context, path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache %s: %w", path, err)
	}
	// A single connection keeps PRAGMA foreign_keys in effect.
	db.SetMaxOpenConns(1)
	for _, stmt := range []string{"PRAGMA foreign_keys = ON", schema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("initializing cache %s: %w", path, err)
		}
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error { return c.db.Close() }

// NewRunID returns a fresh run identifier.
func NewRunID() string { return uuid.NewString() }

// Record stores the dependencies of one run. deps maps a definition name to
// its files.
func (c *Cache) Record(ctx context.Context, runID string, inputs int, deps map[string][]string) error {
	if _, err := uuid.Parse(runID); err != nil {
		return fmt.Errorf("invalid run id %q: %w", runID, err)
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", runID, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, inputs) VALUES (?, ?, ?)`,
		runID, time.Now().UnixNano(), inputs); err != nil {
		return fmt.Errorf("recording run %s: %w", runID, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO deps (run_id, definition, file) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", runID, err)
	}
	defer stmt.Close()

	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)
	rows := 0
	for _, name := range names {
		for _, file := range deps[name] {
			if _, err := stmt.ExecContext(ctx, runID, name, file); err != nil {
				return fmt.Errorf("recording %s of run %s: %w", name, runID, err)
			}
			rows++
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("recording run %s: %w", runID, err)
	}
	glog.V(1).Infof("run %s: recorded %d dependency rows", runID, rows)
	return nil
}

// LatestRun returns the most recently recorded run, or false if there is
// none.
func (c *Cache) LatestRun(ctx context.Context) (Run, bool, error) {
	var (
		r       Run
		started int64
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT id, started_at, inputs FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1`).
		Scan(&r.ID, &started, &r.Inputs)
	if err == sql.ErrNoRows {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, fmt.Errorf("reading latest run: %w", err)
	}
	r.StartedAt = time.Unix(0, started)
	return r, true, nil
}

// Deps returns the recorded dependencies of a run.
func (c *Cache) Deps(ctx context.Context, runID string) (map[string][]string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT definition, file FROM deps WHERE run_id = ? ORDER BY definition, file`, runID)
	if err != nil {
		return nil, fmt.Errorf("reading deps of run %s: %w", runID, err)
	}
	defer rows.Close()
	deps := make(map[string][]string)
	for rows.Next() {
		var name, file string
		if err := rows.Scan(&name, &file); err != nil {
			return nil, fmt.Errorf("reading deps of run %s: %w", runID, err)
		}
		deps[name] = append(deps[name], file)
	}
	return deps, rows.Err()
}

// Affected returns, sorted, the definitions of the latest run that depend on
// any of files.
func (c *Cache) Affected(ctx context.Context, files []string) ([]string, error) {
	run, ok, err := c.LatestRun(ctx)
	if err != nil || !ok {
		return nil, err
	}
	deps, err := c.Deps(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	changed := make(map[string]bool, len(files))
	for _, f := range files {
		changed[f] = true
	}
	var out []string
	for name, depFiles := range deps {
		for _, f := range depFiles {
			if changed[f] {
				out = append(out, name)
				break
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// Prune deletes all but the newest keep runs.
func (c *Cache) Prune(ctx context.Context, keep int) (int64, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	return res.RowsAffected()
}
