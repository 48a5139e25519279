// Package cache keeps the last fetched plan bundle in a local SQLite db so
// views can render before the first network round trip.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"stride-cli/internal/api"
	"stride-cli/internal/model"
)

// ErrMiss is returned when no snapshot exists for a plan.
var ErrMiss = errors.New("cache: no snapshot for plan")

type Cache struct {
	path string
}

// New points the cache at dir/cache.sqlite, creating dir if needed.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{path: filepath.Join(dir, "cache.sqlite")}, nil
}

func (c *Cache) open(ctx context.Context) (*sql.DB, error) {
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", c.path)
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout helps avoid
	// "database is locked" flakiness.
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
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS plans (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			start_date TEXT NOT NULL,
			status TEXT NOT NULL,
			json TEXT NOT NULL,
			fetched_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS goals (
			id TEXT PRIMARY KEY,
			plan_id TEXT NOT NULL,
			json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_goals_plan ON goals(plan_id);`,
		`CREATE TABLE IF NOT EXISTS milestones (
			id TEXT PRIMARY KEY,
			plan_id TEXT NOT NULL,
			goal_id TEXT NOT NULL,
			json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_milestones_plan ON milestones(plan_id);`,
		`CREATE TABLE IF NOT EXISTS weekly_goals (
			id TEXT PRIMARY KEY,
			plan_id TEXT NOT NULL,
			week_number INTEGER NOT NULL,
			json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_weekly_goals_plan ON weekly_goals(plan_id);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			plan_id TEXT NOT NULL,
			week_number INTEGER NOT NULL,
			json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_plan_week ON tasks(plan_id, week_number);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// Put replaces the stored snapshot for the bundle's plan.
func (c *Cache) Put(ctx context.Context, b *api.Bundle) error {
	if b == nil || b.Plan.ID == "" {
		return errors.New("cache: empty bundle")
	}
	db, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Replace-all per plan keeps the snapshot internally consistent.
	for _, t := range []string{"goals", "milestones", "weekly_goals", "tasks"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+t+` WHERE plan_id = ?`, b.Plan.ID); err != nil {
			return err
		}
	}

	raw, _ := json.Marshal(b.Plan)
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO plans(id, name, start_date, status, json, fetched_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
		b.Plan.ID, b.Plan.Name, b.Plan.StartDate, string(b.Plan.Status), string(raw), time.Now().UTC().UnixMilli()); err != nil {
		return err
	}
	for _, g := range b.Goals {
		raw, _ := json.Marshal(g)
		if _, err := tx.ExecContext(ctx, `INSERT INTO goals(id, plan_id, json) VALUES(?, ?, ?)`,
			g.ID, b.Plan.ID, string(raw)); err != nil {
			return err
		}
	}
	for _, m := range b.Milestones {
		raw, _ := json.Marshal(m)
		if _, err := tx.ExecContext(ctx, `INSERT INTO milestones(id, plan_id, goal_id, json) VALUES(?, ?, ?, ?)`,
			m.ID, b.Plan.ID, m.LongTermGoalID, string(raw)); err != nil {
			return err
		}
	}
	for _, wg := range b.WeeklyGoals {
		raw, _ := json.Marshal(wg)
		if _, err := tx.ExecContext(ctx, `INSERT INTO weekly_goals(id, plan_id, week_number, json) VALUES(?, ?, ?, ?)`,
			wg.ID, b.Plan.ID, wg.WeekNumber, string(raw)); err != nil {
			return err
		}
	}
	for _, t := range b.Tasks {
		raw, _ := json.Marshal(t)
		if _, err := tx.ExecContext(ctx, `INSERT INTO tasks(id, plan_id, week_number, json) VALUES(?, ?, ?, ?)`,
			t.ID, b.Plan.ID, t.WeekNumber, string(raw)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Get returns the stored snapshot for planID, or ErrMiss.
func (c *Cache) Get(ctx context.Context, planID string) (*api.Bundle, error) {
	db, err := c.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var planJSON string
	err = db.QueryRowContext(ctx, `SELECT json FROM plans WHERE id = ?`, planID).Scan(&planJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}

	out := &api.Bundle{}
	if err := json.Unmarshal([]byte(planJSON), &out.Plan); err != nil {
		return nil, err
	}
	if out.Goals, err = readJSONRows[model.Goal](ctx, db, `SELECT json FROM goals WHERE plan_id = ?`, planID); err != nil {
		return nil, err
	}
	if out.Milestones, err = readJSONRows[model.Milestone](ctx, db, `SELECT json FROM milestones WHERE plan_id = ?`, planID); err != nil {
		return nil, err
	}
	if out.WeeklyGoals, err = readJSONRows[model.WeeklyGoal](ctx, db, `SELECT json FROM weekly_goals WHERE plan_id = ?`, planID); err != nil {
		return nil, err
	}
	if out.Tasks, err = readJSONRows[model.Task](ctx, db, `SELECT json FROM tasks WHERE plan_id = ?`, planID); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchedAt reports when the plan's snapshot was stored.
func (c *Cache) FetchedAt(ctx context.Context, planID string) (time.Time, error) {
	db, err := c.open(ctx)
	if err != nil {
		return time.Time{}, err
	}
	defer db.Close()

	var ms int64
	err = db.QueryRowContext(ctx, `SELECT fetched_at_unixms FROM plans WHERE id = ?`, planID).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrMiss
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

// Drop removes a plan's snapshot.
func (c *Cache) Drop(ctx context.Context, planID string) error {
	db, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, t := range []string{"goals", "milestones", "weekly_goals", "tasks"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+t+` WHERE plan_id = ?`, planID); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, planID); err != nil {
		return err
	}
	return tx.Commit()
}

func readJSONRows[T any](ctx context.Context, db *sql.DB, query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var js string
		if err := rows.Scan(&js); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(js), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
