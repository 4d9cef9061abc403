package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"tickframe/internal/export/migrations"
)

// Store is a SQLite-backed sink. One file can hold many runs.
type Store struct {
	db    *sql.DB
	runID int64
}

// OpenStore opens the database at path and applies migrations.
func OpenStore(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// RunID is the id assigned by Begin, or zero before it.
func (s *Store) RunID() int64 { return s.runID }

func (s *Store) Begin(ctx context.Context, meta RunMeta) error {
	params, err := json.Marshal(groupValues(meta.Params))
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (name, started_at, params) VALUES (?, ?, ?)`,
		meta.Name, meta.Started.UTC().UnixMilli(), string(params),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	s.runID, err = res.LastInsertId()
	return err
}

func (s *Store) Write(ctx context.Context, sum Summary, records []Record) error {
	if s.runID == 0 {
		return errors.New("write before begin")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO snapshots (run_id, tick, entities, energy, annihilated, dissipated, collisions, births)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.runID, sum.Tick, sum.Entities, sum.Energy, sum.Annihilated, sum.Dissipated, sum.Collisions, sum.Births,
	); err != nil {
		return fmt.Errorf("record snapshot %d: %w", sum.Tick, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO entities (run_id, tick, id, kind, position, generation, direction, cost, energy, constituents)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare entities: %w", err)
	}
	defer stmt.Close()
	for _, r := range records {
		pos, _ := json.Marshal(r.Position)
		dir, _ := json.Marshal(r.Direction)
		if _, err := stmt.ExecContext(ctx,
			s.runID, r.Tick, r.ID, r.Kind, string(pos), r.Generation, string(dir), r.Cost, r.Energy, r.Constituents,
		); err != nil {
			return fmt.Errorf("record entity %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// Ticks lists the exported ticks of a run in order.
func (s *Store) Ticks(ctx context.Context, runID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tick FROM snapshots WHERE run_id = ? ORDER BY tick`, runID)
	if err != nil {
		return nil, fmt.Errorf("list ticks: %w", err)
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var t int64
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Summary loads the aggregate of one exported tick.
func (s *Store) Summary(ctx context.Context, runID, tick int64) (Summary, error) {
	sum := Summary{Tick: tick}
	err := s.db.QueryRowContext(ctx, `
SELECT entities, energy, annihilated, dissipated, collisions, births
FROM snapshots WHERE run_id = ? AND tick = ?`, runID, tick).
		Scan(&sum.Entities, &sum.Energy, &sum.Annihilated, &sum.Dissipated, &sum.Collisions, &sum.Births)
	if err != nil {
		return Summary{}, fmt.Errorf("load snapshot %d: %w", tick, err)
	}
	return sum, nil
}

// Entities loads the records of one exported tick ordered by id.
func (s *Store) Entities(ctx context.Context, runID, tick int64) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, kind, position, generation, direction, cost, energy, constituents
FROM entities WHERE run_id = ? AND tick = ? ORDER BY id`, runID, tick)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		r := Record{Tick: tick}
		var pos, dir string
		if err := rows.Scan(&r.ID, &r.Kind, &pos, &r.Generation, &dir, &r.Cost, &r.Energy, &r.Constituents); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(pos), &r.Position); err != nil {
			return nil, fmt.Errorf("decode position of %s: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(dir), &r.Direction); err != nil {
			return nil, fmt.Errorf("decode direction of %s: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
