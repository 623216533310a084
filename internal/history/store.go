// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a SQLite ledger of generation runs and the documents
// each run produced, including the image order of every copy.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/landscape-pdf/internal/batch"
	"github.com/pdiddy/landscape-pdf/pkg/types"
)

// ErrDisabled is returned by Open when history is turned off in config.
var ErrDisabled = errors.New("history disabled")

const timeLayout = time.RFC3339Nano

// Store manages the history database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at cfg.DBPath and makes sure the
// schema exists.
func Open(cfg types.HistoryConfig) (*Store, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: cfg.DBPath}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Path returns the database file.
func (s *Store) Path() string { return s.path }

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			input_dir TEXT,
			output_dir TEXT,
			images INTEGER NOT NULL,
			requested INTEGER NOT NULL,
			succeeded INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			cancelled INTEGER NOT NULL,
			seed TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			copy INTEGER NOT NULL,
			path TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			pages INTEGER,
			image_order TEXT NOT NULL,
			PRIMARY KEY (run_id, copy)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordRun stores run and its documents in one transaction and returns the
// new run ID.
func (s *Store) RecordRun(ctx context.Context, run types.Run) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, finished_at, input_dir, output_dir, images,
			requested, succeeded, failed, cancelled, seed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.StartedAt.UTC().Format(timeLayout),
		run.FinishedAt.UTC().Format(timeLayout),
		run.InputDir, run.OutputDir, run.Images,
		run.Requested, run.Succeeded, run.Failed, run.Cancelled,
		strconv.FormatUint(run.Seed, 10),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO documents (run_id, copy, path, status, error, pages, image_order)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing document insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range run.Documents {
		order, err := json.Marshal(nonNil(d.Order))
		if err != nil {
			return 0, fmt.Errorf("encoding image order: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, id, d.Copy, d.Path, string(d.Status), d.Error, d.Pages, string(order)); err != nil {
			return 0, fmt.Errorf("inserting document %d: %w", d.Copy, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return id, nil
}

// Recent returns up to limit runs, newest first, with their documents.
// A limit of zero or less returns every run.
func (s *Store) Recent(ctx context.Context, limit int) ([]types.Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, input_dir, output_dir, images,
			requested, succeeded, failed, cancelled, seed
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		var (
			r                 types.Run
			started, finished string
			seed              string
		)
		if err := rows.Scan(&r.ID, &started, &finished, &r.InputDir, &r.OutputDir, &r.Images,
			&r.Requested, &r.Succeeded, &r.Failed, &r.Cancelled, &seed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if r.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("run %d: parsing started_at: %w", r.ID, err)
		}
		if r.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
			return nil, fmt.Errorf("run %d: parsing finished_at: %w", r.ID, err)
		}
		if r.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
			return nil, fmt.Errorf("run %d: parsing seed: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	for i := range runs {
		docs, err := s.documents(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Documents = docs
	}
	return runs, nil
}

func (s *Store) documents(ctx context.Context, runID int64) ([]types.DocumentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT copy, path, status, COALESCE(error, ''), COALESCE(pages, 0), image_order
		FROM documents WHERE run_id = ? ORDER BY copy`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying documents for run %d: %w", runID, err)
	}
	defer rows.Close()

	var docs []types.DocumentRecord
	for rows.Next() {
		var (
			d      types.DocumentRecord
			status string
			order  string
		)
		if err := rows.Scan(&d.Copy, &d.Path, &status, &d.Error, &d.Pages, &order); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		d.Status = types.DocumentStatus(status)
		if err := json.Unmarshal([]byte(order), &d.Order); err != nil {
			return nil, fmt.Errorf("run %d copy %d: decoding image order: %w", runID, d.Copy, err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// RunFromResult converts a finished batch into a history record.
func RunFromResult(res batch.Result, inputDir, outputDir string, images int) types.Run {
	run := types.Run{
		StartedAt:  res.Started,
		FinishedAt: res.Finished,
		InputDir:   inputDir,
		OutputDir:  outputDir,
		Images:     images,
		Requested:  res.Requested,
		Succeeded:  res.Succeeded,
		Failed:     res.Failed,
		Cancelled:  res.Cancelled,
		Seed:       res.Seed,
	}
	for _, c := range res.Copies {
		d := types.DocumentRecord{
			Copy:   c.Copy,
			Path:   c.Path,
			Status: c.Status,
			Pages:  c.Pages,
			Order:  c.Order,
		}
		if c.Err != nil {
			d.Error = c.Err.Error()
		}
		run.Documents = append(run.Documents, d)
	}
	return run
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
