// Package store keeps design-model snapshots and the placement batch
// journal in a SQLite database.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/piwi3910/HoleCut/internal/config"
	"github.com/piwi3910/HoleCut/internal/model"
)

// ErrNotFound is returned when a document or batch does not exist.
var ErrNotFound = errors.New("not found")

var pragmas = []string{
	"PRAGMA foreign_keys=ON",
	"PRAGMA busy_timeout=5000",
	"PRAGMA journal_mode=WAL",
}

type Store struct {
	db  *sql.DB
	log *logrus.Entry
}

// Open opens or creates the database at path and migrates it to the latest
// schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	// A single connection keeps the per-connection pragmas in effect.
	db.SetMaxOpenConns(1)
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	s := &Store{db: db, log: config.NamedLogger("store")}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveDocument stores or replaces the snapshot of a document.
func (s *Store) SaveDocument(d model.DocumentData) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO documents (title, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (title) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		d.Title, string(data), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to save document %q: %w", d.Title, err)
	}
	return nil
}

func (s *Store) LoadDocument(title string) (model.DocumentData, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM documents WHERE title = ?`, title).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DocumentData{}, fmt.Errorf("document %q: %w", title, ErrNotFound)
	}
	if err != nil {
		return model.DocumentData{}, fmt.Errorf("failed to load document %q: %w", title, err)
	}

	var d model.DocumentData
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		return model.DocumentData{}, fmt.Errorf("failed to parse document %q: %w", title, err)
	}
	return d, nil
}

// DocumentTitles lists stored documents alphabetically.
func (s *Store) DocumentTitles() ([]string, error) {
	rows, err := s.db.Query(`SELECT title FROM documents ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}

// RecordBatch journals a batch with its placements and failures in one
// transaction.
func (s *Store) RecordBatch(r model.BatchResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin: %w", err)
	}
	defer tx.Rollback()

	var finished interface{}
	if !r.FinishedAt.IsZero() {
		finished = formatTime(r.FinishedAt)
	}
	if _, err := tx.Exec(`
		INSERT INTO batches (batch_id, document, state, started_at, finished_at, runs_scanned, hits_found)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Document, string(r.State), formatTime(r.StartedAt), finished, r.RunsScanned, r.HitsFound); err != nil {
		return fmt.Errorf("failed to record batch %s: %w", r.ID, err)
	}

	for i, p := range r.Placements {
		if _, err := tx.Exec(`
			INSERT INTO placements (batch_id, seq, opening_id, run_id, wall_id, level_id, proximity, x, y, z, width, height)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, i, p.OpeningID, p.RunID, p.WallID, p.LevelID, p.Proximity,
			p.Position.X, p.Position.Y, p.Position.Z, p.Width, p.Height); err != nil {
			return fmt.Errorf("failed to record placement %s: %w", p.OpeningID, err)
		}
	}
	for i, f := range r.Failures {
		if _, err := tx.Exec(`
			INSERT INTO batch_failures (batch_id, seq, run_id, wall_id, proximity, stage, reason)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.ID, i, f.RunID, f.WallID, f.Proximity, string(f.Stage), f.Reason); err != nil {
			return fmt.Errorf("failed to record failure of run %s: %w", f.RunID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch %s: %w", r.ID, err)
	}
	s.log.Debugf("journaled batch %s: %d placements, %d failures", r.ID, len(r.Placements), len(r.Failures))
	return nil
}

// Batches returns the journaled batches of a document, oldest first, with
// their placements and failures. An empty document lists every batch.
func (s *Store) Batches(document string) ([]model.BatchResult, error) {
	query := `SELECT batch_id, document, state, started_at, finished_at, runs_scanned, hits_found FROM batches`
	var args []interface{}
	if document != "" {
		query += ` WHERE document = ?`
		args = append(args, document)
	}
	query += ` ORDER BY started_at, batch_id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	var out []model.BatchResult
	for rows.Next() {
		r, err := scanBatch(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Placements, err = s.placements(out[i].ID); err != nil {
			return nil, err
		}
		if out[i].Failures, err = s.BatchFailures(out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Batch returns one journaled batch.
func (s *Store) Batch(id string) (model.BatchResult, error) {
	row := s.db.QueryRow(`
		SELECT batch_id, document, state, started_at, finished_at, runs_scanned, hits_found
		FROM batches WHERE batch_id = ?`, id)
	r, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BatchResult{}, fmt.Errorf("batch %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.BatchResult{}, err
	}
	if r.Placements, err = s.placements(id); err != nil {
		return model.BatchResult{}, err
	}
	if r.Failures, err = s.BatchFailures(id); err != nil {
		return model.BatchResult{}, err
	}
	return r, nil
}

func (s *Store) placements(batchID string) ([]model.Placement, error) {
	rows, err := s.db.Query(`
		SELECT opening_id, run_id, wall_id, level_id, proximity, x, y, z, width, height
		FROM placements WHERE batch_id = ? ORDER BY seq`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to read placements of %s: %w", batchID, err)
	}
	defer rows.Close()

	var out []model.Placement
	for rows.Next() {
		var p model.Placement
		if err := rows.Scan(&p.OpeningID, &p.RunID, &p.WallID, &p.LevelID, &p.Proximity,
			&p.Position.X, &p.Position.Y, &p.Position.Z, &p.Width, &p.Height); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// BatchFailures returns the failure records of a batch in the order they
// happened.
func (s *Store) BatchFailures(batchID string) ([]model.HitFailure, error) {
	rows, err := s.db.Query(`
		SELECT run_id, wall_id, proximity, stage, reason
		FROM batch_failures WHERE batch_id = ? ORDER BY seq`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to read failures of %s: %w", batchID, err)
	}
	defer rows.Close()

	var out []model.HitFailure
	for rows.Next() {
		var f model.HitFailure
		var stage string
		if err := rows.Scan(&f.RunID, &f.WallID, &f.Proximity, &stage, &f.Reason); err != nil {
			return nil, err
		}
		f.Stage = model.FailureStage(stage)
		out = append(out, f)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBatch(row scanner) (model.BatchResult, error) {
	var r model.BatchResult
	var state, started string
	var finished sql.NullString
	if err := row.Scan(&r.ID, &r.Document, &state, &started, &finished, &r.RunsScanned, &r.HitsFound); err != nil {
		return r, err
	}
	r.State = model.BatchState(state)

	var err error
	if r.StartedAt, err = parseTime(started); err != nil {
		return r, err
	}
	if finished.Valid {
		if r.FinishedAt, err = parseTime(finished.String); err != nil {
			return r, err
		}
	}
	return r, nil
}

// timeLayout keeps every fractional digit so timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
