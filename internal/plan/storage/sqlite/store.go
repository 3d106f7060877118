// Package sqlite persists pipeline runs for later review: every
// element with its confidence and needs-review flag, every rejection
// with its reason. The store is append-only per run; the pipeline
// itself never reads it.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/draftworks/plan2model/internal/plan"
)

// Store wraps the run database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the run store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			floor_count INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS elements (
			run_id INTEGER NOT NULL,
			guid TEXT NOT NULL,
			floor TEXT NOT NULL,
			kind TEXT NOT NULL,
			label TEXT,
			confidence REAL NOT NULL,
			needs_review INTEGER NOT NULL,
			reason TEXT,
			source_ids TEXT,
			geometry TEXT,
			PRIMARY KEY (run_id, guid),
			FOREIGN KEY (run_id) REFERENCES runs(run_id)
		);
		CREATE TABLE IF NOT EXISTS rejections (
			run_id INTEGER NOT NULL,
			floor TEXT NOT NULL,
			stage TEXT NOT NULL,
			primitive_id TEXT NOT NULL,
			layer TEXT,
			reason TEXT NOT NULL,
			FOREIGN KEY (run_id) REFERENCES runs(run_id)
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialise run store schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// SaveModel records one completed run and returns its id.
func (s *Store) SaveModel(m *plan.Model) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec("INSERT INTO runs (floor_count) VALUES (?)", len(m.Floors))
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	insertElement, err := tx.Prepare(`
		INSERT INTO elements (run_id, guid, floor, kind, label, confidence, needs_review, reason, source_ids, geometry)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer insertElement.Close()

	for _, f := range m.Floors {
		if f.Grid != nil {
			for _, gl := range f.Grid.Lines() {
				if err := execElement(insertElement, runID, f.Floor, "grid_line", gl.Label,
					gl.Confidence, gl.NeedsReview, gl.Reason, gl.GUID, gl.SourceIDs, gl); err != nil {
					return 0, err
				}
			}
		}
		for _, w := range f.Walls {
			if err := execElement(insertElement, runID, f.Floor, "wall", "",
				w.Confidence, w.NeedsReview, w.Reason, w.GUID, w.SourceIDs, w); err != nil {
				return 0, err
			}
		}
		for _, c := range f.Columns {
			if err := execElement(insertElement, runID, f.Floor, "column", c.GridRef,
				c.Confidence, c.NeedsReview, c.Reason, c.GUID, nil, c); err != nil {
				return 0, err
			}
		}
		for _, sl := range f.Slabs {
			if err := execElement(insertElement, runID, f.Floor, "slab", "",
				sl.Confidence, sl.NeedsReview, sl.Reason, sl.GUID, nil, sl); err != nil {
				return 0, err
			}
		}
		for _, r := range f.Diagnostics.Rejections {
			if _, err := tx.Exec(
				"INSERT INTO rejections (run_id, floor, stage, primitive_id, layer, reason) VALUES (?, ?, ?, ?, ?, ?)",
				runID, f.Floor, r.Stage, r.PrimitiveID, r.Layer, r.Reason); err != nil {
				return 0, fmt.Errorf("failed to insert rejection: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

func execElement(stmt *sql.Stmt, runID int64, floor, kind, label string,
	confidence float64, needsReview bool, reason, guid string, sourceIDs []string, geom any) error {

	geometry, err := json.Marshal(geom)
	if err != nil {
		return fmt.Errorf("failed to encode %s geometry: %w", kind, err)
	}
	review := 0
	if needsReview {
		review = 1
	}
	if _, err := stmt.Exec(runID, guid, floor, kind, label, confidence, review,
		reason, strings.Join(sourceIDs, ","), string(geometry)); err != nil {
		return fmt.Errorf("failed to insert %s element: %w", kind, err)
	}
	return nil
}

// ReviewElement is one element flagged for manual review.
type ReviewElement struct {
	GUID       string
	Floor      string
	Kind       string
	Label      string
	Confidence float64
	Reason     string
}

// ElementsNeedingReview lists the flagged elements of a run, lowest
// confidence first.
func (s *Store) ElementsNeedingReview(runID int64) ([]ReviewElement, error) {
	rows, err := s.db.Query(`
		SELECT guid, floor, kind, label, confidence, reason
		FROM elements WHERE run_id = ? AND needs_review = 1
		ORDER BY confidence ASC, guid ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReviewElement
	for rows.Next() {
		var e ReviewElement
		if err := rows.Scan(&e.GUID, &e.Floor, &e.Kind, &e.Label, &e.Confidence, &e.Reason); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// RunSummary aggregates one run's stored counts.
type RunSummary struct {
	RunID       int64
	CreatedAt   time.Time
	FloorCount  int
	Elements    int
	NeedsReview int
	Rejections  int
}

// Summary returns stored counts for a run.
func (s *Store) Summary(runID int64) (*RunSummary, error) {
	sum := &RunSummary{RunID: runID}
	err := s.db.QueryRow(`
		SELECT created_at, floor_count,
			(SELECT COUNT(*) FROM elements WHERE run_id = r.run_id),
			(SELECT COUNT(*) FROM elements WHERE run_id = r.run_id AND needs_review = 1),
			(SELECT COUNT(*) FROM rejections WHERE run_id = r.run_id)
		FROM runs r WHERE run_id = ?`, runID).
		Scan(&sum.CreatedAt, &sum.FloorCount, &sum.Elements, &sum.NeedsReview, &sum.Rejections)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %d: %w", runID, err)
	}
	return sum, nil
}
