package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mutscan/mutscan"
)

// SQLiteSink persists scan results to a local sqlite database so that
// runs over many subjects can be queried together later.
type SQLiteSink struct {
	path string

	mu sync.Mutex
	db *sql.DB
}

// NewSQLiteSink creates a sink writing to the database file at path.
func NewSQLiteSink(path string) *SQLiteSink {
	return &SQLiteSink{path: path}
}

// Init opens the database and creates the schema if needed.
func (s *SQLiteSink) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("report: sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

// Close closes the underlying database.
func (s *SQLiteSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// SaveRun persists one result: the run row plus one row per record of
// the sorted table, in rank order, inside a single transaction.
func (s *SQLiteSink) SaveRun(ctx context.Context, res *mutscan.Result) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, subject_id, gene, skipped, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, res.RunID, res.Subject.ID, res.Subject.Gene, len(res.Skipped), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("report: insert run %s: %w", res.RunID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO variants (run_id, rank, label, codon, aa, file,
			min_diff, max_diff, range_diff, mean_diff, median_diff, std_diff, abs_mean_diff)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, rec := range res.Table.Records() {
		_, err := stmt.ExecContext(ctx, res.RunID, i+1,
			rec.Label, rec.Codon, rec.AminoAcid, rec.File,
			rec.Summary.Min, rec.Summary.Max, rec.Summary.Range,
			rec.Summary.Mean, rec.Summary.Median, rec.Summary.Std, rec.Summary.MeanAbs)
		if err != nil {
			return fmt.Errorf("report: insert variant %s: %w", rec.Label, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteSink) getDB() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil, errors.New("report: sink not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			subject_id TEXT NOT NULL,
			gene TEXT NOT NULL,
			skipped INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);
		-- Statistics columns are nullable: NaN from degenerate
		-- zero-norm positions binds as NULL.
		CREATE TABLE IF NOT EXISTS variants (
			run_id TEXT NOT NULL REFERENCES runs(id),
			rank INTEGER NOT NULL,
			label TEXT NOT NULL,
			codon TEXT NOT NULL,
			aa TEXT NOT NULL,
			file TEXT NOT NULL,
			min_diff REAL,
			max_diff REAL,
			range_diff REAL,
			mean_diff REAL,
			median_diff REAL,
			std_diff REAL,
			abs_mean_diff REAL,
			PRIMARY KEY (run_id, rank)
		);
	`)
	return err
}
