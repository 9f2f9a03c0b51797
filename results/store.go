// Package results keeps a history of harness runs in a SQLite database so
// predictor changes can be compared across runs.
package results

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sarchlab/branchstress/harness"
)

//go:embed schema.sql
var schemaSQL string

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// Run is one stored harness run.
type Run struct {
	RunID      string
	Timestamp  string
	Version    string
	Consistent bool
}

// Open creates or opens the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Save writes a report in a single transaction. A report without a RunID is
// given one.
func (s *Store) Save(ctx context.Context, report harness.Report) (string, error) {
	if report.RunID == "" {
		report.RunID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, timestamp, version, consistent) VALUES (?, ?, ?, ?)`,
		report.RunID, report.Timestamp, report.Version, boolInt(report.Consistent))
	if err != nil {
		return "", fmt.Errorf("failed to insert run %s: %w", report.RunID, err)
	}

	for _, r := range report.Predictors {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO predictor_runs
			 (run_id, predictor, kind, result, status, completed, mispredictions, penalty_cycles, trace_digest)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			report.RunID, r.Predictor, string(r.Kind), r.Result, r.Status, boolInt(r.Completed),
			int64(r.Mispredictions), int64(r.PenaltyCycles), r.TraceDigest)
		if err != nil {
			return "", fmt.Errorf("failed to insert predictor %s: %w", r.Predictor, err)
		}

		for seq, ph := range r.Phases {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO phase_results
				 (run_id, predictor, seq, phase, score, branches, mispredictions, indirect,
				  indirect_misses, mispredict_rate, penalty_cycles)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				report.RunID, r.Predictor, seq, ph.Phase, ph.Score, int64(ph.Branches),
				int64(ph.Mispredictions), int64(ph.Indirect), int64(ph.IndirectMisses),
				ph.MispredictionRate, int64(ph.PenaltyCycles))
			if err != nil {
				return "", fmt.Errorf("failed to insert phase %s/%s: %w", r.Predictor, ph.Phase, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run %s: %w", report.RunID, err)
	}
	return report.RunID, nil
}

// Runs lists stored runs, oldest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, timestamp, version, consistent FROM runs ORDER BY timestamp, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var consistent int
		if err := rows.Scan(&r.RunID, &r.Timestamp, &r.Version, &consistent); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Consistent = consistent != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// PhaseResults returns the phase rows of a run, grouped by predictor in
// execution order.
func (s *Store) PhaseResults(ctx context.Context, runID string) ([]harness.PhaseResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT predictor, phase, score, branches, mispredictions, indirect,
		        indirect_misses, mispredict_rate, penalty_cycles
		 FROM phase_results WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query phase results: %w", err)
	}
	defer rows.Close()

	var out []harness.PhaseResult
	for rows.Next() {
		var ph harness.PhaseResult
		var branches, misses, indirect, indirectMisses, penalty int64
		if err := rows.Scan(&ph.Predictor, &ph.Phase, &ph.Score, &branches, &misses,
			&indirect, &indirectMisses, &ph.MispredictionRate, &penalty); err != nil {
			return nil, fmt.Errorf("failed to scan phase result: %w", err)
		}
		ph.Branches = uint64(branches)
		ph.Mispredictions = uint64(misses)
		ph.Indirect = uint64(indirect)
		ph.IndirectMisses = uint64(indirectMisses)
		ph.PenaltyCycles = uint64(penalty)
		out = append(out, ph)
	}
	return out, rows.Err()
}
