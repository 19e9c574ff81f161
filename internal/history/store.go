// Package history persists run summaries across invocations so results can
// be compared after the run directories are gone.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver

	"jitbench/internal/analysis"
)

// Store records completed benchmark runs in a SQLite database.
type Store struct {
	db *sql.DB
}

// RunSummary is one row of the runs table.
type RunSummary struct {
	ID         int64     `json:"id"`
	Suite      string    `json:"suite"`
	RunDir     string    `json:"run_dir"`
	Benchmarks int       `json:"benchmarks"`
	CreatedAt  time.Time `json:"created_at"`
}

// BenchmarkRow is one benchmark's stored metrics within a run.
type BenchmarkRow struct {
	Benchmark         string
	ColdOptimal       float64
	OptimalSpeedup    float64
	WarmTarget        float64
	OurImprovement    float64
	ColdTimeToOptimal int
	CompileTimeMedian *float64
}

// Open creates or opens the store at path and applies migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		suite TEXT NOT NULL,
		run_dir TEXT NOT NULL,
		benchmarks INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS run_metrics (
		run_id INTEGER NOT NULL REFERENCES runs(id),
		benchmark TEXT NOT NULL,
		cold_optimal REAL NOT NULL,
		optimal_speedup REAL NOT NULL,
		warm_target REAL NOT NULL,
		our_improvement REAL NOT NULL,
		cold_time_to_optimal INTEGER NOT NULL,
		compile_time_median REAL,
		metrics_json TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(query)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save records one completed run and its per-benchmark metrics.
func (s *Store) Save(suite, runDir string, metrics map[string]*analysis.Metrics) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs (suite, run_dir, benchmarks, created_at) VALUES (?, ?, ?, ?)`,
		suite, runDir, len(metrics), time.Now(),
	)
	if err != nil {
		return 0, err
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	benchmarks := make([]string, 0, len(metrics))
	for bench := range metrics {
		benchmarks = append(benchmarks, bench)
	}
	sort.Strings(benchmarks)

	for _, bench := range benchmarks {
		m := metrics[bench]
		blob, err := json.Marshal(m)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal metrics for %s: %w", bench, err)
		}
		_, err = tx.Exec(
			`INSERT INTO run_metrics
			 (run_id, benchmark, cold_optimal, optimal_speedup, warm_target,
			  our_improvement, cold_time_to_optimal, compile_time_median, metrics_json)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, bench, m.ColdOptimal, m.OptimalSpeedup, m.WarmTarget,
			m.OurImprovement, m.ColdTimeToOptimal, m.CompileTimeMedian, string(blob),
		)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

// Recent returns up to limit run summaries, newest first.
func (s *Store) Recent(limit int) ([]RunSummary, error) {
	rows, err := s.db.Query(
		`SELECT id, suite, run_dir, benchmarks, created_at
		 FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.Suite, &r.RunDir, &r.Benchmarks, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunMetrics returns the stored per-benchmark rows for one run.
func (s *Store) RunMetrics(runID int64) ([]BenchmarkRow, error) {
	rows, err := s.db.Query(
		`SELECT benchmark, cold_optimal, optimal_speedup, warm_target,
		        our_improvement, cold_time_to_optimal, compile_time_median
		 FROM run_metrics WHERE run_id = ? ORDER BY benchmark`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BenchmarkRow
	for rows.Next() {
		var r BenchmarkRow
		var compile sql.NullFloat64
		if err := rows.Scan(&r.Benchmark, &r.ColdOptimal, &r.OptimalSpeedup,
			&r.WarmTarget, &r.OurImprovement, &r.ColdTimeToOptimal, &compile); err != nil {
			return nil, err
		}
		if compile.Valid {
			v := compile.Float64
			r.CompileTimeMedian = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
