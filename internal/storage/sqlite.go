// Package storage provides SQLite-based persistence for evaluation runs.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/drivetest/internal/level"
)

// ErrRunNotFound is returned when a run ID has no stored run.
var ErrRunNotFound = errors.New("storage: run not found")

// Store manages the SQLite database connection for run persistence.
type Store struct {
	db *sql.DB
}

// RunRecord is one stored evaluation run.
type RunRecord struct {
	ID             string
	Course         string
	Total          float64
	TotalTime      float64
	RequiredFailed bool
	Errored        bool
	LevelsPlayed   int
	CreatedAt      time.Time
}

// Passed reports whether the run ended with no required failure or error.
func (r RunRecord) Passed() bool {
	return !r.RequiredFailed && !r.Errored
}

// LevelRecord is one stored level outcome of a run.
type LevelRecord struct {
	Index int
	Title string
	Score float64
	Time  float64 // Seconds
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}
	// SSH sessions share one store; serialize writers on a single connection.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			course TEXT NOT NULL,
			total REAL NOT NULL,
			total_time REAL NOT NULL,
			required_failed INTEGER NOT NULL DEFAULT 0,
			errored INTEGER NOT NULL DEFAULT 0,
			levels_played INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_course ON runs(course);
		CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);

		CREATE TABLE IF NOT EXISTS level_scores (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			idx INTEGER NOT NULL,
			title TEXT NOT NULL,
			score REAL NOT NULL,
			time_secs REAL NOT NULL,
			PRIMARY KEY (run_id, idx)
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun records a finished run and its level scores in one transaction.
// titles[i] names the level of sum.Levels[i]; missing titles are stored empty.
// Returns the new run ID.
func (s *Store) SaveRun(course string, sum level.RunSummary, titles []string) (string, error) {
	id := NewRunID()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after Commit

	_, err = tx.Exec(
		`INSERT INTO runs (id, course, total, total_time, required_failed, errored, levels_played)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, course, sum.Total, sum.TotalTime, sum.RequiredFailed, sum.Errored, len(sum.Levels),
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save run: %w", err)
	}

	for i, ls := range sum.Levels {
		title := ""
		if i < len(titles) {
			title = titles[i]
		}
		_, err := tx.Exec(
			"INSERT INTO level_scores (run_id, idx, title, score, time_secs) VALUES (?, ?, ?, ?, ?)",
			id, i, title, ls.Score, ls.Time,
		)
		if err != nil {
			return "", fmt.Errorf("storage: cannot save level %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("storage: cannot commit run: %w", err)
	}
	return id, nil
}

const runColumns = `id, course, total, total_time, required_failed, errored, levels_played, created_at`

// RecentRuns retrieves the most recent runs, optionally for one course.
func (s *Store) RecentRuns(course string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+`
		 FROM runs
		 WHERE ? = '' OR course = ?
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		course, course, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// Run retrieves a single run by ID.
func (s *Store) Run(id string) (RunRecord, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, ErrRunNotFound
	}
	return r, err
}

// RunLevels retrieves the level scores of a run in play order.
func (s *Store) RunLevels(runID string) ([]LevelRecord, error) {
	rows, err := s.db.Query(
		`SELECT idx, title, score, time_secs
		 FROM level_scores
		 WHERE run_id = ?
		 ORDER BY idx`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query level scores: %w", err)
	}
	defer rows.Close()

	var levels []LevelRecord
	for rows.Next() {
		var l LevelRecord
		if err := rows.Scan(&l.Index, &l.Title, &l.Score, &l.Time); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		levels = append(levels, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return levels, nil
}

// BestRun returns the passed run with the highest total for a course,
// breaking ties by the shorter total time. ok is false when no run passed.
func (s *Store) BestRun(course string) (RunRecord, bool, error) {
	row := s.db.QueryRow(
		`SELECT `+runColumns+`
		 FROM runs
		 WHERE course = ? AND required_failed = 0 AND errored = 0
		 ORDER BY total DESC, total_time ASC
		 LIMIT 1`,
		course,
	)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, false, nil
	}
	if err != nil {
		return RunRecord{}, false, err
	}
	return r, true, nil
}

// ClearRuns deletes all runs and their level scores for the given course.
func (s *Store) ClearRuns(course string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after Commit

	if _, err := tx.Exec(
		"DELETE FROM level_scores WHERE run_id IN (SELECT id FROM runs WHERE course = ?)",
		course,
	); err != nil {
		return fmt.Errorf("storage: cannot clear level scores: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM runs WHERE course = ?", course); err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit clear: %w", err)
	}
	return nil
}

// CourseStats contains aggregated statistics for a course.
type CourseStats struct {
	Course    string
	Runs      int
	Passed    int
	BestTotal float64
	AvgTotal  float64
	LastRun   time.Time
}

// GetCourseStats retrieves aggregated statistics for a course.
func (s *Store) GetCourseStats(course string) (*CourseStats, error) {
	stats := &CourseStats{Course: course}

	var lastRun any
	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN required_failed = 0 AND errored = 0 THEN 1 ELSE 0 END), 0),
		        COALESCE(MAX(total), 0), COALESCE(AVG(total), 0), MAX(created_at)
		 FROM runs WHERE course = ?`,
		course,
	).Scan(&stats.Runs, &stats.Passed, &stats.BestTotal, &stats.AvgTotal, &lastRun)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get course stats: %w", err)
	}
	stats.LastRun = parseTime(lastRun)

	return stats, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (RunRecord, error) {
	var r RunRecord
	var createdAt any
	err := row.Scan(
		&r.ID,
		&r.Course,
		&r.Total,
		&r.TotalTime,
		&r.RequiredFailed,
		&r.Errored,
		&r.LevelsPlayed,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return r, err
	}
	if err != nil {
		return r, fmt.Errorf("storage: cannot scan run: %w", err)
	}
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}

// parseTime handles the datetime as either time.Time or string.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
