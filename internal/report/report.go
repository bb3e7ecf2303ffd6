// Package report exports run summaries as YAML files. Writes take an
// exclusive lock next to the target and replace the file atomically, so
// several hosts can point --summary-out at the same file.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/drivetest/internal/level"
)

// Summary is the exported form of a finished run.
type Summary struct {
	RunID          string       `yaml:"run_id"`
	Course         string       `yaml:"course"`
	Passed         bool         `yaml:"passed"`
	Total          float64      `yaml:"total"`
	TotalTime      float64      `yaml:"total_time"`
	RequiredFailed bool         `yaml:"required_failed"`
	Errored        bool         `yaml:"errored"`
	FinishedAt     time.Time    `yaml:"finished_at"`
	Levels         []LevelEntry `yaml:"levels"`
}

// LevelEntry is one level outcome in play order.
type LevelEntry struct {
	Index int     `yaml:"index"`
	Title string  `yaml:"title"`
	Score float64 `yaml:"score"`
	Time  float64 `yaml:"time"`
}

// New builds an export from a run summary. titles[i] names the level of
// sum.Levels[i].
func New(runID, course string, sum level.RunSummary, titles []string, at time.Time) Summary {
	s := Summary{
		RunID:          runID,
		Course:         course,
		Passed:         sum.Passed(),
		Total:          sum.Total,
		TotalTime:      sum.TotalTime,
		RequiredFailed: sum.RequiredFailed,
		Errored:        sum.Errored,
		FinishedAt:     at.UTC(),
		Levels:         make([]LevelEntry, len(sum.Levels)),
	}
	for i, ls := range sum.Levels {
		e := LevelEntry{Index: i, Score: ls.Score, Time: ls.Time}
		if i < len(titles) {
			e.Title = titles[i]
		}
		s.Levels[i] = e
	}
	return s
}

// Write stores the summary at path while holding path + ".lock".
func Write(path string, s Summary) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("report: cannot encode summary: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("report: cannot create directory %s: %w", dir, err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("report: cannot lock %s: %w", path, err)
	}
	defer lock.Unlock() //nolint:errcheck

	return atomicWrite(path, data)
}

// Read loads a summary written by Write.
func Read(path string) (Summary, error) {
	var s Summary
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("report: cannot read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("report: cannot parse %s: %w", path, err)
	}
	return s, nil
}

// atomicWrite writes to a temp file in the target directory and renames it
// over path. The original file is left unchanged on failure.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("report: cannot create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("report: cannot write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("report: cannot sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("report: cannot close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("report: cannot set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("report: cannot replace %s: %w", path, err)
	}

	tmp = nil
	return nil
}
