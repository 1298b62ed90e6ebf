package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chriserin/ploughman/internal/runner"
)

// Fixed width so that started_at sorts as text.
const timeLayout = "2006-01-02 15:04:05.000000"

var ErrNoRuns = errors.New("no runs recorded")

type Run struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	Features  int
	Scenarios int
	Passed    int
	Failed    int
	Status    string
}

type ScenarioResult struct {
	RunID     string
	StartedAt time.Time
	Feature   string
	Name      string
	File      string
	Line      int
	Status    string
	Failure   string
	Duration  time.Duration
}

// RecordRun stores res and every scenario in it under a new run ID.
func RecordRun(db *sql.DB, res *runner.Result, startedAt time.Time) (string, error) {
	id := uuid.NewString()

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs (id, started_at, duration_ms, features, scenarios, passed, failed, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, startedAt.UTC().Format(timeLayout), res.Summary.Duration.Milliseconds(),
		res.Summary.Features, res.Summary.Scenarios, res.Summary.Passed, res.Summary.Failed,
		res.Status().String())
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO scenario_results (run_id, feature, name, file_path, line, status, failure, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing scenario insert: %w", err)
	}
	defer stmt.Close()

	for _, fr := range res.Features {
		for _, sr := range fr.Scenarios {
			status, failure := "passed", ""
			if err := sr.Failure(); err != nil {
				status, failure = "failed", err.Error()
			}
			if _, err := stmt.Exec(id, fr.Name, sr.Name, sr.File, sr.Line, status, failure, sr.Duration.Milliseconds()); err != nil {
				return "", fmt.Errorf("inserting scenario %q: %w", sr.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return id, nil
}

func RunCount(db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting runs: %w", err)
	}
	return n, nil
}

// LatestRun returns ErrNoRuns when nothing has been recorded.
func LatestRun(db *sql.DB) (*Run, error) {
	var (
		r          Run
		startedAt  string
		durationMS int64
	)
	err := db.QueryRow(`SELECT id, started_at, duration_ms, features, scenarios, passed, failed, status
		FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1`).
		Scan(&r.ID, &startedAt, &durationMS, &r.Features, &r.Scenarios, &r.Passed, &r.Failed, &r.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("reading latest run: %w", err)
	}

	r.StartedAt, err = time.Parse(timeLayout, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing run time %q: %w", startedAt, err)
	}
	r.Duration = time.Duration(durationMS) * time.Millisecond
	return &r, nil
}

// FailedScenarios lists the failures of one run in file order.
func FailedScenarios(db *sql.DB, runID string) ([]ScenarioResult, error) {
	return queryResults(db, `WHERE s.run_id = ? AND s.status = 'failed' ORDER BY s.id`, runID)
}

// ScenarioHistory lists every recorded outcome of the named scenario,
// newest first. A limit of zero or less returns them all.
func ScenarioHistory(db *sql.DB, name string, limit int) ([]ScenarioResult, error) {
	if limit <= 0 {
		limit = -1
	}
	return queryResults(db, `WHERE s.name = ? ORDER BY r.started_at DESC, s.id DESC LIMIT ?`, name, limit)
}

func queryResults(db *sql.DB, where string, args ...any) ([]ScenarioResult, error) {
	rows, err := db.Query(`SELECT s.run_id, r.started_at, s.feature, s.name, s.file_path, s.line, s.status, s.failure, s.duration_ms
		FROM scenario_results s JOIN runs r ON r.id = s.run_id `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("querying scenario results: %w", err)
	}
	defer rows.Close()

	var results []ScenarioResult
	for rows.Next() {
		var (
			sr         ScenarioResult
			startedAt  string
			durationMS int64
		)
		if err := rows.Scan(&sr.RunID, &startedAt, &sr.Feature, &sr.Name, &sr.File, &sr.Line, &sr.Status, &sr.Failure, &durationMS); err != nil {
			return nil, fmt.Errorf("scanning scenario result: %w", err)
		}
		sr.StartedAt, err = time.Parse(timeLayout, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing run time %q: %w", startedAt, err)
		}
		sr.Duration = time.Duration(durationMS) * time.Millisecond
		results = append(results, sr)
	}
	return results, rows.Err()
}
