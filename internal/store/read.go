package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const runColumns = `id, batch_id, scenario, model, pass, outcome, applied, failed_step,
	violation_kind, violation_label, final_state, errors, fingerprint, seq`

// ReadRuns returns the most recent runs, newest first.
// A limit of zero or less returns every run.
//
// Returns an empty slice (not nil) if nothing was recorded.
func (s *Store) ReadRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.queryRuns(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
}

// ReadScenarioRuns returns the runs of one scenario, newest first.
// A limit of zero or less returns every run.
func (s *Store) ReadScenarioRuns(ctx context.Context, scenario string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.queryRuns(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE scenario = ?
		ORDER BY seq DESC
		LIMIT ?
	`, scenario, limit)
}

// ReadBatch returns a batch and its runs in recording order.
// Returns ErrNotFound if no batch has the given ID.
func (s *Store) ReadBatch(ctx context.Context, id string) (Batch, []Run, error) {
	var b Batch
	err := s.db.QueryRowContext(ctx, `
		SELECT id, source, pattern, seq
		FROM batches
		WHERE id = ?
	`, id).Scan(&b.ID, &b.Source, &b.Filter, &b.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return Batch{}, nil, fmt.Errorf("batch %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Batch{}, nil, fmt.Errorf("read batch: %w", err)
	}

	runs, err := s.queryRuns(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE batch_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return Batch{}, nil, err
	}
	return b, runs, nil
}

// LastPassingFingerprint returns the fingerprint of the most recent passing
// run of scenario. Returns ErrNotFound if the scenario never passed.
func (s *Store) LastPassingFingerprint(ctx context.Context, scenario string) (string, error) {
	var fp string
	err := s.db.QueryRowContext(ctx, `
		SELECT fingerprint
		FROM runs
		WHERE scenario = ? AND pass = 1
		ORDER BY seq DESC
		LIMIT 1
	`, scenario).Scan(&fp)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("passing run of %s: %w", scenario, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read fingerprint: %w", err)
	}
	return fp, nil
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func scanRun(rows *sql.Rows) (Run, error) {
	var run Run
	var errsJSON string
	err := rows.Scan(
		&run.ID,
		&run.BatchID,
		&run.Scenario,
		&run.Model,
		&run.Pass,
		&run.Outcome,
		&run.Applied,
		&run.FailedStep,
		&run.ViolationKind,
		&run.ViolationLabel,
		&run.FinalState,
		&errsJSON,
		&run.Fingerprint,
		&run.Seq,
	)
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	run.Errors, err = unmarshalErrors(errsJSON)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}
