package store

import (
	"context"
	"database/sql"
	"fmt"
)

// WriteBatch inserts a batch with the runs it produced, atomically.
// Seq numbers are assigned in order: the batch first, then each run.
// Returns the batch and runs with Seq filled in.
func (s *Store) WriteBatch(ctx context.Context, batch Batch, runs []Run) (Batch, []Run, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Batch{}, nil, fmt.Errorf("write batch: begin: %w", err)
	}
	defer tx.Rollback()

	seq, err := nextSeq(ctx, tx, "batches")
	if err != nil {
		return Batch{}, nil, fmt.Errorf("write batch: %w", err)
	}
	batch.Seq = seq

	_, err = tx.ExecContext(ctx, `
		INSERT INTO batches (id, source, pattern, seq)
		VALUES (?, ?, ?, ?)
	`, batch.ID, batch.Source, batch.Filter, batch.Seq)
	if err != nil {
		return Batch{}, nil, fmt.Errorf("write batch: %w", err)
	}

	written := make([]Run, len(runs))
	for i, run := range runs {
		run.BatchID = batch.ID
		if run.Seq, err = writeRun(ctx, tx, run); err != nil {
			return Batch{}, nil, fmt.Errorf("write batch: run %s: %w", run.Scenario, err)
		}
		written[i] = run
	}

	if err := tx.Commit(); err != nil {
		return Batch{}, nil, fmt.Errorf("write batch: commit: %w", err)
	}
	return batch, written, nil
}

func writeRun(ctx context.Context, tx *sql.Tx, run Run) (int64, error) {
	errsJSON, err := marshalErrors(run.Errors)
	if err != nil {
		return 0, err
	}

	seq, err := nextSeq(ctx, tx, "runs")
	if err != nil {
		return 0, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, batch_id, scenario, model, pass, outcome, applied, failed_step,
		 violation_kind, violation_label, final_state, errors, fingerprint, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.BatchID,
		run.Scenario,
		run.Model,
		run.Pass,
		run.Outcome,
		run.Applied,
		run.FailedStep,
		run.ViolationKind,
		run.ViolationLabel,
		run.FinalState,
		errsJSON,
		run.Fingerprint,
		seq,
	)
	if err != nil {
		return 0, err
	}
	return seq, nil
}
