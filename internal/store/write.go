package store

import (
	"context"
	"fmt"

	"github.com/xldenis/prusti-dev/internal/canon"
)

// WriteRun records the start of a run. Uses ON CONFLICT(id) DO NOTHING for
// idempotency - writing the same run twice keeps the first row.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	opts, err := marshalOptions(run.Options)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, crate, encoder_version, ivl_version, options, procedures)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Crate,
		run.EncoderVersion,
		run.IVLVersion,
		opts,
		run.Procedures,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// FinishRun records the outcome counts of a run and marks it finished.
func (s *Store) FinishRun(ctx context.Context, runID string, succeeded, failed int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET succeeded = ?, failed = ?, finished = 1 WHERE id = ?
	`, succeeded, failed, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run: %w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// WriteMethod records that run produced m. The method row is
// content-addressed: m.ID is computed from (def, body hash, text) when empty,
// and a method already stored by an earlier run is shared, not duplicated.
// Returns the method ID.
//
// Note: The run must exist (foreign key constraint).
func (s *Store) WriteMethod(ctx context.Context, runID string, m Method) (string, error) {
	id := m.ID
	if id == "" {
		var err error
		if id, err = canon.MethodID(m.Def, m.BodyHash, m.Text); err != nil {
			return "", fmt.Errorf("write method: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("write method: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO methods (id, def, body_hash, text)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, m.Def, m.BodyHash, m.Text); err != nil {
		return "", fmt.Errorf("write method: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO run_methods (run_id, method_id, seq)
		VALUES (?, ?, ?)
		ON CONFLICT(run_id, method_id) DO NOTHING
	`, runID, id, m.Seq); err != nil {
		return "", fmt.Errorf("write method: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("write method: commit: %w", err)
	}
	return id, nil
}

// WriteEncodeError records a failed procedure. e.ID is computed from
// (run, def, code, message) when empty; duplicate writes are ignored.
//
// Note: The run must exist (foreign key constraint).
func (s *Store) WriteEncodeError(ctx context.Context, e EncodeError) (string, error) {
	id := e.ID
	if id == "" {
		var err error
		if id, err = canon.ErrorID(e.RunID, e.Def, e.Code, e.Message); err != nil {
			return "", fmt.Errorf("write encode error: %w", err)
		}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO encode_errors
		(id, run_id, seq, def, class, code, message, location)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		id,
		e.RunID,
		e.Seq,
		e.Def,
		e.Class,
		e.Code,
		e.Message,
		e.Location,
	)
	if err != nil {
		return "", fmt.Errorf("write encode error: %w", err)
	}
	return id, nil
}
