package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrRunNotFound is returned when a run ID is not in the store.
var ErrRunNotFound = errors.New("run not found")

// ReadRun returns the run with the given ID.
func (s *Store) ReadRun(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, crate, encoder_version, ivl_version, options, procedures, succeeded, failed, finished
		FROM runs
		WHERE id = ?
	`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return run, err
}

// LatestRuns returns up to limit runs, most recently started first.
func (s *Store) LatestRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, crate, encoder_version, ivl_version, options, procedures, succeeded, failed, finished
		FROM runs
		ORDER BY rowid DESC
		LIMIT ?
	`, limit)
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

// ReadMethods returns the methods a run produced.
// Results are ordered deterministically: ORDER BY seq ASC, def ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if the run produced no methods.
func (s *Store) ReadMethods(ctx context.Context, runID string) ([]Method, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.def, m.body_hash, m.text, rm.seq
		FROM run_methods rm
		JOIN methods m ON rm.method_id = m.id
		WHERE rm.run_id = ?
		ORDER BY rm.seq ASC, m.def COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query methods: %w", err)
	}
	defer rows.Close()

	methods := []Method{}
	for rows.Next() {
		var m Method
		if err := rows.Scan(&m.ID, &m.Def, &m.BodyHash, &m.Text, &m.Seq); err != nil {
			return nil, fmt.Errorf("scan method: %w", err)
		}
		methods = append(methods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate methods: %w", err)
	}
	return methods, nil
}

// ReadErrors returns the encoding failures of a run.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC COLLATE BINARY.
func (s *Store) ReadErrors(ctx context.Context, runID string) ([]EncodeError, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, seq, def, class, code, message, location
		FROM encode_errors
		WHERE run_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query encode errors: %w", err)
	}
	defer rows.Close()

	errs := []EncodeError{}
	for rows.Next() {
		var e EncodeError
		if err := rows.Scan(&e.ID, &e.RunID, &e.Seq, &e.Def, &e.Class, &e.Code, &e.Message, &e.Location); err != nil {
			return nil, fmt.Errorf("scan encode error: %w", err)
		}
		errs = append(errs, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate encode errors: %w", err)
	}
	return errs, nil
}

// LatestMethod returns the most recently stored method text for def across
// all runs, and false if def was never encoded successfully.
func (s *Store) LatestMethod(ctx context.Context, def string) (Method, bool, error) {
	var m Method
	err := s.db.QueryRowContext(ctx, `
		SELECT m.id, m.def, m.body_hash, m.text, rm.seq
		FROM run_methods rm
		JOIN methods m ON rm.method_id = m.id
		JOIN runs r ON rm.run_id = r.id
		WHERE m.def = ?
		ORDER BY r.rowid DESC, rm.seq DESC
		LIMIT 1
	`, def).Scan(&m.ID, &m.Def, &m.BodyHash, &m.Text, &m.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return Method{}, false, nil
	}
	if err != nil {
		return Method{}, false, fmt.Errorf("query latest method: %w", err)
	}
	return m, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run      Run
		opts     string
		finished int
	)
	err := row.Scan(&run.ID, &run.Crate, &run.EncoderVersion, &run.IVLVersion, &opts,
		&run.Procedures, &run.Succeeded, &run.Failed, &finished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if run.Options, err = unmarshalOptions(opts); err != nil {
		return Run{}, err
	}
	run.Finished = finished != 0
	return run, nil
}
