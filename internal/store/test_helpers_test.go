package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xldenis/prusti-dev/internal/canon"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates and stores a run with minimal required fields.
func createTestRun(t *testing.T, s *Store, id string) Run {
	t.Helper()
	run := Run{
		ID:             id,
		Crate:          "demo",
		EncoderVersion: canon.EncoderVersion,
		IVLVersion:     canon.IVLVersion,
		Procedures:     2,
	}
	if err := s.WriteRun(context.Background(), run); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}
	return run
}
