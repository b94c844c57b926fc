package engine

import "github.com/google/uuid"

// RunIDGenerator names encoding runs.
// Implemented by UUIDv7Generator; tests use testutil.FixedRunID.
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run IDs, so that runs
// listed by ID appear in creation order.
//
// Stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
