package testutil

// FixedRunID hands out the same run identifier on every call, making stored
// runs reproducible in tests.
type FixedRunID struct {
	id string
}

// NewFixedRunID returns a generator for id, or "test-run" if id is empty.
func NewFixedRunID(id string) *FixedRunID {
	if id == "" {
		id = "test-run"
	}
	return &FixedRunID{id: id}
}

// Generate returns the fixed identifier.
func (g *FixedRunID) Generate() string { return g.id }
