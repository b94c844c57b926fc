package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeInto records one run of the arith crate in db.
func encodeInto(t *testing.T, db string) {
	t.Helper()
	cmd := NewEncodeCommand(&RootOptions{Format: "text"})
	_, _, err := execute(cmd, arithCrate, "--db", db, "--workers", "2")
	require.Error(t, err) // wipe fails
	require.Equal(t, ExitFailure, GetExitCode(err))
}

func listRuns(t *testing.T, db string) []RunSummary {
	t.Helper()
	cmd := NewShowCommand(&RootOptions{Format: "json"})
	out, _, err := execute(cmd, "--db", db)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   []RunSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func TestShow_ListsRuns(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	encodeInto(t, db)
	encodeInto(t, db)

	runs := listRuns(t, db)
	require.Len(t, runs, 2)
	for _, r := range runs {
		assert.Equal(t, "arith", r.Crate)
		assert.Equal(t, 5, r.Procedures)
		assert.Equal(t, 4, r.Succeeded)
		assert.Equal(t, 1, r.Failed)
		assert.True(t, r.Finished)
		assert.Equal(t, true, r.Options["comments"])
	}
	assert.NotEqual(t, runs[0].ID, runs[1].ID)

	cmd := NewShowCommand(&RootOptions{Format: "text"})
	out, _, err := execute(cmd, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "✗ "+runs[0].ID+"  arith  4/5 encoded")
}

func TestShow_RunDetail(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	encodeInto(t, db)
	runID := listRuns(t, db)[0].ID

	cmd := NewShowCommand(&RootOptions{Format: "json"})
	out, _, err := execute(cmd, "--db", db, "--run", runID)
	require.NoError(t, err)

	var resp struct {
		Data RunDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, runID, resp.Data.Run.ID)
	require.Len(t, resp.Data.Methods, 4)
	for i := 1; i < len(resp.Data.Methods); i++ {
		assert.Less(t, resp.Data.Methods[i-1].Seq, resp.Data.Methods[i].Seq)
	}
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, "wipe", resp.Data.Errors[0].Def)
	assert.Equal(t, "E201", resp.Data.Errors[0].Code)

	cmd = NewShowCommand(&RootOptions{Format: "text"})
	out, _, err = execute(cmd, "--db", db, "--run", runID)
	require.NoError(t, err)
	assert.Contains(t, out, "run "+runID)
	assert.Contains(t, out, "method m_add(")
	assert.Contains(t, out, "✗ wipe")
}

func TestShow_RunNotFound(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	encodeInto(t, db)

	cmd := NewShowCommand(&RootOptions{Format: "text"})
	out, _, err := execute(cmd, "--db", db, "--run", "missing")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "run not found: missing")
}

func TestShow_DatabaseNotFound(t *testing.T) {
	cmd := NewShowCommand(&RootOptions{Format: "text"})
	_, _, err := execute(cmd, "--db", filepath.Join(t.TempDir(), "none.db"))

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "database not found")
}
