package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var harnessScenarios = filepath.Join("..", "harness", "testdata", "scenarios")

// goldenScenario is a golden scenario over the add procedure of the shared
// arith crate; crate is an absolute path.
func goldenScenario(crate string) string {
	return fmt.Sprintf(`name: adder
description: "add, compared against a golden file"
crate: %q
procedures: [add]
expect:
  - procedure: add
    outcome: encoded
golden: true
`, crate)
}

// scenarioDir lays out <tmp>/scenarios/adder.yaml and returns both dirs.
func scenarioDir(t *testing.T) (scenarios, golden string) {
	t.Helper()
	crate, err := filepath.Abs(arithCrate)
	require.NoError(t, err)

	root := t.TempDir()
	scenarios = filepath.Join(root, "scenarios")
	require.NoError(t, os.MkdirAll(scenarios, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(scenarios, "adder.yaml"), []byte(goldenScenario(crate)), 0644))
	return scenarios, filepath.Join(root, "golden")
}

func TestTestCommand_MissingArgs(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	_, _, err := execute(cmd)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommand_NonExistentScenariosDir(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	_, _, err := execute(cmd, "/nonexistent/scenarios")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommand_EmptyScenariosDir(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	out, _, err := execute(cmd, t.TempDir())

	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommand_EmptyScenariosDirJSON(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "json"})
	out, _, err := execute(cmd, t.TempDir())
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Data.Total)
}

func TestTestCommand_HarnessScenarios(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	out, _, err := execute(cmd, harnessScenarios)

	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ add")
	assert.Contains(t, out, "✓ arith")
	assert.Contains(t, out, "✓ reach")
	assert.Contains(t, out, "Results: 3 passed, 0 failed, 3 total")
}

func TestTestCommand_Filter(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "json"})
	out, _, err := execute(cmd, harnessScenarios, "--filter", "re*")
	require.NoError(t, err)

	var resp struct {
		Data TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "reach", resp.Data.Scenarios[0].Name)
}

func TestTestCommand_GoldenLifecycle(t *testing.T) {
	scenarios, golden := scenarioDir(t)

	// No golden file yet.
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	out, _, err := execute(cmd, scenarios)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ adder")
	assert.Contains(t, out, "golden file missing")

	cmd = NewTestCommand(&RootOptions{Format: "text"})
	out, _, err = execute(cmd, scenarios, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ adder (golden updated)")

	data, err := os.ReadFile(filepath.Join(golden, "adder.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "method m_add(_0p: Ref, _1p: Ref, _2p: Ref)")

	cmd = NewTestCommand(&RootOptions{Format: "text"})
	out, _, err = execute(cmd, scenarios)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ adder")

	require.NoError(t, os.WriteFile(filepath.Join(golden, "adder.golden"), []byte("method m_add()\n"), 0644))
	cmd = NewTestCommand(&RootOptions{Format: "text"})
	out, _, err = execute(cmd, scenarios)
	require.Error(t, err)
	assert.Contains(t, out, "do not match golden file")
}

func TestTestCommand_LoadErrorFailsScenario(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: broken\n"), 0644))

	cmd := NewTestCommand(&RootOptions{Format: "text"})
	out, _, err := execute(cmd, dir)

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestFindScenarioFiles(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "test1.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "test2.yml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "ignore.txt"), []byte(""), 0644))

	files, err := findScenarioFiles(tmpDir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestFindScenarioFilesWithFilter(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "arith-add.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "arith-inc.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "structs.yaml"), []byte(""), 0644))

	files, err := findScenarioFiles(tmpDir, "arith-*")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = findScenarioFiles(tmpDir, "[")
	require.Error(t, err)
}

func TestFindScenarioFilesSubdirectories(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "subdir")
	require.NoError(t, os.MkdirAll(subDir, 0755))

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "root.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(subDir, "sub.yaml"), []byte(""), 0644))

	files, err := findScenarioFiles(tmpDir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}
