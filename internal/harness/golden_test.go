package harness

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGolden_Add(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/add.yaml")
	require.NoError(t, err)

	_, err = RunWithGolden(t, s)
	require.NoError(t, err)
}

func TestGolden_AssertOnExistingResult(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/add.yaml")
	require.NoError(t, err)
	result, err := Run(s)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	AssertGolden(t, "add", result)
}
