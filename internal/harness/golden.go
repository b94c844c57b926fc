package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario, fails the test on scenario errors and
// compares the printed methods against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if !result.Pass {
		return result, fmt.Errorf("scenario %s failed:\n%v", scenario.Name, result.Errors)
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares the printed methods of an already-run scenario
// against a golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(result.Methods()))
}
