package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines an encoder conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Crate is the path of a CUE crate file or directory. Relative paths are
	// resolved against the scenario file when loaded with LoadScenario.
	Crate string `yaml:"crate,omitempty"`

	// Source is an inline CUE crate, used instead of Crate.
	Source string `yaml:"source,omitempty"`

	// Procedures restricts encoding to these procedures. Empty means all.
	Procedures []string `yaml:"procedures,omitempty"`

	Options Options `yaml:"options,omitempty"`

	// Expect lists per-procedure outcomes.
	Expect []Expectation `yaml:"expect,omitempty"`

	Assertions []Assertion `yaml:"assertions,omitempty"`

	// Golden compares the printed methods with testdata/golden/<name>.golden.
	Golden bool `yaml:"golden,omitempty"`

	// RunID is the fixed run ID. Defaults to "test-run".
	RunID string `yaml:"run_id,omitempty"`
}

// Options mirror the encoder and engine options of the encode command.
type Options struct {
	// Comments defaults to true when omitted.
	Comments     *bool `yaml:"comments,omitempty"`
	ReachBlocks  bool  `yaml:"reach_blocks,omitempty"`
	TotalRvalues bool  `yaml:"total_rvalues,omitempty"`

	// Workers defaults to 1, which keeps output order deterministic.
	Workers int `yaml:"workers,omitempty"`
}

// comments reports the effective comment setting.
func (o Options) comments() bool {
	return o.Comments == nil || *o.Comments
}

// Map returns the options in the form recorded with stored runs.
func (o Options) Map() map[string]any {
	return map[string]any{
		"comments":      o.comments(),
		"reach_blocks":  o.ReachBlocks,
		"total_rvalues": o.TotalRvalues,
		"workers":       max(o.Workers, 1),
	}
}

// Expectation is the expected outcome of one procedure.
type Expectation struct {
	Procedure string `yaml:"procedure"`

	// Outcome is "encoded" or "failed".
	Outcome string `yaml:"outcome"`

	// Class, Code and Location are checked for failed outcomes when set.
	Class    string `yaml:"class,omitempty"`
	Code     string `yaml:"code,omitempty"`
	Location string `yaml:"location,omitempty"`
}

// Outcome values.
const (
	OutcomeEncoded = "encoded"
	OutcomeFailed  = "failed"
)

// Assertion checks the printed output, validation or store of a run.
type Assertion struct {
	Type string `yaml:"type"`

	// Procedure selects the method (method_contains, method_lacks).
	Procedure string `yaml:"procedure,omitempty"`

	// Text is the substring looked for.
	Text string `yaml:"text,omitempty"`

	// Code is the validation code (validation_code).
	Code string `yaml:"code,omitempty"`

	// Group is the recursion group message (recursive).
	Group string `yaml:"group,omitempty"`

	// Count is the expected number of stored methods (stored_methods).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertMethodContains  = "method_contains"
	AssertMethodLacks     = "method_lacks"
	AssertProgramContains = "program_contains"
	AssertValidationCode  = "validation_code"
	AssertRecursive       = "recursive"
	AssertStoredMethods   = "stored_methods"
)

// LoadScenario reads and parses a scenario YAML file. Crate paths are
// resolved relative to the scenario file.
//
// Returns an error if the file doesn't exist, is malformed, contains unknown
// fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Crate != "" && !filepath.IsAbs(s.Crate) {
		s.Crate = filepath.Join(filepath.Dir(path), s.Crate)
	}
	if s.Crate != "" {
		if _, err := os.Stat(s.Crate); err != nil {
			return nil, fmt.Errorf("%s: crate not found: %s", path, s.Crate)
		}
	}
	return s, nil
}

// ParseScenario parses scenario YAML. Crate paths are kept as written.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	switch {
	case s.Crate == "" && s.Source == "":
		return fmt.Errorf("one of crate or source is required")
	case s.Crate != "" && s.Source != "":
		return fmt.Errorf("crate and source are mutually exclusive")
	}
	if s.Options.Workers < 0 {
		return fmt.Errorf("options.workers must be non-negative")
	}
	if len(s.Expect) == 0 && len(s.Assertions) == 0 && !s.Golden {
		return fmt.Errorf("scenario checks nothing: add expect, assertions or golden")
	}

	for i, e := range s.Expect {
		if e.Procedure == "" {
			return fmt.Errorf("expect[%d]: procedure is required", i)
		}
		switch e.Outcome {
		case OutcomeEncoded:
			if e.Class != "" || e.Code != "" || e.Location != "" {
				return fmt.Errorf("expect[%d]: class, code and location only apply to failed outcomes", i)
			}
		case OutcomeFailed:
		default:
			return fmt.Errorf("expect[%d]: outcome must be %q or %q, got %q", i, OutcomeEncoded, OutcomeFailed, e.Outcome)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertMethodContains, AssertMethodLacks:
		if a.Procedure == "" || a.Text == "" {
			return fmt.Errorf("assertions[%d]: procedure and text are required for %s", index, a.Type)
		}
	case AssertProgramContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for %s", index, a.Type)
		}
	case AssertValidationCode:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for %s", index, a.Type)
		}
	case AssertRecursive:
		if a.Group == "" {
			return fmt.Errorf("assertions[%d]: group is required for %s", index, a.Type)
		}
	case AssertStoredMethods:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
