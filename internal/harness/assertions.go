package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/xldenis/prusti-dev/internal/store"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome

	// Output is the printed text the assertion looked at, if any.
	Output string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.Output != "" {
		fmt.Fprintf(&buf, "\nOutput:\n")
		for _, line := range strings.Split(strings.TrimRight(e.Output, "\n"), "\n") {
			fmt.Fprintf(&buf, "  %s\n", line)
		}
	}
	return buf.String()
}

// assertMethodText checks that the printed method of a procedure contains
// (or, with want false, lacks) the assertion text.
func assertMethodText(result *Result, a Assertion, want bool) error {
	p, ok := result.Procedure(a.Procedure)
	if !ok || !p.Encoded {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("encoded method for %s", a.Procedure),
			Actual:   "procedure was not encoded",
		}
	}
	if strings.Contains(p.Text, a.Text) == want {
		return nil
	}
	expected := fmt.Sprintf("method %s contains %q", a.Procedure, a.Text)
	if !want {
		expected = fmt.Sprintf("method %s does not contain %q", a.Procedure, a.Text)
	}
	return &AssertionError{Type: a.Type, Expected: expected, Actual: "mismatch", Output: p.Text}
}

func assertProgramContains(result *Result, a Assertion) error {
	if strings.Contains(result.Program, a.Text) {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("program contains %q", a.Text),
		Actual:   "not found",
		Output:   result.Program,
	}
}

func assertValidationCode(result *Result, a Assertion) error {
	var codes []string
	for _, v := range result.Validation {
		if v.Code == a.Code {
			return nil
		}
		codes = append(codes, v.Code)
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("validation error %s", a.Code),
		Actual:   fmt.Sprintf("codes %v", codes),
	}
}

func assertRecursive(result *Result, a Assertion) error {
	for _, g := range result.Recursion {
		if g == a.Group {
			return nil
		}
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("recursion group %q", a.Group),
		Actual:   fmt.Sprintf("groups %q", result.Recursion),
	}
}

// assertStoredMethods checks the number of methods the store holds for the
// run.
func assertStoredMethods(ctx context.Context, st *store.Store, runID string, a Assertion) error {
	methods, err := st.ReadMethods(ctx, runID)
	if err != nil {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d stored methods", a.Count),
			Actual:   fmt.Sprintf("read error: %v", err),
		}
	}
	if len(methods) != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d stored methods", a.Count),
			Actual:   fmt.Sprintf("%d stored methods", len(methods)),
		}
	}
	return nil
}

// AssertionContext provides the store of the run for stored_methods.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
	RunID string
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, a := range assertions {
		var err error

		switch a.Type {
		case AssertMethodContains:
			err = assertMethodText(result, a, true)
		case AssertMethodLacks:
			err = assertMethodText(result, a, false)
		case AssertProgramContains:
			err = assertProgramContains(result, a)
		case AssertValidationCode:
			err = assertValidationCode(result, a)
		case AssertRecursive:
			err = assertRecursive(result, a)
		case AssertStoredMethods:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: stored_methods requires a store", i)
			} else {
				err = assertStoredMethods(actx.Ctx, actx.Store, actx.RunID, a)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
