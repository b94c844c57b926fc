package harness

import (
	"strings"

	"github.com/xldenis/prusti-dev/internal/compiler"
	"github.com/xldenis/prusti-dev/internal/mir"
)

// ProcedureResult is the outcome of one procedure in a scenario.
type ProcedureResult struct {
	Def     mir.DefID `json:"def"`
	Seq     int64     `json:"seq"`
	Encoded bool      `json:"encoded"`

	// Text is the printed method when Encoded.
	Text string `json:"text,omitempty"`

	// Failure details when not Encoded.
	Class    string `json:"class,omitempty"`
	Code     string `json:"code,omitempty"`
	Location string `json:"location,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	Pass bool `json:"pass"`

	RunID string `json:"run_id"`

	// Procedures are ordered by Seq.
	Procedures []ProcedureResult `json:"procedures"`

	// Program is the printed program of the run.
	Program string `json:"-"`

	Validation []compiler.ValidationError `json:"validation,omitempty"`
	Recursion  []string                   `json:"recursion,omitempty"`

	// Errors contains failed expectations and assertions.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:       true,
		Procedures: []ProcedureResult{},
		Errors:     []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Procedure returns the result of def.
func (r *Result) Procedure(def string) (ProcedureResult, bool) {
	for _, p := range r.Procedures {
		if string(p.Def) == def {
			return p, true
		}
	}
	return ProcedureResult{}, false
}

// Methods returns the printed methods of the encoded procedures in seq
// order, separated by blank lines. This is the golden snapshot.
func (r *Result) Methods() string {
	var texts []string
	for _, p := range r.Procedures {
		if p.Encoded {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}
