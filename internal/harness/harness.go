package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/xldenis/prusti-dev/internal/compiler"
	"github.com/xldenis/prusti-dev/internal/crate"
	"github.com/xldenis/prusti-dev/internal/encoder"
	"github.com/xldenis/prusti-dev/internal/engine"
	"github.com/xldenis/prusti-dev/internal/mir"
	"github.com/xldenis/prusti-dev/internal/store"
	"github.com/xldenis/prusti-dev/internal/testutil"
	"github.com/xldenis/prusti-dev/internal/vir"
)

// Harness holds the per-scenario execution state.
type Harness struct {
	store  *store.Store
	crate  *crate.Crate
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
//  1. Load and compile the crate
//  2. Validate it and analyse recursion
//  3. Encode the selected procedures through the engine
//  4. Check expectations and assertions
//
// The returned error reports scenarios that could not be run at all (the
// crate does not compile, a selected procedure does not exist); scenario
// failures are reported in Result.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	c, err := loadCrate(scenario)
	if err != nil {
		return nil, fmt.Errorf("load crate: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		crate:  c,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	return h.run(ctx, scenario)
}

func loadCrate(s *Scenario) (*crate.Crate, error) {
	if s.Source != "" {
		return compiler.CompileString(s.Name, s.Source)
	}
	return compiler.Load(s.Crate)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) (*Result, error) {
	opts := scenario.Options
	session := encoder.NewSession(h.crate,
		encoder.WithLogger(h.logger),
		encoder.WithComments(opts.comments()),
		encoder.WithReachBlocks(opts.ReachBlocks),
		encoder.WithTotalRvalues(opts.TotalRvalues),
	)
	defs := make([]mir.DefID, len(scenario.Procedures))
	for i, p := range scenario.Procedures {
		defs[i] = mir.DefID(p)
	}
	order := defs
	if len(order) == 0 {
		order = h.crate.Defs()
	}
	eng := engine.New(h.crate, session,
		engine.WithStore(h.store),
		engine.WithRunIDs(testutil.NewFixedRunID(scenario.RunID)),
		engine.WithClock(testutil.NewOrderedClock(order...)),
		engine.WithWorkers(max(opts.Workers, 1)),
		engine.WithLogger(h.logger),
		engine.WithRunOptions(opts.Map()),
	)

	report, err := eng.Run(ctx, defs)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	result := NewResult()
	result.RunID = report.RunID
	result.Program = vir.Print(report.Program)
	result.Validation = compiler.Validate(h.crate)
	for _, g := range report.Recursion {
		result.Recursion = append(result.Recursion, g.Message)
	}
	for _, res := range report.Results {
		result.Procedures = append(result.Procedures, procedureResult(res))
	}

	for _, msg := range checkExpectations(result, scenario.Expect) {
		result.AddError(msg)
	}
	for _, v := range result.Validation {
		if !expectsValidation(scenario.Assertions, v.Code) {
			result.AddError(fmt.Sprintf("unexpected validation error: %s", v))
		}
	}
	actx := &AssertionContext{Store: h.store, Ctx: ctx, RunID: report.RunID}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

func procedureResult(res engine.Result) ProcedureResult {
	out := ProcedureResult{Def: res.Def, Seq: res.Seq, Encoded: res.Err == nil, Text: res.Text}
	if res.Err == nil {
		return out
	}
	out.Message = res.Err.Error()
	var ee *encoder.Error
	if errors.As(res.Err, &ee) {
		out.Class = string(ee.Class)
		out.Code = ee.Code
		if ee.Location != nil {
			out.Location = ee.Location.String()
		}
	}
	return out
}

// checkExpectations compares per-procedure outcomes with the expectations.
func checkExpectations(result *Result, expect []Expectation) []string {
	var errs []string
	for i, e := range expect {
		got, ok := result.Procedure(e.Procedure)
		if !ok {
			errs = append(errs, fmt.Sprintf("expect[%d]: procedure %s was not encoded in this run", i, e.Procedure))
			continue
		}
		switch e.Outcome {
		case OutcomeEncoded:
			if !got.Encoded {
				errs = append(errs, fmt.Sprintf("expect[%d]: %s should encode, failed with: %s", i, e.Procedure, got.Message))
			}
		case OutcomeFailed:
			if got.Encoded {
				errs = append(errs, fmt.Sprintf("expect[%d]: %s should fail, but encoded", i, e.Procedure))
				continue
			}
			if e.Class != "" && e.Class != got.Class {
				errs = append(errs, fmt.Sprintf("expect[%d]: %s class = %q, want %q", i, e.Procedure, got.Class, e.Class))
			}
			if e.Code != "" && e.Code != got.Code {
				errs = append(errs, fmt.Sprintf("expect[%d]: %s code = %q, want %q", i, e.Procedure, got.Code, e.Code))
			}
			if e.Location != "" && e.Location != got.Location {
				errs = append(errs, fmt.Sprintf("expect[%d]: %s location = %q, want %q", i, e.Procedure, got.Location, e.Location))
			}
		}
	}
	return errs
}

func expectsValidation(assertions []Assertion, code string) bool {
	for _, a := range assertions {
		if a.Type == AssertValidationCode && a.Code == code {
			return true
		}
	}
	return false
}
