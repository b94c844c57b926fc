package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/xldenis/prusti-dev/internal/canon"
	"github.com/xldenis/prusti-dev/internal/compiler"
	"github.com/xldenis/prusti-dev/internal/crate"
	"github.com/xldenis/prusti-dev/internal/encoder"
	"github.com/xldenis/prusti-dev/internal/mir"
	"github.com/xldenis/prusti-dev/internal/store"
	"github.com/xldenis/prusti-dev/internal/taskenc"
	"github.com/xldenis/prusti-dev/internal/vir"
)

// DefaultWorkers is the number of procedures encoded concurrently unless
// WithWorkers says otherwise.
const DefaultWorkers = 4

// Engine encodes the procedures of one crate on a pool of workers that
// share a single encoder session, and therefore a single dependency cache:
// a callee's reference is computed once no matter how many callers need it.
//
// Thread-safety model:
//   - Run(): one run at a time per engine
//   - workers: each owns its dependency path; results are stamped by the
//     shared Clock
//   - store writes: only from the Run goroutine, after the workers finish
type Engine struct {
	crate   *crate.Crate
	session *encoder.Session
	store   *store.Store
	clock   Sequencer
	runIDs  RunIDGenerator
	workers int
	log     *slog.Logger

	// options are recorded with each run.
	options map[string]any
}

// Sequencer stamps each finished procedure with the seq ordering its result.
// *Clock is the production implementation.
type Sequencer interface {
	Stamp(def mir.DefID) int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the worker count. Values below 1 mean 1.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = max(n, 1)
	}
}

// WithStore persists every run to s.
func WithStore(s *store.Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithRunIDs sets the run ID generator. The default is UUIDv7Generator.
func WithRunIDs(g RunIDGenerator) Option {
	return func(e *Engine) { e.runIDs = g }
}

// WithClock sets the sequencer stamping results. The default is a fresh
// Clock per engine.
func WithClock(c Sequencer) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithRunOptions records the encoder options that the session was created
// with, so that stored runs can be told apart.
func WithRunOptions(opts map[string]any) Option {
	return func(e *Engine) { e.options = opts }
}

// New creates an engine encoding c through session. The session must have
// been created over c.
func New(c *crate.Crate, session *encoder.Session, opts ...Option) *Engine {
	e := &Engine{
		crate:   c,
		session: session,
		clock:   NewClock(),
		runIDs:  UUIDv7Generator{},
		workers: DefaultWorkers,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the outcome of encoding one procedure.
type Result struct {
	// Seq is the logical completion order within the run.
	Seq int64
	Def mir.DefID

	// Method and Text are set on success.
	Method   *vir.Method
	Text     string
	BodyHash string

	// Err is set on failure; it is an *encoder.Error for encoding failures.
	Err error
}

// Report is the outcome of a run.
type Report struct {
	RunID string
	Crate string

	// Results are ordered by Seq.
	Results []Result

	// Program holds the support declarations and every method encoded so far
	// by the session, in declaration order.
	Program *vir.Program

	// Recursion lists the recursive procedure groups of the crate.
	Recursion []compiler.RecursionGroup
}

// Succeeded returns the number of procedures encoded successfully.
func (r *Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of procedures that failed to encode.
func (r *Report) Failed() int { return len(r.Results) - r.Succeeded() }

// Result returns the result for def.
func (r *Report) Result(def mir.DefID) (Result, bool) {
	for _, res := range r.Results {
		if res.Def == def {
			return res, true
		}
	}
	return Result{}, false
}

// Run encodes defs, or every procedure of the crate when defs is empty.
//
// A failing procedure does not stop the run; its error is recorded in its
// Result. Cancelling ctx stops dispatch: procedures already being encoded
// finish, the rest are skipped, and Run returns the partial report together
// with a CANCELLED error.
func (e *Engine) Run(ctx context.Context, defs []mir.DefID) (*Report, error) {
	if len(defs) == 0 {
		defs = e.crate.Defs()
	}
	for _, def := range defs {
		if _, ok := e.crate.Procedure(def); !ok {
			return nil, &RunError{
				Code:    ErrCodeUnknownProcedure,
				Message: fmt.Sprintf("procedure %s is not in crate %s", def, e.crate.Name),
			}
		}
	}

	report := &Report{
		RunID:     e.runIDs.Generate(),
		Crate:     e.crate.Name,
		Recursion: compiler.AnalyzeRecursion(e.crate),
	}
	log := e.log.With("run", report.RunID)
	log.Info("run started", "crate", e.crate.Name, "procedures", len(defs), "workers", e.workers)
	for _, g := range report.Recursion {
		log.Info("recursive procedures", "group", g.Message)
	}

	if e.store != nil {
		err := e.store.WriteRun(ctx, store.Run{
			ID:             report.RunID,
			Crate:          e.crate.Name,
			EncoderVersion: canon.EncoderVersion,
			IVLVersion:     canon.IVLVersion,
			Options:        e.options,
			Procedures:     len(defs),
		})
		if err != nil {
			return nil, storeError(report.RunID, err)
		}
	}

	q := newWorkQueue()
	q.Enqueue(defs...)
	q.Close()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for i := 0; i < min(e.workers, len(defs)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			deps := e.session.NewDeps()
			for {
				def, ok := q.Next(ctx)
				if !ok {
					return
				}
				res := e.encode(deps, def)
				log.Debug("procedure finished", "def", def, "seq", res.Seq, "ok", res.Err == nil)
				mu.Lock()
				report.Results = append(report.Results, res)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	sort.Slice(report.Results, func(i, j int) bool {
		return report.Results[i].Seq < report.Results[j].Seq
	})
	report.Program = e.session.Program()

	var runErr error
	if skipped := q.Len(); ctx.Err() != nil && skipped > 0 {
		runErr = &RunError{
			Code:    ErrCodeCancelled,
			Message: fmt.Sprintf("%d of %d procedures not dispatched", skipped, len(defs)),
			RunID:   report.RunID,
			Err:     ctx.Err(),
		}
	}

	if e.store != nil {
		// The run is recorded even when cancelled.
		if err := e.persist(context.WithoutCancel(ctx), report); err != nil {
			return report, errors.Join(runErr, storeError(report.RunID, err))
		}
	}

	log.Info("run finished", "succeeded", report.Succeeded(), "failed", report.Failed())
	return report, runErr
}

// encode runs one procedure on the worker's dependency path.
func (e *Engine) encode(deps *taskenc.Deps, def mir.DefID) Result {
	m, err := e.session.EncodeWith(deps, def)
	res := Result{Seq: e.clock.Stamp(def), Def: def, Method: m, Err: err}
	if err != nil {
		return res
	}
	res.Text = vir.PrintMethod(m)
	if proc, _ := e.crate.Procedure(def); proc.Body != nil {
		if res.BodyHash, err = proc.Body.Hash(); err != nil {
			e.log.Warn("hash body", "def", def, "error", err)
		}
	}
	return res
}

// persist writes the results of a run in seq order and marks it finished.
func (e *Engine) persist(ctx context.Context, report *Report) error {
	for _, res := range report.Results {
		if res.Err == nil {
			_, err := e.store.WriteMethod(ctx, report.RunID, store.Method{
				Def:      string(res.Def),
				BodyHash: res.BodyHash,
				Text:     res.Text,
				Seq:      res.Seq,
			})
			if err != nil {
				return err
			}
			continue
		}
		if _, err := e.store.WriteEncodeError(ctx, encodeError(report.RunID, res)); err != nil {
			return err
		}
	}
	return e.store.FinishRun(ctx, report.RunID, report.Succeeded(), report.Failed())
}

// encodeError flattens a failed result into its stored form.
func encodeError(runID string, res Result) store.EncodeError {
	out := store.EncodeError{
		RunID:   runID,
		Seq:     res.Seq,
		Def:     string(res.Def),
		Class:   "internal",
		Message: res.Err.Error(),
	}
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
