package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xldenis/prusti-dev/internal/encoder"
	"github.com/xldenis/prusti-dev/internal/engine"
	"github.com/xldenis/prusti-dev/internal/mir"
	"github.com/xldenis/prusti-dev/internal/store"
	"github.com/xldenis/prusti-dev/internal/vir"
)

// EncodeOptions holds flags for the encode command.
type EncodeOptions struct {
	*RootOptions
	Procedures  []string
	Workers     int
	Database    string
	Output      string
	Total       bool
	ReachBlocks bool
	NoComments  bool
}

// ProcedureOutcome is one procedure in the encode output.
type ProcedureOutcome struct {
	Def      string `json:"def"`
	Seq      int64  `json:"seq"`
	Encoded  bool   `json:"encoded"`
	Class    string `json:"class,omitempty"`
	Code     string `json:"code,omitempty"`
	Location string `json:"location,omitempty"`
	Message  string `json:"message,omitempty"`
}

// EncodeResult is the JSON payload of the encode command.
type EncodeResult struct {
	RunID      string             `json:"run_id"`
	Crate      string             `json:"crate"`
	Procedures []ProcedureOutcome `json:"procedures"`
	Recursion  []string           `json:"recursion,omitempty"`
	Succeeded  int                `json:"succeeded"`
	Failed     int                `json:"failed"`
	Program    string             `json:"program,omitempty"`
	Output     string             `json:"output,omitempty"`
}

// NewEncodeCommand creates the encode command.
func NewEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EncodeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "encode <crate>",
		Short: "Encode the procedures of a crate into Viper",
		Long: `Encode the procedures of a crate into impure Viper methods.

The crate is a .cue file or a directory holding one CUE package. Every
procedure is encoded unless --proc selects some. The printed program is
written to stdout or to --output; with --db the run, its methods and its
failures are recorded in a SQLite database.

Exit codes:
  0 - Every procedure encoded
  1 - One or more procedures failed to encode
  2 - Command error (crate does not load, unknown procedure, etc.)

Examples:
  prusti-encode encode ./crate.cue
  prusti-encode encode ./crate --proc add --proc inc -o out.vpr
  prusti-encode encode ./crate --db ./runs.db --workers 8`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Procedures, "proc", nil, "procedure to encode (repeatable; default all)")
	cmd.Flags().IntVar(&opts.Workers, "workers", engine.DefaultWorkers, "number of concurrent encoding workers")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database recording the run")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the Viper program to this file")
	cmd.Flags().BoolVar(&opts.Total, "total", false, "fail on unsupported rvalues instead of emitting placeholders")
	cmd.Flags().BoolVar(&opts.ReachBlocks, "reach-blocks", false, "declare and set a reachability flag per block")
	cmd.Flags().BoolVar(&opts.NoComments, "no-comments", false, "omit MIR comments from the encoding")

	return cmd
}

func runEncode(opts *EncodeOptions, cratePath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if opts.Workers < 1 {
		_ = formatter.Error(ErrCodeGeneric, "--workers must be at least 1", nil)
		return NewExitError(ExitCommandError, "--workers must be at least 1")
	}
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	c, err := LoadCrate(cratePath)
	if err != nil {
		return loadFailure(formatter, err)
	}
	logger.Debug("crate loaded", "crate", c.Name, "procedures", len(c.Defs()))

	session := encoder.NewSession(c,
		encoder.WithLogger(logger),
		encoder.WithComments(!opts.NoComments),
		encoder.WithReachBlocks(opts.ReachBlocks),
		encoder.WithTotalRvalues(opts.Total),
	)
	engineOpts := []engine.Option{
		engine.WithWorkers(opts.Workers),
		engine.WithLogger(logger),
		engine.WithRunOptions(map[string]any{
			"comments":     !opts.NoComments,
			"reach_blocks": opts.ReachBlocks,
			"total":        opts.Total,
			"workers":      opts.Workers,
		}),
	}
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			_ = formatter.Error(ErrCodeStore, fmt.Sprintf("failed to open database: %v", err), nil)
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		engineOpts = append(engineOpts, engine.WithStore(st))
	}
	eng := engine.New(c, session, engineOpts...)

	ctx, stop := signalContext(cmd)
	defer stop()

	defs := make([]mir.DefID, len(opts.Procedures))
	for i, p := range opts.Procedures {
		defs[i] = mir.DefID(p)
	}
	report, runErr := eng.Run(ctx, defs)
	if report == nil {
		return runFailure(formatter, runErr)
	}

	result := encodeResult(report)
	program := vir.Print(report.Program)
	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(program), 0644); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("failed to write %s: %v", opts.Output, err), nil)
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
		result.Output = opts.Output
	}

	if formatter.IsJSON() {
		if opts.Output == "" {
			result.Program = program
		}
		if err := outputEncodeJSON(formatter, result, runErr); err != nil {
			return err
		}
	} else {
		if opts.Output == "" {
			fmt.Fprint(formatter.Writer, program)
		}
		status := &OutputFormatter{Format: "text", Writer: formatter.GetErrWriter()}
		outputEncodeText(status, result)
	}

	if runErr != nil {
		return runFailure(nil, runErr)
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d procedure(s) failed to encode", result.Failed, len(result.Procedures)))
	}
	return nil
}

// signalContext returns the command's context, cancelled on SIGINT/SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// runFailure maps an engine error to an exit code. f may be nil when the
// error was already reported.
func runFailure(f *OutputFormatter, err error) error {
	var re *engine.RunError
	if !errors.As(err, &re) {
		if f != nil {
			_ = f.Error(ErrCodeGeneric, err.Error(), nil)
		}
		return WrapExitError(ExitFailure, "encoding failed", err)
	}
	code, exit := ErrCodeGeneric, ExitFailure
	switch re.Code {
	case engine.ErrCodeUnknownProcedure:
		code, exit = ErrCodeUnknownProc, ExitCommandError
	case engine.ErrCodeStore:
		code = ErrCodeStore
	}
	if f != nil {
		_ = f.Error(code, re.Message, nil)
	}
	return WrapExitError(exit, code, err)
}

func encodeResult(report *engine.Report) EncodeResult {
	result := EncodeResult{
		RunID:      report.RunID,
		Crate:      report.Crate,
		Procedures: make([]ProcedureOutcome, 0, len(report.Results)),
		Succeeded:  report.Succeeded(),
		Failed:     report.Failed(),
	}
	for _, g := range report.Recursion {
		result.Recursion = append(result.Recursion, g.Message)
	}
	for _, res := range report.Results {
		result.Procedures = append(result.Procedures, procedureOutcome(res))
	}
	return result
}

func procedureOutcome(res engine.Result) ProcedureOutcome {
	out := ProcedureOutcome{Def: string(res.Def), Seq: res.Seq, Encoded: res.Err == nil}
	if res.Err == nil {
		return out
	}
	out.Message = res.Err.Error()
	var ee *encoder.Error
	if errors.As(res.Err, &ee) {
		out.Class = string(ee.Class)
		out.Code = ee.Code
		out.Message = ee.Message
		if ee.Err != nil {
			out.Message += ": " + ee.Err.Error()
		}
		if ee.Location != nil {
			out.Location = ee.Location.String()
		}
	}
	return out
}

func outputEncodeJSON(f *OutputFormatter, result EncodeResult, runErr error) error {
	switch {
	case runErr != nil:
		return f.Failure(ErrCodeGeneric, runErr.Error(), result)
	case result.Failed > 0:
		return f.Failure(ErrCodeEncodeFailed, fmt.Sprintf("%d procedure(s) failed to encode", result.Failed), result)
	}
	return f.Success(result)
}

func outputEncodeText(f *OutputFormatter, result EncodeResult) {
	for _, p := range result.Procedures {
		if p.Encoded {
			f.Pass("%s", p.Def)
			continue
		}
		f.Fail("%s", p.Def)
		writeFailure(f.Writer, p.Code, p.Location, p.Message)
	}
	fmt.Fprintf(f.Writer, "\n%d encoded, %d failed (run %s)\n", result.Succeeded, result.Failed, result.RunID)
}

func writeFailure(w io.Writer, code, location, message string) {
	switch {
	case code != "" && location != "":
		fmt.Fprintf(w, "  %s at %s: %s\n", code, location, message)
	case code != "":
		fmt.Fprintf(w, "  %s: %s\n", code, message)
	default:
		fmt.Fprintf(w, "  %s\n", message)
	}
}
