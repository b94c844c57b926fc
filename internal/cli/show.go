package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xldenis/prusti-dev/internal/store"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database string
	RunID    string
	Limit    int
}

// RunSummary is one run in the show output.
type RunSummary struct {
	ID             string         `json:"id"`
	Crate          string         `json:"crate"`
	EncoderVersion string         `json:"encoder_version"`
	IVLVersion     string         `json:"ivl_version"`
	Options        map[string]any `json:"options"`
	Procedures     int            `json:"procedures"`
	Succeeded      int            `json:"succeeded"`
	Failed         int            `json:"failed"`
	Finished       bool           `json:"finished"`
}

// StoredMethod is one encoded method in the show output.
type StoredMethod struct {
	ID       string `json:"id"`
	Def      string `json:"def"`
	Seq      int64  `json:"seq"`
	BodyHash string `json:"body_hash"`
	Text     string `json:"text"`
}

// StoredError is one encoding failure in the show output.
type StoredError struct {
	Def      string `json:"def"`
	Seq      int64  `json:"seq"`
	Class    string `json:"class"`
	Code     string `json:"code,omitempty"`
	Location string `json:"location,omitempty"`
	Message  string `json:"message"`
}

// RunDetail is the show output for a single run.
type RunDetail struct {
	Run     RunSummary     `json:"run"`
	Methods []StoredMethod `json:"methods"`
	Errors  []StoredError  `json:"errors"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show recorded encoding runs",
		Long: `Show encoding runs recorded with encode --db.

Without --run, lists the most recent runs. With --run, prints the run's
encoded methods in completion order followed by its failures.

Examples:
  prusti-encode show --db ./runs.db
  prusti-encode show --db ./runs.db --run 0190d5c4-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run to show")
	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "number of runs to list")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runShow(opts *ShowOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	// Opening would create an empty database.
	if _, err := os.Stat(opts.Database); os.IsNotExist(err) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.Database), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", opts.Database))
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, fmt.Sprintf("failed to open database: %v", err), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if opts.RunID == "" {
		runs, err := st.LatestRuns(ctx, opts.Limit)
		if err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		summaries := make([]RunSummary, len(runs))
		for i, r := range runs {
			summaries[i] = runSummary(r)
		}
		if formatter.IsJSON() {
			return formatter.Success(summaries)
		}
		outputRunList(formatter, summaries)
		return nil
	}

	detail, err := loadRunDetail(cmd, st, opts.RunID)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("run not found: %s", opts.RunID), nil)
			return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", opts.RunID))
		}
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}
	if formatter.IsJSON() {
		return formatter.Success(detail)
	}
	outputRunDetail(formatter, detail)
	return nil
}

func loadRunDetail(cmd *cobra.Command, st *store.Store, runID string) (RunDetail, error) {
	ctx := cmd.Context()
	run, err := st.ReadRun(ctx, runID)
	if err != nil {
		return RunDetail{}, err
	}
	methods, err := st.ReadMethods(ctx, runID)
	if err != nil {
		return RunDetail{}, err
	}
	failures, err := st.ReadErrors(ctx, runID)
	if err != nil {
		return RunDetail{}, err
	}

	detail := RunDetail{
		Run:     runSummary(run),
		Methods: make([]StoredMethod, len(methods)),
		Errors:  make([]StoredError, len(failures)),
	}
	for i, m := range methods {
		detail.Methods[i] = StoredMethod{ID: m.ID, Def: m.Def, Seq: m.Seq, BodyHash: m.BodyHash, Text: m.Text}
	}
	for i, e := range failures {
		detail.Errors[i] = StoredError{Def: e.Def, Seq: e.Seq, Class: e.Class, Code: e.Code, Location: e.Location, Message: e.Message}
	}
	return detail, nil
}

func runSummary(r store.Run) RunSummary {
	return RunSummary{
		ID:             r.ID,
		Crate:          r.Crate,
		EncoderVersion: r.EncoderVersion,
		IVLVersion:     r.IVLVersion,
		Options:        r.Options,
		Procedures:     r.Procedures,
		Succeeded:      r.Succeeded,
		Failed:         r.Failed,
		Finished:       r.Finished,
	}
}

func outputRunList(f *OutputFormatter, runs []RunSummary) {
	if len(runs) == 0 {
		fmt.Fprintln(f.Writer, "No runs recorded.")
		return
	}
	for _, r := range runs {
		line := fmt.Sprintf("%s  %s  %d/%d encoded", r.ID, r.Crate, r.Succeeded, r.Procedures)
		switch {
		case !r.Finished:
			f.Fail("%s (unfinished)", line)
		case r.Failed > 0:
			f.Fail("%s", line)
		default:
			f.Pass("%s", line)
		}
	}
}

func outputRunDetail(f *OutputFormatter, d RunDetail) {
	r := d.Run
	fmt.Fprintf(f.Writer, "run %s\n", r.ID)
	fmt.Fprintf(f.Writer, "  crate:    %s\n", r.Crate)
	fmt.Fprintf(f.Writer, "  encoder:  %s (ivl %s)\n", r.EncoderVersion, r.IVLVersion)
	fmt.Fprintf(f.Writer, "  results:  %d encoded, %d failed of %d\n", r.Succeeded, r.Failed, r.Procedures)
	if !r.Finished {
		fmt.Fprintln(f.Writer, "  status:   unfinished")
	}

	for _, m := range d.Methods {
		fmt.Fprintf(f.Writer, "\n// %s (seq %d, body %s)\n", m.Def, m.Seq, shortHash(m.BodyHash))
		fmt.Fprint(f.Writer, m.Text)
	}
	if len(d.Errors) > 0 {
		fmt.Fprintln(f.Writer)
	}
	for _, e := range d.Errors {
		f.Fail("%s (seq %d)", e.Def, e.Seq)
		writeFailure(f.Writer, e.Code, e.Location, e.Message)
	}
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
