package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xldenis/prusti-dev/internal/compiler"
	"github.com/xldenis/prusti-dev/internal/crate"
	"github.com/xldenis/prusti-dev/internal/mirtext"
)

// LoadError is a crate that could not be loaded or compiled.
type LoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Error code constants shared by all commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeScanError    = "E002" // Directory scan error
	ErrCodeNoFiles      = "E003" // No CUE files found
	ErrCodeCompile      = "E004" // Crate does not compile
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeSyntax       = "E006" // Statement, terminator or repack text does not parse
	ErrCodeWriteFailed  = "E007" // File write error
	ErrCodeStore        = "E008" // Database error
	ErrCodeEncodeFailed = "E009" // One or more procedures failed to encode
	ErrCodeUnknownProc  = "E010" // --proc names a procedure the crate lacks
)

// LoadCrate loads the crate at path (a .cue file or a directory).
func LoadCrate(path string) (*crate.Crate, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("crate not found: %s", path), Err: err}
	}
	if info.IsDir() {
		files, err := compiler.FindCUEFiles(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err), Err: err}
		}
		if len(files) == 0 {
			return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}
		}
	}

	c, err := compiler.Load(path)
	if err != nil {
		code := ErrCodeCompile
		var pe *mirtext.Error
		if errors.As(err, &pe) {
			code = ErrCodeSyntax
		}
		return nil, &LoadError{Code: code, Message: err.Error(), Err: err}
	}
	return c, nil
}

// reportLoadError renders err for a text-mode user. Syntax errors in
// embedded MIR text get a caret under the offending column.
func reportLoadError(w io.Writer, err error) {
	var le *LoadError
	if errors.As(err, &le) && le.Code == ErrCodeSyntax {
		var ce *compiler.CompileError
		if errors.As(err, &ce) {
			fmt.Fprintf(w, "in %s\n", strings.TrimSpace(ce.Field))
		}
		mirtext.Report(w, err)
	}
}

// loadFailure converts a load error into the command's output and exit code.
func loadFailure(f *OutputFormatter, err error) error {
	code, msg := ErrCodeGeneric, err.Error()
	var le *LoadError
	if errors.As(err, &le) {
		code, msg = le.Code, le.Message
	}
	_ = f.Error(code, msg, nil)
	if !f.IsJSON() {
		reportLoadError(f.GetErrWriter(), err)
	}
	return WrapExitError(ExitCommandError, code, err)
}
