package mirtext

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/fatih/color"
)

// Error is a syntax or name-resolution error in one textual form.
type Error struct {
	// Input is the text that failed to parse.
	Input string

	// Column is the 1-based column of the offending token, or 0 if unknown.
	Column int

	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("%q:%d: %s", e.Input, e.Column, e.Message)
	}
	return fmt.Sprintf("%q: %s", e.Input, e.Message)
}

// Caret renders the input with a caret under the offending column.
func (e *Error) Caret() string {
	if e.Column <= 0 {
		return e.Input
	}
	return e.Input + "\n" + strings.Repeat(" ", e.Column-1) + "^"
}

// Report writes a caret-style description of err to w. Errors that are not
// *Error are written on one line.
func Report(w io.Writer, err error) {
	red := color.New(color.FgRed)
	var pe *Error
	if !errors.As(err, &pe) || pe.Column <= 0 {
		red.Fprintf(w, "syntax error: %s\n", err)
		return
	}
	red.Fprintf(w, "syntax error at column %d:\n", pe.Column)
	fmt.Fprintln(w, pe.Input)
	color.New(color.FgHiRed).Fprintln(w, strings.Repeat(" ", pe.Column-1)+"^")
	fmt.Fprintf(w, "-> %s\n", pe.Message)
}

func syntaxError(src string, err error) error {
	var pe participle.Error
	if errors.As(err, &pe) {
		return &Error{Input: src, Column: pe.Position().Column, Message: pe.Message()}
	}
	return &Error{Input: src, Message: err.Error()}
}

func errorf(src string, pos lexer.Position, format string, args ...any) error {
	return &Error{Input: src, Column: pos.Column, Message: fmt.Sprintf(format, args...)}
}
