package encoder

import (
	"errors"
	"fmt"

	"github.com/xldenis/prusti-dev/internal/builtin"
	"github.com/xldenis/prusti-dev/internal/mir"
	"github.com/xldenis/prusti-dev/internal/taskenc"
	"github.com/xldenis/prusti-dev/internal/typeenc"
)

// Class is one of the three encoding error classes.
type Class string

const (
	// ClassMalformed marks upstream input that violates the encoder's
	// invariants. Always fatal.
	ClassMalformed Class = "malformed-input"

	// ClassUnsupported marks a source construct with no translation.
	ClassUnsupported Class = "unsupported-construct"

	// ClassCycle marks a cyclic dependency with no reference available.
	ClassCycle Class = "cyclic-dependency"
)

// Error codes. E1xx are malformed input, E2xx unsupported constructs and
// E3xx dependency failures.
const (
	CodeMalformedSchedule = "E101" // missing schedule entry or illegal repack
	CodeMalformedType     = "E102" // place or operand type cannot be resolved
	CodeMalformedOperator = "E103" // ill-typed operator application
	CodeMalformedCall     = "E104" // callee arity mismatch
	CodeUnknownProcedure  = "E105" // procedure not present in the crate
	CodeProtocol          = "E106" // dependency cache misuse

	CodeUnsupportedStatement  = "E201"
	CodeUnsupportedProjection = "E202"
	CodeUnsupportedUnwind     = "E203"
	CodeUnsupportedConstant   = "E204"
	CodeUnsupportedRvalue     = "E205"
	CodeUnsupportedCallee     = "E206"
	CodeUnsupportedType       = "E207"
	CodeUnsupportedOperator   = "E208"

	CodeCycle = "E301"
)

// Error is an encoding failure attributed to a procedure and, when known, a
// location inside it.
type Error struct {
	Class   Class
	Code    string
	Message string

	// Def is the procedure being encoded.
	Def mir.DefID

	// Location is set for errors raised while encoding a statement or
	// terminator.
	Location *mir.Location

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Code, e.Class, e.Message)
	switch {
	case e.Def != "" && e.Location != nil:
		msg += fmt.Sprintf(" (in %s at %s)", e.Def, e.Location)
	case e.Def != "":
		msg += fmt.Sprintf(" (in %s)", e.Def)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

func hasClass(err error, c Class) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Class == c
	}
	return false
}

// IsMalformed reports whether err is a malformed-input error.
func IsMalformed(err error) bool { return hasClass(err, ClassMalformed) }

// IsUnsupported reports whether err is an unsupported-construct error.
func IsUnsupported(err error) bool { return hasClass(err, ClassUnsupported) }

// IsCycle reports whether err is, or was caused by, a cyclic dependency.
func IsCycle(err error) bool {
	return hasClass(err, ClassCycle) || taskenc.IsCycleError(err)
}

func malformed(code, format string, args ...any) *Error {
	return &Error{Class: ClassMalformed, Code: code, Message: fmt.Sprintf(format, args...)}
}

func unsupported(code, format string, args ...any) *Error {
	return &Error{Class: ClassUnsupported, Code: code, Message: fmt.Sprintf(format, args...)}
}

// classify turns an error from a collaborator into an *Error. Errors that
// already are *Error pass through unchanged.
func classify(err error, context string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	out := &Error{Message: context, Err: err}
	switch {
	case taskenc.IsCycleError(err):
		out.Class, out.Code = ClassCycle, CodeCycle
	case errors.Is(err, taskenc.ErrProtocol):
		out.Class, out.Code = ClassMalformed, CodeProtocol
	case errors.Is(err, typeenc.ErrUnsupportedType):
		out.Class, out.Code = ClassUnsupported, CodeUnsupportedType
	case errors.Is(err, builtin.ErrUnsupportedOperator):
		out.Class, out.Code = ClassUnsupported, CodeUnsupportedOperator
	case errors.Is(err, builtin.ErrMalformedOperator):
		out.Class, out.Code = ClassMalformed, CodeMalformedOperator
	default:
		out.Class, out.Code = ClassMalformed, CodeMalformedType
	}
	return out
}

// at attributes err to def and loc unless it already carries a procedure.
func at(err error, def mir.DefID, loc *mir.Location) error {
	var e *Error
	if !errors.As(err, &e) {
		return err
	}
	if e.Def == "" {
		e.Def = def
		e.Location = loc
	}
	return err
}
