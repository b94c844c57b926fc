package taskenc

import (
	"errors"
	"fmt"
	"strings"
)

// ErrProtocol marks misuse of the cache protocol, such as emitting a
// reference twice.
var ErrProtocol = errors.New("task protocol violation")

// TaskID names a task across all caches.
type TaskID struct {
	Encoder string
	Key     string
}

// String renders "encoder(key)".
func (t TaskID) String() string { return t.Encoder + "(" + t.Key + ")" }

// CycleError reports a dependency that cannot be satisfied because the
// requested task is (transitively) waiting on the requester.
type CycleError struct {
	// Chain lists the tasks in dependency order, ending with the task whose
	// output was requested.
	Chain []TaskID

	// CrossPath is set when the cycle spans more than one goroutine.
	CrossPath bool
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	parts := make([]string, len(e.Chain))
	for i, id := range e.Chain {
		parts[i] = id.String()
	}
	msg := "cyclic dependency without an available reference: " + strings.Join(parts, " -> ")
	if e.CrossPath {
		msg += " (across workers)"
	}
	return msg
}

// IsCycleError reports whether err is or wraps a *CycleError.
func IsCycleError(err error) bool {
	var ce *CycleError
	return errors.As(err, &ce)
}

func protocolError(id TaskID, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrProtocol, id, fmt.Sprintf(format, args...))
}
