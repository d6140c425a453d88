package interp

import (
	"errors"

	"github.com/interphost/backend/internal/interp/share"
)

// Failure taxonomy for host operations. Callers match with errors.Is.
var (
	// ErrConstruction reports a context creation that was rolled back.
	ErrConstruction = errors.New("context creation failed")

	// ErrInvalidContext reports an ID that names no live context.
	ErrInvalidContext = errors.New("context not found")

	// ErrSelfDestruction reports an attempt to destroy the active context.
	ErrSelfDestruction = errors.New("cannot destroy the current context")

	// ErrAlreadyRunning reports a destroy or run against a context with a
	// live call stack.
	ErrAlreadyRunning = errors.New("context already running")

	// ErrAmbiguousState reports a context with more than one thread, where
	// no single call stack answers the running-state question.
	ErrAmbiguousState = errors.New("context has more than one thread")

	// ErrInvalidSource reports source text with an embedded null byte.
	ErrInvalidSource = errors.New("source text cannot contain null bytes")

	// ErrNotShareable reports a shared value outside the shareable set.
	// The whole run request aborts before anything executes.
	ErrNotShareable = share.ErrNotShareable

	// ErrRunFailed matches every RunFailedError.
	ErrRunFailed = errors.New("uncaught failure in context")

	// ErrAllocation reports that a failure occurred but no text snapshot
	// of it could be captured.
	ErrAllocation = errors.New("unable to capture failure details")
)

// RunFailedError carries the text snapshot of an uncaught in-context
// failure into the caller's context. It holds no live references to the
// failed context.
type RunFailedError struct {
	Kind    string
	Message string
}

func (e *RunFailedError) Error() string {
	switch {
	case e.Kind != "" && e.Message != "":
		return e.Kind + ": " + e.Message
	case e.Kind != "":
		return e.Kind
	case e.Message != "":
		return e.Message
	default:
		return "script raised an uncaught failure"
	}
}

// Is makes errors.Is(err, ErrRunFailed) match.
func (e *RunFailedError) Is(target error) bool {
	return target == ErrRunFailed
}
