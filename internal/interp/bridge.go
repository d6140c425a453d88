package interp

import (
	"go.uber.org/zap"

	"github.com/interphost/backend/internal/engine"
)

// SharedError is a plain text snapshot of an in-context failure. Either
// field may be absent; it carries no live references into the context
// that failed.
type SharedError struct {
	Kind    string
	Message string

	hasKind    bool
	hasMessage bool
}

// bindFailure captures a failure as a SharedError while the failing
// context is still active. If either formatting step itself fails the
// snapshot degrades to whatever was captured, and the formatting failure
// goes to the diagnostic log rather than replacing the original error.
// Returns nil only when no text at all could be captured.
func (h *Host) bindFailure(err error) *SharedError {
	se := &SharedError{}

	func() {
		defer func() {
			if r := recover(); r != nil {
				h.log.Warn("unable to format failure kind", zap.Any("cause", r))
			}
		}()
		se.Kind, se.hasKind = engine.FailureKind(err)
	}()

	func() {
		defer func() {
			if r := recover(); r != nil {
				h.log.Warn("unable to format failure message", zap.Any("cause", r))
			}
		}()
		se.Message, se.hasMessage = engine.FailureMessage(err)
	}()

	if !se.hasKind && !se.hasMessage {
		return nil
	}
	return se
}

// apply re-raises the snapshot in the caller's context as a
// RunFailedError. It always signals failure: kind and message when both
// are present, whichever exists otherwise, an empty payload when
// neither does.
func (se *SharedError) apply() error {
	e := &RunFailedError{}
	if se.hasKind {
		e.Kind = se.Kind
	}
	if se.hasMessage {
		e.Message = se.Message
	}
	return e
}
