package interp

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/interphost/backend/internal/engine"
	"github.com/interphost/backend/internal/interp/share"
)

// RunString executes source text as a top-level program inside the
// identified context, binding the shared values into its namespace
// first. The caller is suspended for the full duration. An uncaught
// in-context failure comes back as a RunFailedError carrying its
// (kind, message) snapshot; side effects are confined to the target's
// namespace.
func (h *Host) RunString(id ID, script string, shared map[string]interface{}) error {
	h.mu.Lock()
	rec, err := h.lookupLocked(id)
	if err != nil {
		h.mu.Unlock()
		return err
	}
	if strings.IndexByte(script, 0) >= 0 {
		h.mu.Unlock()
		return fmt.Errorf("run in context %d: %w", id, ErrInvalidSource)
	}
	if err := h.ensureNotRunningLocked(rec); err != nil {
		h.mu.Unlock()
		return err
	}
	h.mu.Unlock()

	// Build the shared namespace before any switch. A single
	// non-shareable value aborts the whole call here.
	ns, err := share.Build(shared)
	if err != nil {
		return fmt.Errorf("run in context %d: %w", id, err)
	}
	if ns != nil {
		// Handles are freed whatever the outcome; release tolerates an
		// owner that is already gone.
		defer ns.Release()
	}

	guard := h.switchTo(id)
	defer guard.restore()

	sharedErr, runErr := h.runScript(rec.ctx, script, ns)

	// Hand the active designation back before raising anything in the
	// caller's context.
	guard.restore()

	if sharedErr != nil {
		h.log.Debug("run failed",
			zap.Int64("context_id", int64(id)),
			zap.String("kind", sharedErr.Kind),
		)
		return sharedErr.apply()
	}
	if runErr != nil {
		// The failure itself could not be captured as text.
		return fmt.Errorf("run in context %d: %w", id, ErrAllocation)
	}
	return nil
}

// runScript applies the shared namespace and executes the program while
// the target context is active. A failure is bound to a SharedError
// before the switch back, inside the context where it occurred.
func (h *Host) runScript(ctx *engine.Context, script string, ns *share.Namespace) (*SharedError, error) {
	if ns != nil {
		if err := ns.Apply(ctx.Set); err != nil {
			return h.bindFailure(err), err
		}
	}
	if err := ctx.Run(script); err != nil {
		return h.bindFailure(err), err
	}
	return nil, nil
}
