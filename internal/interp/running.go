package interp

import "fmt"

// IsRunning reports whether the identified context has a live call
// stack. It fails with ErrInvalidContext for an unknown ID and with
// ErrAmbiguousState when the context has more than one thread, since no
// single call stack answers the question then.
func (h *Host) IsRunning(id ID) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rec, err := h.lookupLocked(id)
	if err != nil {
		return false, err
	}
	return h.runningLocked(rec)
}

// runningLocked inspects the context's single thread. If the context
// ever holds more than one thread, which thread is "the" one becomes
// load-bearing and the check refuses to guess.
func (h *Host) runningLocked(rec *record) (bool, error) {
	threads := rec.ctx.Threads()
	if len(threads) > 1 {
		return false, fmt.Errorf("context %d: %w", rec.id, ErrAmbiguousState)
	}
	return threads[0].CallDepth() > 0, nil
}

// ensureNotRunningLocked guards destroy and run against a context that
// is mid-execution.
func (h *Host) ensureNotRunningLocked(rec *record) error {
	running, err := h.runningLocked(rec)
	if err != nil {
		return err
	}
	if running {
		return fmt.Errorf("context %d: %w", rec.id, ErrAlreadyRunning)
	}
	return nil
}
