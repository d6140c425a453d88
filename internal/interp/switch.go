package interp

// activeGuard is the scoped acquisition of the active-context
// designation. switchTo hands the designation to the target; restore
// hands it back. Restore is unconditional and idempotent so it can run
// on every exit path, including failure.
type activeGuard struct {
	h     *Host
	saved ID
	done  bool
}

// switchTo records the currently active context and makes target active.
// Execution inside the target is driven by the first-registered of its
// threads.
func (h *Host) switchTo(target ID) *activeGuard {
	h.mu.Lock()
	defer h.mu.Unlock()

	g := &activeGuard{h: h, saved: h.currentID}
	if h.currentID != target {
		h.currentID = target
	}
	return g
}

// restore returns the active designation to the prior context. Safe to
// call more than once; only the first call takes effect.
func (g *activeGuard) restore() {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()

	if g.done {
		return
	}
	g.done = true
	g.h.currentID = g.saved
}
