package engine

import "sync/atomic"

// Thread tracks one thread of control inside a context. The engine bumps
// the call depth around every top-level run; a non-zero depth means the
// thread has a live frame on its stack.
type Thread struct {
	depth atomic.Int32
}

// CallDepth reports the number of live top-level frames.
func (t *Thread) CallDepth() int {
	return int(t.depth.Load())
}

func (t *Thread) enter() {
	t.depth.Add(1)
}

func (t *Thread) exit() {
	t.depth.Add(-1)
}
