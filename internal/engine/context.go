package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dop251/goja"
)

var ErrClosed = errors.New("engine context is closed")

// Options configures a new context.
type Options struct {
	// Settings to apply. A legacy context should be handed the host's live
	// settings; an isolated one a Clone of them.
	Settings *Settings
}

// Context is one isolated VM: its own global namespace plus the thread
// records the host consults for the running-state check.
type Context struct {
	vm       *goja.Runtime
	settings *Settings

	mu      sync.Mutex
	closed  bool
	threads []*Thread
}

// New creates a context and initializes its namespace. On any setup
// failure the partially built VM is discarded before the error returns.
func New(opts Options) (*Context, error) {
	settings := opts.Settings
	if settings == nil {
		settings = DefaultSettings()
	}

	vm := goja.New()
	if settings.StackLimit > 0 {
		vm.SetMaxCallStackSize(settings.StackLimit)
	}

	c := &Context{
		vm:       vm,
		settings: settings,
		threads:  []*Thread{{}},
	}

	if err := c.setupGlobals(); err != nil {
		c.Close()
		return nil, fmt.Errorf("namespace setup: %w", err)
	}
	return c, nil
}

// setupGlobals strips host-environment names and installs the
// settings-provided bindings.
func (c *Context) setupGlobals() error {
	c.vm.Set("require", goja.Undefined())
	c.vm.Set("process", goja.Undefined())

	for name, value := range c.settings.Globals {
		if err := c.vm.Set(name, value); err != nil {
			return err
		}
	}
	return nil
}

// Run executes source text as a top-level program against the context's
// global namespace. Bindings made by the program persist. The first
// registered thread carries the live frame for the duration.
func (c *Context) Run(src string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	t := c.threads[0]
	c.mu.Unlock()

	t.enter()
	defer t.exit()

	_, err := c.vm.RunString(src)
	return err
}

// Set binds a name in the global namespace, overwriting any existing
// binding.
func (c *Context) Set(name string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return c.vm.Set(name, value)
}

// Threads returns the context's thread records, first-registered first.
func (c *Context) Threads() []*Thread {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Thread, len(c.threads))
	copy(out, c.threads)
	return out
}

// AttachThread registers an additional thread of control with the
// context. The host's running-state check refuses contexts with more
// than one thread; this exists so harnesses can exercise that state.
func (c *Context) AttachThread() *Thread {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &Thread{}
	c.threads = append(c.threads, t)
	return t
}

// Settings exposes the settings this context was built with. Legacy
// contexts alias the host's live settings.
func (c *Context) Settings() *Settings {
	return c.settings
}

// Close halts the context's threads and releases the VM. It is safe to
// call more than once.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.vm.Interrupt(ErrClosed)
	return nil
}
