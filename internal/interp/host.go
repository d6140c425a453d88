package interp

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/interphost/backend/internal/engine"
	"github.com/interphost/backend/internal/logging"
)

// ID identifies a context for its lifetime. IDs are small, monotonic and
// never reused while the process lives.
type ID int64

// MainID is the fixed ID of the process's first context.
const MainID ID = 0

// record is one slot in the context arena.
type record struct {
	id        ID
	ctx       *engine.Context
	isolated  bool
	live      bool
	refs      int // outstanding external ID references
	createdAt time.Time
}

// Options configures a host.
type Options struct {
	// Settings is the process-wide engine configuration shared by legacy
	// contexts. Nil means engine defaults.
	Settings *engine.Settings

	// MaxContexts caps live contexts. Zero means unlimited.
	MaxContexts int

	// Logger receives lifecycle events and the bridge's diagnostic
	// stream. Nil means a default production logger.
	Logger *logging.Logger
}

// Host owns the context arena and the active-context designation.
type Host struct {
	log         *logging.Logger
	settings    *engine.Settings
	maxContexts int

	mu        sync.Mutex
	contexts  map[ID]*record
	order     []ID // creation order, oldest first
	nextID    ID
	currentID ID
	created   uint64
	destroyed uint64
}

// Stats reports host counters.
type Stats struct {
	Live      int    `json:"live"`
	Created   uint64 `json:"created"`
	Destroyed uint64 `json:"destroyed"`
	Current   ID     `json:"current"`
}

// NewHost creates a host with its main context already live under
// MainID. The main context is legacy: it shares the process-wide
// settings.
func NewHost(opts Options) (*Host, error) {
	settings := opts.Settings
	if settings == nil {
		settings = engine.DefaultSettings()
	}
	log := opts.Logger
	if log == nil {
		log = logging.NewDefault()
	}

	h := &Host{
		log:         log,
		settings:    settings,
		maxContexts: opts.MaxContexts,
		contexts:    make(map[ID]*record),
	}

	mainCtx, err := engine.New(engine.Options{Settings: settings})
	if err != nil {
		return nil, fmt.Errorf("%w: main context: %v", ErrConstruction, err)
	}
	h.contexts[MainID] = &record{
		id:        MainID,
		ctx:       mainCtx,
		live:      true,
		refs:      1,
		createdAt: time.Now(),
	}
	h.order = append(h.order, MainID)
	h.nextID = MainID + 1
	h.currentID = MainID
	h.created++

	return h, nil
}

// Create allocates a new context and returns its ID. isolated=true gives
// fully separate state; isolated=false shares the host's process-wide
// settings. Partially constructed state is rolled back before an error
// is reported.
func (h *Host) Create(isolated bool) (ID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.maxContexts > 0 && len(h.contexts) >= h.maxContexts {
		return 0, fmt.Errorf("%w: context limit %d reached", ErrConstruction, h.maxContexts)
	}

	settings := h.settings
	if isolated {
		settings = h.settings.Clone()
	}

	ctx, err := engine.New(engine.Options{Settings: settings})
	if err != nil {
		// engine.New discards its partial VM before returning.
		return 0, fmt.Errorf("%w: %v", ErrConstruction, err)
	}

	id := h.nextID
	h.nextID++
	h.contexts[id] = &record{
		id:        id,
		ctx:       ctx,
		isolated:  isolated,
		live:      true,
		refs:      1,
		createdAt: time.Now(),
	}
	h.order = append(h.order, id)
	h.created++

	h.log.Debug("context created",
		zap.Int64("context_id", int64(id)),
		zap.Bool("isolated", isolated),
	)
	return id, nil
}

// Destroy halts a context's threads and frees its state. It fails if the
// ID is unknown, if the target has a live call stack, or if the target
// is the active context.
func (h *Host) Destroy(id ID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	rec, err := h.lookupLocked(id)
	if err != nil {
		return err
	}
	// The running check comes first: a context driving execution is
	// necessarily the active one, and "already running" is the answer
	// an outside caller can act on.
	if err := h.ensureNotRunningLocked(rec); err != nil {
		return err
	}
	if id == h.currentID {
		return fmt.Errorf("context %d: %w", id, ErrSelfDestruction)
	}

	rec.ctx.Close()
	rec.live = false
	delete(h.contexts, id)
	for i, oid := range h.order {
		if oid == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	h.destroyed++

	h.log.Debug("context destroyed", zap.Int64("context_id", int64(id)))
	return nil
}

// ListAll returns the IDs of every live context, most recently created
// first.
func (h *Host) ListAll() []ID {
	h.mu.Lock()
	defer h.mu.Unlock()

	ids := make([]ID, 0, len(h.order))
	for i := len(h.order) - 1; i >= 0; i-- {
		ids = append(ids, h.order[i])
	}
	return ids
}

// GetCurrent returns the ID of the active context.
func (h *Host) GetCurrent() ID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentID
}

// GetMain returns the fixed ID of the process's first context.
func (h *Host) GetMain() ID {
	return MainID
}

// Stats returns current counters.
func (h *Host) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		Live:      len(h.contexts),
		Created:   h.created,
		Destroyed: h.destroyed,
		Current:   h.currentID,
	}
}

// Close tears down every context, main last. Handle cleanup during
// teardown relies on the idempotent-release contract.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := len(h.order) - 1; i >= 0; i-- {
		rec := h.contexts[h.order[i]]
		if rec == nil {
			continue
		}
		rec.ctx.Close()
		rec.live = false
		h.destroyed++
	}
	h.contexts = make(map[ID]*record)
	h.order = nil
	return nil
}

// lookupLocked resolves an ID to its live record. Lookup after
// destruction fails; the ID slot itself stays burned forever.
func (h *Host) lookupLocked(id ID) (*record, error) {
	rec, ok := h.contexts[id]
	if !ok || !rec.live {
		return nil, fmt.Errorf("context %d: %w", id, ErrInvalidContext)
	}
	return rec, nil
}
