package engine

// Settings holds process-wide engine configuration. Isolated contexts
// snapshot these at creation; legacy contexts alias the host's live copy,
// so later changes are visible to them.
type Settings struct {
	// StackLimit caps the VM call stack depth. Zero means the engine default.
	StackLimit int

	// Globals are bindings installed into every new context's namespace.
	Globals map[string]interface{}
}

// DefaultSettings returns the settings used by a fresh host.
func DefaultSettings() *Settings {
	return &Settings{
		StackLimit: 1024,
		Globals:    map[string]interface{}{},
	}
}

// Clone returns an independent copy for an isolated context.
func (s *Settings) Clone() *Settings {
	globals := make(map[string]interface{}, len(s.Globals))
	for k, v := range s.Globals {
		globals[k] = v
	}
	return &Settings{
		StackLimit: s.StackLimit,
		Globals:    globals,
	}
}
