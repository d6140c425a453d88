package share

import (
	"fmt"
	"sort"
)

// Item pairs a binding name with the handle carrying its value.
type Item struct {
	Name   string
	Handle *Handle
}

// Namespace is an ordered set of items built once per run request and
// released item by item afterward.
type Namespace struct {
	items []Item
}

// Build captures every value in the mapping. It fails atomically: the
// first non-shareable value releases everything captured so far and
// aborts the whole build. Items are ordered by name so a build is
// deterministic regardless of map iteration order.
func Build(values map[string]interface{}) (*Namespace, error) {
	if len(values) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	ns := &Namespace{items: make([]Item, 0, len(values))}
	for _, name := range names {
		h, err := Capture(values[name])
		if err != nil {
			ns.Release()
			return nil, fmt.Errorf("shared value %q: %w", name, err)
		}
		ns.items = append(ns.items, Item{Name: name, Handle: h})
	}
	return ns, nil
}

// Apply materializes every item into the target namespace through the
// provided binder, overwriting same-named bindings.
func (ns *Namespace) Apply(bind func(name string, value interface{}) error) error {
	for _, item := range ns.items {
		if err := bind(item.Name, item.Handle.Materialize()); err != nil {
			return fmt.Errorf("applying shared value %q: %w", item.Name, err)
		}
	}
	return nil
}

// Release frees every handle. Runs after the request completes whatever
// the outcome; tolerates owners that have already vanished.
func (ns *Namespace) Release() {
	for _, item := range ns.items {
		item.Handle.Release()
	}
}

// Len reports the number of items.
func (ns *Namespace) Len() int {
	if ns == nil {
		return 0
	}
	return len(ns.items)
}

// Items returns the ordered items.
func (ns *Namespace) Items() []Item {
	return ns.items
}
