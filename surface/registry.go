// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"sort"
	"sync"
)

// Factory creates a Surface with the given options.
type Factory func(opts Options) (Surface, error)

// Standard registration priorities. Auto selection walks available entries
// from the highest priority down. External is never auto-selected: it needs
// an embedding host to make sense.
const (
	PriorityGPU      = 100
	PriorityExternal = 50
	PrioritySoftware = 10
	PriorityNone     = 1
)

// RegistryEntry is one registered surface backend.
type RegistryEntry struct {
	// Type is the backend this entry constructs.
	Type Type

	// Priority orders Auto selection (higher = preferred).
	Priority int

	// Factory creates surface instances.
	Factory Factory

	// Available reports whether the backend works on this system. It may
	// be probed repeatedly and should be cheap after the first call.
	Available func() bool
}

// globalRegistry backs the package-level functions.
var globalRegistry = &Registry{}

// Registry maps surface types to factories. Backends compiled into the
// binary register themselves from init; external integrations can add
// entries for the native windowed types.
type Registry struct {
	mu      sync.RWMutex
	entries map[Type]*RegistryEntry
}

// NewRegistry returns an empty registry. Most code uses the global one
// through Register and New.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Type]*RegistryEntry)}
}

// Register adds a backend to the global registry. A nil available func
// means always available. Registering an existing type replaces it.
func Register(t Type, priority int, factory Factory, available func() bool) {
	globalRegistry.Register(t, priority, factory, available)
}

// Unregister removes a backend from the global registry.
func Unregister(t Type) {
	globalRegistry.Unregister(t)
}

// Compiled returns the registered types sorted by priority, highest first.
func Compiled() []Type {
	return globalRegistry.Compiled()
}

// Available returns the registered types whose availability probe passes,
// sorted by priority.
func Available() []Type {
	return globalRegistry.Available()
}

// Get returns a copy of the registry entry for t.
func Get(t Type) (*RegistryEntry, bool) {
	return globalRegistry.Get(t)
}

// New constructs a surface of type t from the global registry. Auto picks
// the best available backend.
func New(t Type, opts Options) (Surface, error) {
	return globalRegistry.New(t, opts)
}

// Register adds a backend to this registry.
func (r *Registry) Register(t Type, priority int, factory Factory, available func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries == nil {
		r.entries = make(map[Type]*RegistryEntry)
	}
	if available == nil {
		available = func() bool { return true }
	}
	r.entries[t] = &RegistryEntry{
		Type:      t,
		Priority:  priority,
		Factory:   factory,
		Available: available,
	}
}

// Unregister removes a backend from this registry.
func (r *Registry) Unregister(t Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, t)
}

// Compiled returns the registered types sorted by priority, highest first.
func (r *Registry) Compiled() []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedTypes(false)
}

// Available returns the available registered types sorted by priority.
func (r *Registry) Available() []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedTypes(true)
}

// Get returns a copy of the entry for t.
func (r *Registry) Get(t Type) (*RegistryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[t]
	if !ok {
		return nil, false
	}
	entryCopy := *entry
	return &entryCopy, true
}

// New constructs a surface of type t. Auto tries each available backend in
// priority order, skipping External. Requesting a type with no entry yields
// *UnsupportedError; an entry whose probe fails yields *UnavailableError.
// Both unwrap to ErrNoSurface.
func (r *Registry) New(t Type, opts Options) (Surface, error) {
	if t == Auto {
		return r.newAuto(opts)
	}

	r.mu.RLock()
	entry, ok := r.entries[t]
	r.mu.RUnlock()

	if !ok {
		return nil, &UnsupportedError{Type: t}
	}
	if !entry.Available() {
		return nil, &UnavailableError{Type: t}
	}
	return entry.Factory(opts)
}

func (r *Registry) newAuto(opts Options) (Surface, error) {
	r.mu.RLock()
	candidates := r.sortedTypes(true)
	r.mu.RUnlock()

	var lastErr error
	for _, t := range candidates {
		if t == External {
			continue
		}
		s, err := r.New(t, opts)
		if err == nil {
			return s, nil
		}
		lastErr = err
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrNoSurface
}

// sortedTypes returns types ordered by priority, highest first. Caller
// holds the lock.
func (r *Registry) sortedTypes(onlyAvailable bool) []Type {
	if len(r.entries) == 0 {
		return nil
	}
	type item struct {
		t        Type
		priority int
	}
	items := make([]item, 0, len(r.entries))
	for t, e := range r.entries {
		if onlyAvailable && !e.Available() {
			continue
		}
		items = append(items, item{t: t, priority: e.Priority})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].priority != items[j].priority {
			return items[i].priority > items[j].priority
		}
		return items[i].t < items[j].t
	})
	types := make([]Type, len(items))
	for i, it := range items {
		types[i] = it.t
	}
	return types
}

// ErrNoSurface is the terminal "no window" error: every construction
// failure unwraps to it. A window is never partially constructed.
var ErrNoSurface = errors.New("surface: no surface available")

// UnsupportedError indicates the requested type has no registered factory,
// typically because its support is not compiled in.
type UnsupportedError struct {
	Type Type
}

func (e *UnsupportedError) Error() string {
	return "surface: " + e.Type.String() + " surface support is not compiled in"
}

// Unwrap makes the error match ErrNoSurface.
func (e *UnsupportedError) Unwrap() error { return ErrNoSurface }

// UnavailableError indicates the type is compiled in but its availability
// probe failed on this system.
type UnavailableError struct {
	Type Type
}

func (e *UnavailableError) Error() string {
	return "surface: " + e.Type.String() + " surface is unavailable on this system"
}

// Unwrap makes the error match ErrNoSurface.
func (e *UnavailableError) Unwrap() error { return ErrNoSurface }
