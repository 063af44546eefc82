package tables

import (
	"sort"
	"sync"
)

// Registry holds edge finders by strategy name.
type Registry struct {
	mu      sync.RWMutex
	finders map[Strategy]EdgeFinder
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		finders: make(map[Strategy]EdgeFinder),
	}
}

// Register adds or replaces the finder for its strategy.
func (r *Registry) Register(f EdgeFinder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finders[f.Name()] = f
}

// Get returns the finder for a strategy, or nil.
func (r *Registry) Get(name Strategy) EdgeFinder {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.finders[name]
}

// List returns the registered strategy names, sorted.
func (r *Registry) List() []Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]Strategy, 0, len(r.finders))
	for name := range r.finders {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Global registry
var globalRegistry = NewRegistry()

// RegisterEdgeFinder registers a finder globally.
func RegisterEdgeFinder(f EdgeFinder) {
	globalRegistry.Register(f)
}

// GetEdgeFinder retrieves a finder by strategy name.
func GetEdgeFinder(name Strategy) EdgeFinder {
	return globalRegistry.Get(name)
}

// ListStrategies returns all registered strategy names.
func ListStrategies() []Strategy {
	return globalRegistry.List()
}

func init() {
	RegisterEdgeFinder(LineFinder{})
	RegisterEdgeFinder(LineFinder{Strict: true})
	RegisterEdgeFinder(TextFinder{})
}
