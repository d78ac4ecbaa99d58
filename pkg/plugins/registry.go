package plugins

import (
	"fmt"
	"sort"
	"sync"
)

// RuntimeRegistry is the process-wide table of instantiated plugin runtimes,
// keyed by plugin id. It is an explicit object injected into the Loader
// rather than a package-level map so tests and multi-instance embedders can
// scope it.
type RuntimeRegistry struct {
	mu       sync.RWMutex
	runtimes map[string]Runtime
}

// NewRuntimeRegistry creates an empty runtime registry.
func NewRuntimeRegistry() *RuntimeRegistry {
	return &RuntimeRegistry{
		runtimes: make(map[string]Runtime),
	}
}

// Register stores a runtime under the given id. Last write wins; the
// loader's claim gating means a re-register only happens when a caller
// bypasses the loader deliberately.
func (r *RuntimeRegistry) Register(id string, runtime Runtime) error {
	if runtime == nil {
		return fmt.Errorf("cannot register nil runtime for %s", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.runtimes[id] = runtime
	return nil
}

// Get retrieves a runtime by plugin id.
func (r *RuntimeRegistry) Get(id string) (Runtime, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runtime, exists := r.runtimes[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrRuntimeNotFound, id)
	}

	return runtime, nil
}

// Has checks whether a runtime is registered for the id.
func (r *RuntimeRegistry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.runtimes[id]
	return exists
}

// List returns all registered runtimes.
func (r *RuntimeRegistry) List() []Runtime {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Runtime, 0, len(r.runtimes))
	for _, runtime := range r.runtimes {
		result = append(result, runtime)
	}

	return result
}

// IDs returns the registered plugin ids in sorted order.
func (r *RuntimeRegistry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.runtimes))
	for id := range r.runtimes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

// Count returns the number of registered runtimes.
func (r *RuntimeRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.runtimes)
}

// Clear removes all runtimes from the registry.
func (r *RuntimeRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.runtimes = make(map[string]Runtime)
}
