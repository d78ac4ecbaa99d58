package schema

import (
	"fmt"
	"sort"
	"sync"

	"github.com/plugboard/plugboard/pkg/plugins"
)

// Registry maps descriptor type tags to activators. It implements
// plugins.ActivatorResolver.
type Registry struct {
	mu         sync.RWMutex
	activators map[string]plugins.Activator
}

// NewRegistry creates an empty activator registry.
func NewRegistry() *Registry {
	return &Registry{
		activators: make(map[string]plugins.Activator),
	}
}

// Register binds an activator to a type tag, replacing any previous binding.
func (r *Registry) Register(t string, activator plugins.Activator) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.activators[t] = activator
}

// ForType returns the activator for the type tag.
func (r *Registry) ForType(t string) (plugins.Activator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	activator, ok := r.activators[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", plugins.ErrUnknownSchemaType, t)
	}

	return activator, nil
}

// Types returns the registered type tags in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.activators))
	for t := range r.activators {
		types = append(types, t)
	}
	sort.Strings(types)

	return types
}
