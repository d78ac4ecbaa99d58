package plugins

import (
	"sync"

	"github.com/plugboard/plugboard/pkg/config"
)

// Factory constructs a plugin runtime from the orchestrator's configuration
// snapshot and the plugin's resolved manifest.
type Factory func(cfg *config.Config, manifest *Manifest) (Runtime, error)

// FactoryRegistry maps plugin ids to runtime factories. Plugins with no
// registered factory fall back to the default factory, if one is set.
type FactoryRegistry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	fallback  Factory
}

// NewFactoryRegistry creates a factory registry with the given default
// factory. A nil fallback means plugins without a registered factory fail
// to instantiate.
func NewFactoryRegistry(fallback Factory) *FactoryRegistry {
	return &FactoryRegistry{
		factories: make(map[string]Factory),
		fallback:  fallback,
	}
}

// Register binds a factory to a plugin id, replacing any previous binding.
func (f *FactoryRegistry) Register(id string, factory Factory) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.factories[id] = factory
}

// For returns the factory for the id, or the fallback. The result is nil
// when neither exists.
func (f *FactoryRegistry) For(id string) Factory {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if factory, ok := f.factories[id]; ok {
		return factory
	}
	return f.fallback
}

// Has reports whether a dedicated factory is bound to the id.
func (f *FactoryRegistry) Has(id string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	_, ok := f.factories[id]
	return ok
}
