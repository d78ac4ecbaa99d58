package routes

import (
	"sort"
	"sync"

	"github.com/gorilla/mux"

	"github.com/plugboard/plugboard/pkg/plugins"
)

// Registry hands out per-plugin route namespaces as mux subrouters mounted
// under the parent router, one per plugin id. It implements
// plugins.RouteRegistry.
type Registry struct {
	mu     sync.Mutex
	parent *mux.Router
	spaces map[string]*mux.Router
}

// NewRegistry creates a route registry mounting namespaces on parent.
// Callers typically pass router.PathPrefix("/plugins").Subrouter() so
// plugin surfaces live under /plugins/<id>/.
func NewRegistry(parent *mux.Router) *Registry {
	return &Registry{
		parent: parent,
		spaces: make(map[string]*mux.Router),
	}
}

// Namespace returns the route namespace for the manifest's plugin id,
// creating it on first use. Idempotent per id.
func (r *Registry) Namespace(manifest *plugins.Manifest) *mux.Router {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ns, ok := r.spaces[manifest.ID]; ok {
		return ns
	}

	ns := r.parent.PathPrefix("/" + manifest.ID).Subrouter()
	r.spaces[manifest.ID] = ns
	return ns
}

// Has reports whether a namespace exists for the id.
func (r *Registry) Has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.spaces[id]
	return ok
}

// IDs returns the plugin ids with namespaces, in sorted order.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.spaces))
	for id := range r.spaces {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}
