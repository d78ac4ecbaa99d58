package plugins

import (
	"context"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"
)

// PluginRef is the minimal identity used to request a plugin load.
type PluginRef struct {
	ID string `yaml:"id" json:"id"`
}

// UnmarshalYAML accepts either a bare string or a mapping with an id key,
// so manifests can list dependencies as plain ids.
func (r *PluginRef) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		r.ID = value.Value
		return nil
	}

	var raw struct {
		ID string `yaml:"id"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	r.ID = raw.ID
	return nil
}

// MarshalYAML emits the compact scalar form.
func (r PluginRef) MarshalYAML() (interface{}, error) {
	return r.ID, nil
}

// Manifest describes a plugin's identity and its direct dependencies.
// A manifest is immutable once produced by a ManifestProvider.
type Manifest struct {
	ID           string            `yaml:"id" json:"id"`                 // Unique ID (e.g. "notes")
	Name         string            `yaml:"name" json:"name"`             // Display name
	Version      string            `yaml:"version" json:"version"`       // Semver
	Description  string            `yaml:"description" json:"description,omitempty"`
	Author       string            `yaml:"author" json:"author,omitempty"`
	Dependencies []PluginRef       `yaml:"dependencies" json:"dependencies,omitempty"` // Load order follows declaration order
	Metadata     map[string]string `yaml:"metadata" json:"metadata,omitempty"`
}

// SchemaDescriptor is an opaque schema artifact discovered for a plugin.
// Zero or more descriptors per plugin; ordering across descriptors of the
// same plugin is not significant.
type SchemaDescriptor struct {
	Type    string // activator type tag (e.g. "sql", "redis")
	Name    string // source name, used in error attribution
	Payload []byte
}

// Runtime is an instantiated plugin object. Runtimes are owned by the
// RuntimeRegistry for the life of the process.
type Runtime interface {
	Manifest() *Manifest
}

// RouteProvider is implemented by runtimes that mount HTTP handlers into
// their route namespace. Runtimes without routes simply don't implement it.
type RouteProvider interface {
	RegisterRoutes(r *mux.Router) error
}

// ManifestProvider resolves a plugin id to its validated manifest. It must
// be deterministic within a single process run.
type ManifestProvider interface {
	Resolve(ctx context.Context, id string) (*Manifest, error)
}

// SchemaDiscoverer produces the schema descriptors declared by a plugin.
// Zero descriptors is a valid result.
type SchemaDiscoverer interface {
	Discover(ctx context.Context, id string) ([]SchemaDescriptor, error)
}

// Activator creates or migrates persistent schema from one descriptor.
// Activation must be re-runnable; the loader never rolls back.
type Activator interface {
	Create(ctx context.Context, manifest *Manifest, desc SchemaDescriptor) error
}

// ActivatorResolver maps a descriptor type tag to its Activator.
type ActivatorResolver interface {
	ForType(t string) (Activator, error)
}

// RouteRegistry hands out per-plugin route namespaces. Namespace must be
// idempotent per plugin id.
type RouteRegistry interface {
	Namespace(manifest *Manifest) *mux.Router
}

// ValidationError represents a manifest validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
