package plugins

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/plugboard/plugboard/pkg/config"
	"github.com/plugboard/plugboard/pkg/httputil"
)

// BasicRuntime is a simple manifest-backed runtime implementation. This is
// used for plugins that ship no native Go code: it still exercises the full
// pipeline and serves the plugin's metadata from its route namespace.
type BasicRuntime struct {
	manifest   *Manifest
	instanceID string
	loadedAt   time.Time
}

// NewBasicRuntime creates a new basic runtime for the manifest.
func NewBasicRuntime(manifest *Manifest) *BasicRuntime {
	return &BasicRuntime{
		manifest:   manifest,
		instanceID: uuid.NewString(),
		loadedAt:   time.Now().UTC(),
	}
}

// DefaultFactory is the fallback runtime factory: every plugin without a
// dedicated factory gets a BasicRuntime.
func DefaultFactory(cfg *config.Config, manifest *Manifest) (Runtime, error) {
	return NewBasicRuntime(manifest), nil
}

// Manifest returns the plugin manifest.
func (p *BasicRuntime) Manifest() *Manifest {
	return p.manifest
}

// InstanceID returns the unique id of this runtime instance.
func (p *BasicRuntime) InstanceID() string {
	return p.instanceID
}

// RegisterRoutes mounts the runtime's metadata endpoints into its namespace.
func (p *BasicRuntime) RegisterRoutes(r *mux.Router) error {
	r.HandleFunc("/manifest", p.getManifest).Methods("GET")
	r.HandleFunc("/health", p.getHealth).Methods("GET")
	return nil
}

func (p *BasicRuntime) getManifest(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, p.manifest)
}

func (p *BasicRuntime) getHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, map[string]interface{}{
		"status":      "healthy",
		"instance_id": p.instanceID,
		"loaded_at":   p.loadedAt,
	})
}
