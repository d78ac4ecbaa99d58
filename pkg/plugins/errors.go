package plugins

import (
	"errors"
	"fmt"
)

// Stage identifies the pipeline stage a load failure occurred in.
type Stage string

const (
	StageManifest    Stage = "manifest"
	StageSchema      Stage = "schema"
	StageInstantiate Stage = "instantiate"
	StageRoutes      Stage = "routes"
)

var (
	// ErrManifestNotFound is returned when a manifest cannot be located.
	ErrManifestNotFound = errors.New("manifest not found")

	// ErrUnknownSchemaType is returned when no activator is registered for
	// a descriptor's type tag.
	ErrUnknownSchemaType = errors.New("unknown schema type")

	// ErrNoFactory is returned when no factory is registered for a plugin
	// id and no default factory is configured.
	ErrNoFactory = errors.New("no runtime factory registered")

	// ErrRuntimeNotFound is returned when a runtime is looked up by an id
	// that has not been instantiated.
	ErrRuntimeNotFound = errors.New("runtime not found")
)

// LoadError attributes a load failure to a plugin id and a pipeline stage.
// A failure anywhere in the dependency chain surfaces to the top-level
// caller as the deepest LoadError, unmodified.
type LoadError struct {
	PluginID string
	Stage    Stage
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("plugin %s: %s stage failed: %v", e.PluginID, e.Stage, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *LoadError) Unwrap() error {
	return e.Err
}

func newLoadError(id string, stage Stage, err error) *LoadError {
	return &LoadError{PluginID: id, Stage: stage, Err: err}
}
