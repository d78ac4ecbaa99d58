package plugins

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/plugboard/plugboard/pkg/config"
	"github.com/plugboard/plugboard/pkg/observability"
)

// Loader orchestrates plugin activation. For one load request it runs the
// full pipeline: claim, resolve manifest, recursively load dependencies,
// activate schema, instantiate runtime, register routes.
//
// Dependencies are loaded strictly before the requesting plugin's own
// schema/instantiate/route stages, sequentially and in manifest order. The
// claim set is guarded by a mutex so concurrent top-level loads cannot both
// proceed for the same plugin id.
type Loader struct {
	cfg        config.Config
	manifests  ManifestProvider
	schemas    SchemaDiscoverer
	activators ActivatorResolver
	factories  *FactoryRegistry
	runtimes   *RuntimeRegistry
	routes     RouteRegistry
	log        *logrus.Logger
	metrics    *observability.Metrics

	mu      sync.Mutex
	claimed map[string]struct{}
}

// LoaderOptions bundles the Loader's collaborators.
type LoaderOptions struct {
	Config     config.Config
	Manifests  ManifestProvider
	Schemas    SchemaDiscoverer
	Activators ActivatorResolver
	Factories  *FactoryRegistry
	Runtimes   *RuntimeRegistry
	Routes     RouteRegistry
	Logger     *logrus.Logger
	Metrics    *observability.Metrics // optional
}

// NewLoader creates a plugin loader. The configuration is captured as a
// deep copy, so later mutation of the caller's config does not affect an
// in-flight orchestrator.
func NewLoader(opts LoaderOptions) *Loader {
	log := opts.Logger
	if log == nil {
		log = logrus.New()
	}

	return &Loader{
		cfg:        opts.Config.Clone(),
		manifests:  opts.Manifests,
		schemas:    opts.Schemas,
		activators: opts.Activators,
		factories:  opts.Factories,
		runtimes:   opts.Runtimes,
		routes:     opts.Routes,
		log:        log,
		metrics:    opts.Metrics,
		claimed:    make(map[string]struct{}),
	}
}

// Load loads the referenced plugin and, transitively, every dependency not
// already claimed. It returns once the referenced plugin has completed
// every pipeline stage, or the first error from any plugin in the chain.
//
// A second Load for an already-claimed id is a no-op, even if the earlier
// attempt failed: claims are not rolled back. This trades automatic retry
// for guaranteed termination on cyclic graphs. Use Unclaim for out-of-band
// retry.
func (l *Loader) Load(ctx context.Context, ref PluginRef) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !l.claim(ref.ID) {
		l.log.Debugf("Plugin %s already claimed, skipping", ref.ID)
		return nil
	}

	start := time.Now()

	manifest, err := l.manifests.Resolve(ctx, ref.ID)
	if err != nil {
		return l.fail(ref.ID, StageManifest, err)
	}

	// Dependencies first, in manifest order. A dependency failure carries
	// its own attribution, so it propagates unmodified.
	for _, dep := range manifest.Dependencies {
		if l.isClaimed(dep.ID) {
			continue
		}
		if err := l.Load(ctx, dep); err != nil {
			return err
		}
	}

	if err := l.activateSchema(ctx, manifest); err != nil {
		return err
	}

	runtime, err := l.instantiate(manifest)
	if err != nil {
		return l.fail(manifest.ID, StageInstantiate, err)
	}

	if err := l.registerRoutes(runtime, manifest); err != nil {
		return l.fail(manifest.ID, StageRoutes, err)
	}

	if l.metrics != nil {
		l.metrics.PluginLoadsTotal.WithLabelValues("success").Inc()
		l.metrics.PluginLoadDuration.Observe(time.Since(start).Seconds())
		l.metrics.PluginsLoaded.Set(float64(l.runtimes.Count()))
	}
	l.log.Infof("Loaded plugin: %s v%s (%d dependencies)",
		manifest.ID, manifest.Version, len(manifest.Dependencies))

	return nil
}

// Claimed reports whether the id has begun loading in this process run.
// Presence means "do not re-enter", not "finished".
func (l *Loader) Claimed(id string) bool {
	return l.isClaimed(id)
}

// Unclaim removes the id from the claim set so a failed load can be retried
// without a process restart. Callers own the consequences: unclaiming a
// successfully loaded plugin lets a later Load re-run its stages.
func (l *Loader) Unclaim(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.claimed, id)
}

// claim inserts the id into the claim set. It returns false when the id was
// already present. Insert-if-absent is atomic under the loader mutex.
func (l *Loader) claim(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.claimed[id]; ok {
		return false
	}
	l.claimed[id] = struct{}{}
	return true
}

func (l *Loader) isClaimed(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.claimed[id]
	return ok
}

// activateSchema discovers the plugin's schema descriptors and applies each
// through the activator registered for its type. Every activation result is
// joined into the stage result here: one failed descriptor fails the load
// before instantiation begins.
func (l *Loader) activateSchema(ctx context.Context, manifest *Manifest) error {
	descriptors, err := l.schemas.Discover(ctx, manifest.ID)
	if err != nil {
		return l.fail(manifest.ID, StageSchema, err)
	}

	for _, desc := range descriptors {
		activator, err := l.activators.ForType(desc.Type)
		if err != nil {
			return l.fail(manifest.ID, StageSchema, err)
		}
		if err := activator.Create(ctx, manifest, desc); err != nil {
			if l.metrics != nil {
				l.metrics.SchemaActivationsTotal.WithLabelValues(desc.Type, "failure").Inc()
			}
			return l.fail(manifest.ID, StageSchema,
				fmt.Errorf("descriptor %s: %w", desc.Name, err))
		}
		if l.metrics != nil {
			l.metrics.SchemaActivationsTotal.WithLabelValues(desc.Type, "success").Inc()
		}
	}

	return nil
}

// instantiate constructs the runtime via the plugin's factory and registers
// it. The loader's private config copy is handed to the factory.
func (l *Loader) instantiate(manifest *Manifest) (Runtime, error) {
	factory := l.factories.For(manifest.ID)
	if factory == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoFactory, manifest.ID)
	}

	runtime, err := factory(&l.cfg, manifest)
	if err != nil {
		return nil, err
	}
	if runtime == nil {
		return nil, fmt.Errorf("factory for %s returned nil runtime", manifest.ID)
	}

	if err := l.runtimes.Register(manifest.ID, runtime); err != nil {
		return nil, err
	}

	return runtime, nil
}

// registerRoutes obtains the plugin's route namespace and lets the runtime
// mount handlers into it. The namespace is created even for runtimes that
// expose no routes, so the route registry reflects every loaded plugin.
func (l *Loader) registerRoutes(runtime Runtime, manifest *Manifest) error {
	namespace := l.routes.Namespace(manifest)

	provider, ok := runtime.(RouteProvider)
	if !ok {
		return nil
	}

	return provider.RegisterRoutes(namespace)
}

func (l *Loader) fail(id string, stage Stage, err error) error {
	if l.metrics != nil {
		l.metrics.PluginLoadsTotal.WithLabelValues("failure").Inc()
	}
	loadErr := newLoadError(id, stage, err)
	l.log.WithError(err).Errorf("Plugin %s failed at %s stage", id, stage)
	return loadErr
}
