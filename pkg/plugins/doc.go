// Package plugins implements plugin activation orchestration.
//
// # Overview
//
// This package loads a plugin and its transitive dependency graph, makes
// sure each plugin's persistent schema exists, instantiates each plugin's
// runtime object, and mounts each plugin's HTTP routes, all before the
// plugin is reported as loaded.
//
// # Load Pipeline
//
// Loader.Load runs six stages per plugin, depth-first over dependencies:
//
//	claim -> resolve manifest -> load dependencies -> activate schema
//	      -> instantiate runtime -> register routes
//
// The claim is inserted before any recursive work, which is what makes
// cyclic dependency graphs terminate: a second encounter of an id finds it
// already claimed and skips re-entry. A claim is never rolled back, so a
// plugin whose load failed stays claimed for the rest of the process run;
// callers that want to retry must call Unclaim first or restart.
//
// # Collaborators
//
// ManifestProvider: resolves a plugin id to a validated manifest
// SchemaDiscoverer + ActivatorResolver: discover and apply schema descriptors
// FactoryRegistry: maps a plugin id to a typed runtime constructor
// RuntimeRegistry: process-wide table of instantiated runtimes
// RouteRegistry: hands out per-plugin mux route namespaces
//
// # Usage Example
//
// Wire a loader and load a plugin:
//
//	loader := plugins.NewLoader(plugins.LoaderOptions{
//		Config:     cfg,
//		Manifests:  provider,
//		Schemas:    discoverer,
//		Activators: activators,
//		Factories:  factories,
//		Runtimes:   runtimes,
//		Routes:     routeRegistry,
//	})
//
//	if err := loader.Load(ctx, plugins.PluginRef{ID: "notes"}); err != nil {
//		var loadErr *plugins.LoadError
//		if errors.As(err, &loadErr) {
//			log.Fatalf("plugin %s failed at %s stage: %v",
//				loadErr.PluginID, loadErr.Stage, loadErr.Err)
//		}
//	}
//
// # Related Packages
//
//   - pkg/schema: schema descriptor discovery and activators
//   - pkg/routes: per-plugin route namespaces
//   - pkg/api: control-plane HTTP endpoints over the loader
package plugins
