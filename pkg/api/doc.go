// Package api exposes the control-plane HTTP endpoints for inspecting and
// loading plugins.
//
// Endpoints:
//
//	GET  /api/v1/plugins            list loaded plugins
//	GET  /api/v1/plugins/{id}       get one loaded plugin
//	POST /api/v1/plugins/{id}/load  load a plugin and its dependency graph
//	GET  /api/v1/plugins/{id}/plan  dry-run load plan, nothing is loaded
//
// Load failures surface the failing plugin id and pipeline stage in the
// error response body.
package api
