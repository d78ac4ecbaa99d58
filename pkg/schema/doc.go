// Package schema discovers plugin schema descriptors and applies them
// through typed activators.
//
// # Descriptors
//
// A plugin declares its persistent schema as files under
// <plugin root>/<id>/schema/:
//
//	*.sql          executed verbatim against the configured database
//	*.yaml, *.yml  typed descriptors; the top-level "type" field selects
//	               the activator (e.g. "redis")
//
// Discovery order is not significant and zero descriptors is valid.
//
// # Activators
//
// Registry maps a descriptor type tag to an Activator. Activators must be
// re-runnable: the loader retries nothing and rolls back nothing, so every
// statement and key write here is written in create-if-absent form
// (CREATE TABLE IF NOT EXISTS, SetNX, HSetNX).
package schema
