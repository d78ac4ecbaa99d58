// Package routes owns the shared routing surface plugins mount into.
//
// Each loaded plugin gets one namespace: a gorilla/mux subrouter under
// /plugins/<id>/. Namespaces are created once per plugin id and reused,
// and the registry never unmounts one; runtimes live for the process.
package routes
