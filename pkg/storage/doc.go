// Package storage opens the relational database that plugin schemas are
// activated against.
//
// Two drivers are supported: sqlite3 for single-node deployments and
// postgres for shared ones. The schema layout itself is owned by the
// plugins' schema descriptors (see pkg/schema), not by this package.
package storage
