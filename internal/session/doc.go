// Package session persists the open documents of a workbench between
// runs.
//
// Records are CBOR-encoded with core deterministic encoding and kept in a
// bbolt database, one record per workspace name. A record lists the paths
// of open documents in tab order and remembers which tab was active.
// Unsaved new-document forms are not persisted.
package session
