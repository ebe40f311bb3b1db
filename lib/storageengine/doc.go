// Package storageengine is the public surface of the catalog coordination
// layer: bootstrap, reconcile, database registry access, drop-database, and
// backup/timestamp/durability pass-through to the backend.
//
// A StorageEngine owns exactly the per-database Handles (via lib/registry),
// the persistent-catalog reader (via lib/catalog), and the catalog
// record-store handle. It does not own the backend engine.Engine itself -
// that is caller-managed and deliberately never closed by CleanShutdown.
package storageengine
