// Package pebbleengine is a github.com/cockroachdb/pebble-backed
// engine.Engine, used by the catalog CLI and by integration tests that care
// about real persistence.
//
// A single pebble.DB backs every ident. Idents are realized as key-range
// prefixes within that one keyspace (analogous to one physical WiredTiger
// table split by KVPrefix in original_source/kv_storage_engine.cpp); the
// per-collection numeric prefix from a grouped record store is a second
// prefix level inside its ident's range. A small reserved key range tracks
// which idents currently exist, since pebble itself has no notion of
// "table" the way a relational or WiredTiger backend would.
package pebbleengine
