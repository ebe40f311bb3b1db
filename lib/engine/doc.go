// Package engine defines the contract between the catalog coordination
// layer and the pluggable key-value backend it sits on top of.
//
// Nothing in this package has internal state or logic of its own: it is
// the interface boundary described as "external collaborators" - the
// backend engine itself, and the per-database handle it hands out. Two
// reference implementations live alongside it for testing and local use:
//
//   - memengine: an in-memory engine, fast and disposable, used by the
//     storageengine test suite.
//   - pebbleengine: a github.com/cockroachdb/pebble-backed engine, used by
//     the CLI and by integration tests that care about real persistence.
//
// Both satisfy Engine and RecoveryUnit without any changes to the core
// catalog/registry/storageengine packages; refhandle supplies a Handle that
// works over either.
package engine
