// Package cmd implements the command-line interface for catalogkv, a
// catalog coordination layer over a pluggable key-value backend.
//
// The package is organized into subpackages:
//
//   - catalog: bootstrap, reconcile, drop-database, repair and backup
//     operations against a pebble-backed engine.
//   - serve: bootstraps the catalog, reports it and shuts down, a stand-in
//     for a real service (no RPC transport or request loop is wired).
//   - util: shared configuration/flag-binding helpers (internal use)
//
// See catalogkv -help for a list of all commands.
package cmd
