// Package catalog implements the persistent catalog: a typed reader/writer
// over the well-known record store at engine.CatalogIdent.
//
// It answers three questions the rest of the core needs answered without
// ever touching the backend engine directly: what collections exist, what
// ident and metadata back a given namespace, and which idents are
// catalog-owned versus user data. Entries are encoded with encoding/json.
//
// A Catalog is not safe to mutate concurrently with Init; once Init has
// returned, Put/Remove/lookups may be called from multiple goroutines.
package catalog
