// Package memengine is an in-memory reference implementation of
// engine.Engine and engine.RecoveryUnit (Handles come from refhandle).
//
// It exists purely to make the storageengine/catalog/registry packages
// runnable and testable without a real embedded storage engine - the same
// role maple.NewMapleDB plays for dKV's db.KVDB interface. The ident set is
// a mutex-guarded map; each ident's records live in one concurrent map
// (github.com/puzpuzpuz/xsync/v3), and a grouped record store's prefix is
// encoded into the front of each record key. Record writes
// apply immediately; what is transactional is the recovery unit's
// RegisterChange bookkeeping, which nests the way a real recovery unit's
// write-unit-of-work scopes do - an inner commit is provisional until the
// outermost scope resolves, and an abort at any depth dooms the whole unit
// to roll back.
//
// memengine is not durable, not crash-safe, and has no on-disk format -
// that is intentional, see the module's non-goals.
package memengine
