// Package registry implements the database registry: the process-wide
// mapping from database name to engine.Handle.
//
// The registry holds exactly one mutex, guarding the live map and nothing
// else - Handles encapsulate their own internal synchronization.
// RemoveHandle is the one write path that
// is rollback-aware: it stages its removal as a RecoveryUnit change so a
// caller that aborts the enclosing transaction sees the exact pre-drop
// state restored, same Handle object identity included.
package registry
