package storageengine

import "errors"

// ErrBadValue is returned when bootstrap's attempt to create the catalog
// ident fails because of invalid backend configuration (caller
// misconfiguration, not a programmer error). Unlike any other creation
// failure, this one is non-fatal: it is returned to the caller rather than
// panicking.
var ErrBadValue = errors.New("storageengine: invalid backend configuration")

// ErrNamespaceNotFound is returned by DropDatabase when the named database
// has no registry entry.
var ErrNamespaceNotFound = errors.New("storageengine: database not found")

// ErrUnrecoverableRollback is returned by Reconcile when the catalog names a
// collection whose backend ident is missing.
var ErrUnrecoverableRollback = errors.New("storageengine: catalog references missing ident")
