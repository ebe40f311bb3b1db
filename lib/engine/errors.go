package engine

import "errors"

// Errors a conforming Engine implementation is expected to return. These
// are sentinels for the reference implementations (memengine, pebbleengine).
// The storageengine package inspects only two of them: when bootstrap
// creates the catalog ident, ErrIdentExists is treated as already present
// and ErrBadValue is returned to the caller. Other errors are handled by
// call site (fatal, returned, or logged), whatever sentinel they wrap.
var (
	ErrIdentNotFound   = errors.New("engine: ident not found")
	ErrIdentExists     = errors.New("engine: ident already exists")
	ErrAlreadyInBackup = errors.New("engine: already in backup mode")
	ErrUnsupported     = errors.New("engine: operation not supported by this backend")

	// ErrBadValue is returned by CreateGroupedRecordStore when the requested
	// CollectionOptions are self-contradictory (e.g. a capped collection with
	// no positive size or document limit) - caller misconfiguration, distinct
	// from any other creation failure.
	ErrBadValue = errors.New("engine: bad value")
)
