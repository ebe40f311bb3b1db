package pebbleengine

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/ValentinKolb/catalogkv/lib/engine"
)

type engineImpl struct {
	db *pebble.DB

	mu       sync.Mutex
	inBackup bool

	stableTS      engine.Timestamp
	initialDataTS engine.Timestamp
	oldestTS      engine.Timestamp

	journalListener engine.JournalListener
}

// Open opens (creating if absent) a pebble database at dir and wraps it as
// an engine.Engine.
func Open(dir string) (engine.Engine, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &engineImpl{db: db}, nil
}

// Close closes the underlying pebble.DB. Not part of engine.Engine - the
// storage engine never closes the backend itself, only the owner of the
// Engine value (e.g. the CLI) calls this, at process exit.
func Close(e engine.Engine) error {
	return e.(*engineImpl).db.Close()
}

type identRecord struct {
	Options engine.CollectionOptions `json:"options"`
}

func (e *engineImpl) HasIdent(_ engine.OperationContext, id engine.Ident) bool {
	v, closer, err := e.db.Get(identRegistryKey(id))
	if err != nil {
		return false
	}
	_ = v
	closer.Close()
	return true
}

func (e *engineImpl) RepairIdent(_ engine.OperationContext, id engine.Ident) error {
	if !e.HasIdent(engine.OperationContext{}, id) {
		return engine.ErrIdentNotFound
	}
	// pebble itself repairs its LSM on open; there is nothing additional to
	// do per-ident beyond confirming the registry entry still exists.
	return nil
}

func (e *engineImpl) CreateGroupedRecordStore(_ engine.OperationContext, id engine.Ident, opts engine.CollectionOptions, _ engine.Prefix) error {
	if opts.Capped && opts.CappedSize <= 0 && opts.CappedDocs <= 0 {
		return fmt.Errorf("%w: capped collection requires a positive size or document limit", engine.ErrBadValue)
	}
	if e.HasIdent(engine.OperationContext{}, id) {
		return engine.ErrIdentExists
	}
	buf, err := json.Marshal(identRecord{Options: opts})
	if err != nil {
		return err
	}
	return e.db.Set(identRegistryKey(id), buf, pebble.Sync)
}

func (e *engineImpl) GetGroupedRecordStore(_ engine.OperationContext, id engine.Ident, _ engine.CollectionOptions, prefix engine.Prefix) (engine.RecordStore, error) {
	if !e.HasIdent(engine.OperationContext{}, id) {
		return nil, engine.ErrIdentNotFound
	}
	return &recordStoreImpl{db: e.db, ident: id, prefix: prefix}, nil
}

func (e *engineImpl) GetAllIdents(_ engine.OperationContext) []engine.Ident {
	lower := identRegistryPrefix()
	upper := prefixUpperBound(lower)
	iter := e.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	defer iter.Close()

	var out []engine.Ident
	for iter.First(); iter.Valid(); iter.Next() {
		out = append(out, engine.Ident(iter.Key()[1:]))
	}
	return out
}

func (e *engineImpl) DropIdent(_ engine.OperationContext, id engine.Ident) error {
	if !e.HasIdent(engine.OperationContext{}, id) {
		return engine.ErrIdentNotFound
	}
	lower := identDataPrefix(id)
	upper := prefixUpperBound(lower)
	if err := e.db.DeleteRange(lower, upper, pebble.Sync); err != nil {
		return err
	}
	return e.db.Delete(identRegistryKey(id), pebble.Sync)
}

func (e *engineImpl) NewRecoveryUnit() engine.RecoveryUnit {
	return &recoveryUnitImpl{}
}

func (e *engineImpl) FlushAllFiles(_ engine.OperationContext, sync bool) (int, error) {
	if sync {
		if err := e.db.Flush(); err != nil {
			return 0, err
		}
	}
	return len(e.GetAllIdents(engine.OperationContext{})), nil
}

func (e *engineImpl) BeginBackup(_ engine.OperationContext) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inBackup {
		return engine.ErrAlreadyInBackup
	}
	e.inBackup = true
	return nil
}

func (e *engineImpl) EndBackup(_ engine.OperationContext) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inBackup = false
}

func (e *engineImpl) IsDurable() bool  { return true }
func (e *engineImpl) IsEphemeral() bool { return false }

func (e *engineImpl) GetSnapshotManager() engine.SnapshotManager { return nil }

func (e *engineImpl) SetJournalListener(l engine.JournalListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.journalListener = l
}

func (e *engineImpl) SetStableTimestamp(ts engine.Timestamp) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stableTS = ts
}

func (e *engineImpl) SetInitialDataTimestamp(ts engine.Timestamp) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.initialDataTS = ts
}

func (e *engineImpl) SetOldestTimestamp(ts engine.Timestamp) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.oldestTS = ts
}

func (e *engineImpl) SupportsRecoverToStableTimestamp() bool { return false }
func (e *engineImpl) RecoverToStableTimestamp() error        { return engine.ErrUnsupported }
func (e *engineImpl) SupportsReadConcernSnapshot() bool      { return true }
func (e *engineImpl) ReplicationBatchIsComplete()            {}

func (e *engineImpl) SupportsDocLocking() bool    { return true }
func (e *engineImpl) SupportsDBLocking() bool     { return false }
func (e *engineImpl) SupportsDirectoryPerDB() bool { return false }

func (e *engineImpl) CleanShutdown() {}
