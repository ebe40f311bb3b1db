package storageengine

import "github.com/ValentinKolb/catalogkv/lib/engine"

// BeginBackup rejects re-entry itself, the same way _inBackupMode gates
// KVStorageEngine::beginBackup - the core owns this flag rather than
// trusting whatever Engine happens to be injected. Only on backend success
// is the flag actually set.
func (se *StorageEngine) BeginBackup(ctx engine.OperationContext) error {
	se.backupMu.Lock()
	defer se.backupMu.Unlock()

	if se.inBackup {
		return engine.ErrAlreadyInBackup
	}
	if err := se.eng.BeginBackup(ctx); err != nil {
		return err
	}
	se.inBackup = true
	return nil
}

// EndBackup clears backup mode. Calling it while not in backup is a
// programmer error - fatal, the same way KVStorageEngine::endBackup
// invariants on _inBackupMode.
func (se *StorageEngine) EndBackup(ctx engine.OperationContext) {
	se.backupMu.Lock()
	defer se.backupMu.Unlock()

	if !se.inBackup {
		se.log.Panicf("EndBackup called while not in backup mode")
	}
	se.eng.EndBackup(ctx)
	se.inBackup = false
}

// SetStableTimestamp passes through to the backend.
func (se *StorageEngine) SetStableTimestamp(ts engine.Timestamp) {
	se.eng.SetStableTimestamp(ts)
}

// SetOldestTimestamp passes through to the backend.
func (se *StorageEngine) SetOldestTimestamp(ts engine.Timestamp) {
	se.eng.SetOldestTimestamp(ts)
}

// SetInitialDataTimestamp passes through to the backend and caches the
// value locally to gate the phase-1 drop invariant.
func (se *StorageEngine) SetInitialDataTimestamp(ts engine.Timestamp) {
	se.initialDataTS = ts
	se.eng.SetInitialDataTimestamp(ts)
}

func (se *StorageEngine) RecoverToStableTimestamp() error              { return se.eng.RecoverToStableTimestamp() }
func (se *StorageEngine) SupportsRecoverToStableTimestamp() bool       { return se.eng.SupportsRecoverToStableTimestamp() }
func (se *StorageEngine) SupportsReadConcernSnapshot() bool            { return se.eng.SupportsReadConcernSnapshot() }
func (se *StorageEngine) IsDurable() bool                              { return se.eng.IsDurable() }
func (se *StorageEngine) IsEphemeral() bool                            { return se.eng.IsEphemeral() }
func (se *StorageEngine) FlushAllFiles(ctx engine.OperationContext, sync bool) (int, error) {
	return se.eng.FlushAllFiles(ctx, sync)
}
func (se *StorageEngine) GetSnapshotManager() engine.SnapshotManager { return se.eng.GetSnapshotManager() }
func (se *StorageEngine) SetJournalListener(l engine.JournalListener) {
	se.eng.SetJournalListener(l)
}
func (se *StorageEngine) NewRecoveryUnit() engine.RecoveryUnit { return se.eng.NewRecoveryUnit() }
func (se *StorageEngine) ReplicationBatchIsComplete()          { se.eng.ReplicationBatchIsComplete() }

// RepairRecordStore repairs ns's backend ident and, on success, asks its
// owning Handle to reopen the collection.
func (se *StorageEngine) RepairRecordStore(ctx engine.OperationContext, ns engine.Namespace) error {
	id, ok := se.cat.CollectionIdent(ns)
	if !ok {
		return engine.ErrIdentNotFound
	}
	if err := se.eng.RepairIdent(ctx, id); err != nil {
		return err
	}
	h := se.reg.GetOrCreate(ns.DB())
	return h.ReinitCollectionAfterRepair(ctx, ns)
}

// CleanShutdown destroys every registered Handle, clears the registry, and
// calls the backend's clean-shutdown. It does not close or otherwise touch
// the backend engine.Engine value itself - ownership of that belongs to
// the caller.
func (se *StorageEngine) CleanShutdown() {
	se.reg = nil
	se.cat = nil
	se.catalogStore = nil
	se.eng.CleanShutdown()
}
