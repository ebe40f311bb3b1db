package storageengine

import (
	"fmt"
	"time"

	"github.com/ValentinKolb/catalogkv/lib/engine"
)

// DropDatabase partitions the database's live namespaces into an
// untimestamped and a timestamped phase, attempts both regardless of
// per-phase failures, and on full success removes the database from the
// registry under a rollback-aware change.
func (se *StorageEngine) DropDatabase(ctx engine.OperationContext, dbName string) error {
	start := time.Now()
	defer se.dropDatabaseTimer.UpdateSince(start)

	h, ok := se.reg.Get(dbName)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNamespaceNotFound, dbName)
	}

	toDrop := h.CollectionNamespaces()

	var untimestamped, timestamped []engine.Namespace
	for _, ns := range toDrop {
		if ns.IsDropPending() {
			timestamped = append(timestamped, ns)
		} else {
			untimestamped = append(untimestamped, ns)
		}
	}

	var firstErr error

	if err := se.dropUntimestamped(ctx, h, untimestamped); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := se.dropTimestamped(ctx, h, dbName, timestamped); err != nil && firstErr == nil {
		firstErr = err
	}

	return firstErr
}

// dropUntimestamped is phase 1: drops every non-drop-pending namespace with
// the operation's commit-timestamp cleared for the duration of the phase,
// restored on every exit.
func (se *StorageEngine) dropUntimestamped(ctx engine.OperationContext, h engine.Handle, namespaces []engine.Namespace) error {
	savedTS := ctx.RecoveryUnit.GetCommitTimestamp()
	if !savedTS.IsNull() {
		ctx.RecoveryUnit.ClearCommitTimestamp()
	}
	defer func() {
		if !savedTS.IsNull() {
			ctx.RecoveryUnit.SetCommitTimestamp(savedTS)
		}
	}()

	wuow := ctx.RecoveryUnit.BeginUnitOfWork()

	var firstErr error
	for _, ns := range namespaces {
		if se.initialDataTS != engine.AllowUnstableCheckpointsSentinel {
			if ns.IsReplicated() && !ns.IsTempMapReduce() && !ns.IsSystemIndexes() {
				se.log.Panicf("untimestamped drop of replicated namespace %s outside allow-unstable window", ns)
			}
		}
		if err := h.DropCollection(ctx, ns); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if err := wuow.Commit(); err != nil {
		return err
	}
	return firstErr
}

// dropTimestamped is phase 2: drops every drop-pending namespace at a
// chosen commit-timestamp, then stages the database's removal from the
// registry.
func (se *StorageEngine) dropTimestamped(ctx engine.OperationContext, h engine.Handle, dbName string, namespaces []engine.Namespace) error {
	existingTS := ctx.RecoveryUnit.GetCommitTimestamp()
	var chosenTS engine.Timestamp
	if se.clock != nil {
		chosenTS = se.clock.ClusterTime()
	}

	setHere := existingTS.IsNull() && !chosenTS.IsNull()
	if setHere {
		ctx.RecoveryUnit.SetCommitTimestamp(chosenTS)
	}
	defer func() {
		if setHere {
			ctx.RecoveryUnit.ClearCommitTimestamp()
		}
	}()

	wuow := ctx.RecoveryUnit.BeginUnitOfWork()

	var firstErr error
	for _, ns := range namespaces {
		if err := h.DropCollection(ctx, ns); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if remaining := h.CollectionNamespaces(); len(remaining) != 0 {
		se.log.Panicf("drop-database %s: namespaces remain live after phase 2: %v", dbName, remaining)
	}

	se.reg.RemoveHandle(ctx.RecoveryUnit, dbName)

	if err := wuow.Commit(); err != nil {
		return err
	}
	return firstErr
}
