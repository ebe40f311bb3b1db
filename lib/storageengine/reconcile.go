package storageengine

import (
	"fmt"
	"time"

	"github.com/ValentinKolb/catalogkv/lib/engine"
)

// Reconcile compares the backend's ident set against the catalog's ident
// set:
//
//  1. Every backend ident that is user data and not referenced by the
//     catalog is an orphan: dropped.
//  2. Every catalog-referenced collection ident must exist in the backend;
//     if one is missing, reconcile fails with ErrUnrecoverableRollback.
//  3. Every catalog-referenced index ident that is missing is reported to
//     the caller as a rebuild candidate, not treated as an error.
//
// Reconcile is not concurrency-safe with concurrent create/drop; callers
// serialize it (startup, post recover-to-stable).
func (se *StorageEngine) Reconcile(ctx engine.OperationContext) ([]engine.CollectionIndexNamePair, error) {
	start := time.Now()
	defer se.reconcileTimer.UpdateSince(start)

	backendIdents := make(map[engine.Ident]bool)
	for _, id := range se.eng.GetAllIdents(ctx) {
		backendIdents[id] = true
	}

	catalogIdents := make(map[engine.Ident]bool)
	for _, id := range se.cat.Idents() {
		catalogIdents[id] = true
	}

	// (1) drop orphans: user-data idents the backend has that the catalog
	// doesn't reference. Each drop happens inside its own write transaction;
	// a failure here means the backend is in a state reconcile cannot
	// reason about further, so it is fatal.
	var dropped int
	for id := range backendIdents {
		if catalogIdents[id] {
			continue
		}
		if !se.cat.IsUserDataIdent(id) {
			continue
		}
		wuow := ctx.RecoveryUnit.BeginUnitOfWork()
		if err := se.eng.DropIdent(ctx, id); err != nil {
			wuow.Abort()
			se.log.Panicf("dropping orphan ident %s: %v", id, err)
		}
		if err := wuow.Commit(); err != nil {
			se.log.Panicf("committing drop of orphan ident %s: %v", id, err)
		}
		dropped++
	}
	if dropped > 0 {
		se.orphansDroppedCounter.Inc(int64(dropped))
	}

	// (2) + (3): walk catalog entries, checking collection and index idents
	// against the backend's set.
	var missingIndexes []engine.CollectionIndexNamePair
	for _, ns := range se.cat.Collections() {
		md, ok := se.cat.Metadata(ns)
		if !ok {
			continue
		}
		if !backendIdents[md.Ident] {
			return nil, fmt.Errorf("%w: %s (ident %s)", ErrUnrecoverableRollback, ns, md.Ident)
		}
		for _, idx := range md.Indexes {
			if !backendIdents[idx.Ident] {
				missingIndexes = append(missingIndexes, engine.CollectionIndexNamePair{
					Namespace: ns,
					IndexName: idx.Name,
				})
			}
		}
	}

	return missingIndexes, nil
}
