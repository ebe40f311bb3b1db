package storageengine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/lni/dragonboat/v4/logger"
	gometrics "github.com/rcrowley/go-metrics"

	"github.com/ValentinKolb/catalogkv/lib/catalog"
	"github.com/ValentinKolb/catalogkv/lib/engine"
	"github.com/ValentinKolb/catalogkv/lib/logging"
	"github.com/ValentinKolb/catalogkv/lib/registry"
)

// StorageEngine is the coordination core: bootstrap, reconcile,
// drop-database, and pass-through backup/timestamp/durability operations
// layered over a caller-provided engine.Engine.
type StorageEngine struct {
	eng   engine.Engine
	opts  Options
	clock engine.LogicalClock

	catalogStore engine.RecordStore
	cat          *catalog.Catalog
	reg          *registry.Registry

	prefixCounter engine.Prefix
	initialDataTS engine.Timestamp

	backupMu sync.Mutex
	inBackup bool

	log logger.ILogger

	reconcileTimer          gometrics.Timer
	orphansDroppedCounter   gometrics.Counter
	dropDatabaseTimer       gometrics.Timer
}

// New runs the bootstrap & recovery coordinator under a transient
// transaction context and returns a ready StorageEngine.
//
// name namespaces this instance's metrics and logger so multiple
// StorageEngines in one process (tests, multi-tenant hosting) don't collide.
func New(ctx engine.OperationContext, name string, eng engine.Engine, factory engine.HandleFactory, opts Options) (*StorageEngine, error) {
	if opts.DirectoryPerDB && !eng.SupportsDirectoryPerDB() {
		return nil, fmt.Errorf("%w: directoryPerDB requested but backend does not support it", ErrBadValue)
	}

	se := &StorageEngine{
		eng:                   eng,
		opts:                  opts,
		clock:                 ctx.Clock,
		prefixCounter:         engine.NotPrefixed,
		initialDataTS:         engine.AllowUnstableCheckpointsSentinel,
		log:                   logging.Get(name),
		reconcileTimer:        gometrics.GetOrRegisterTimer(name+".reconcile.duration", nil),
		orphansDroppedCounter: gometrics.GetOrRegisterCounter(name+".reconcile.orphans_dropped", nil),
		dropDatabaseTimer:     gometrics.GetOrRegisterTimer(name+".drop_database.duration", nil),
	}

	// Step 2: probe for the catalog ident, creating it if absent.
	if !eng.HasIdent(ctx, engine.CatalogIdent) {
		wuow := ctx.RecoveryUnit.BeginUnitOfWork()
		if err := eng.CreateGroupedRecordStore(ctx, engine.CatalogIdent, engine.CollectionOptions{}, engine.NotPrefixed); err != nil {
			wuow.Abort()
			switch {
			case errors.Is(err, engine.ErrIdentExists):
				// lost a race with another opener; treat as already-present.
			case errors.Is(err, engine.ErrBadValue):
				// caller misconfiguration: non-fatal, returned to the caller.
				return nil, fmt.Errorf("%w: %v", ErrBadValue, err)
			default:
				se.log.Panicf("creating catalog ident: %v", err)
			}
		} else if err := wuow.Commit(); err != nil {
			se.log.Panicf("committing catalog-ident creation: %v", err)
		}
	} else if opts.ForRepair {
		// Step 3: repair is best-effort; failures are logged, not fatal -
		// a repair that silently fails is caught later by Reconcile.
		if err := eng.RepairIdent(ctx, engine.CatalogIdent); err != nil {
			se.log.Warningf("repairing catalog ident: %v", err)
		}
	}

	// Step 4: open the catalog record store and initialize the reader.
	store, err := eng.GetGroupedRecordStore(ctx, engine.CatalogIdent, engine.CollectionOptions{}, engine.NotPrefixed)
	if err != nil {
		se.log.Panicf("opening catalog record store after creation: %v", err)
	}
	se.catalogStore = store
	se.cat = catalog.New(store, opts.DirectoryForIndexes)
	if err := se.cat.Init(ctx); err != nil {
		se.log.Panicf("initializing persistent catalog: %v", err)
	}

	se.reg = registry.New(name, factory)

	// Step 5: for every persisted collection, ensure the owning database's
	// Handle exists and has been told to init the collection.
	for _, ns := range se.cat.Collections() {
		h := se.reg.GetOrCreate(ns.DB())
		if err := h.InitCollection(ctx, ns, opts.ForRepair); err != nil {
			se.log.Errorf("init-collection %s: %v", ns, err)
		}
	}

	// Step 6: publish the max persisted prefix into the global counter.
	if max := se.cat.MaxPrefix(); max > se.prefixCounter {
		se.prefixCounter = max
	}

	// Step 7: abandon the bootstrap snapshot.
	ctx.RecoveryUnit.AbandonSnapshot()

	return se, nil
}

// NextPrefix allocates and returns a prefix strictly greater than any
// prefix returned so far, including any persisted at bootstrap.
func (se *StorageEngine) NextPrefix() engine.Prefix {
	se.prefixCounter++
	return se.prefixCounter
}

// Catalog exposes the persistent catalog reader, for components (e.g. a
// collection-creation path outside this core's scope) that need to read
// catalog entries directly.
func (se *StorageEngine) Catalog() *catalog.Catalog { return se.cat }

// ListDatabases returns every database name whose Handle reports non-empty.
func (se *StorageEngine) ListDatabases() []string {
	return se.reg.ListDatabases()
}

// GetDatabaseHandle returns (creating if necessary) the Handle for name.
func (se *StorageEngine) GetDatabaseHandle(name string) engine.Handle {
	return se.reg.GetOrCreate(name)
}

// CloseDatabase is a no-op: Handles are not closed independently of
// clean-shutdown or drop-database.
func (se *StorageEngine) CloseDatabase(string) {}
