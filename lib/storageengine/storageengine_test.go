package storageengine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ValentinKolb/catalogkv/lib/catalog"
	"github.com/ValentinKolb/catalogkv/lib/engine"
	"github.com/ValentinKolb/catalogkv/lib/engine/memengine"
	"github.com/ValentinKolb/catalogkv/lib/engine/refhandle"
	"github.com/ValentinKolb/catalogkv/lib/storageengine"
)

type fixedClock struct{ t engine.Timestamp }

func (c fixedClock) ClusterTime() engine.Timestamp { return c.t }

func newCtx(eng engine.Engine, clock engine.LogicalClock) engine.OperationContext {
	return engine.OperationContext{
		Context:      context.Background(),
		RecoveryUnit: eng.NewRecoveryUnit(),
		Clock:        clock,
	}
}

func openCatalogStore(t *testing.T, ctx engine.OperationContext, eng engine.Engine) engine.RecordStore {
	t.Helper()
	if !eng.HasIdent(ctx, engine.CatalogIdent) {
		if err := eng.CreateGroupedRecordStore(ctx, engine.CatalogIdent, engine.CollectionOptions{}, engine.NotPrefixed); err != nil {
			t.Fatalf("create catalog ident: %v", err)
		}
	}
	store, err := eng.GetGroupedRecordStore(ctx, engine.CatalogIdent, engine.CollectionOptions{}, engine.NotPrefixed)
	if err != nil {
		t.Fatalf("open catalog store: %v", err)
	}
	return store
}

// TestBootstrapColdStart covers an empty backend with no pre-existing
// catalog.
func TestBootstrapColdStart(t *testing.T) {
	eng := memengine.New()
	ctx := newCtx(eng, fixedClock{})

	var catPtr *catalog.Catalog
	factory := refhandle.NewFactory(eng, func(ns engine.Namespace) (engine.Ident, bool) {
		return catPtr.CollectionIdent(ns)
	})

	se, err := storageengine.New(ctx, "cold", eng, factory, storageengine.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	catPtr = se.Catalog()

	if !eng.HasIdent(ctx, engine.CatalogIdent) {
		t.Fatalf("expected catalog ident to be created")
	}
	if got := se.ListDatabases(); len(got) != 0 {
		t.Fatalf("expected no databases, got %v", got)
	}
}

// TestBootstrapWarmStart covers two pre-existing collections declared in
// the catalog and present in the backend.
func TestBootstrapWarmStart(t *testing.T) {
	eng := memengine.New()
	ctx := newCtx(eng, fixedClock{})
	store := openCatalogStore(t, ctx, eng)

	seedCat := catalog.New(store, false)
	if err := seedCat.Init(ctx); err != nil {
		t.Fatalf("seed Init: %v", err)
	}
	ns1 := engine.NewNamespace("d1", "c1")
	ns2 := engine.NewNamespace("d2", "c2")
	for _, id := range []engine.Ident{"i1", "i2"} {
		if err := eng.CreateGroupedRecordStore(ctx, id, engine.CollectionOptions{}, engine.NotPrefixed); err != nil {
			t.Fatalf("create ident %s: %v", id, err)
		}
	}
	if err := seedCat.Put(ctx, engine.CollectionMetadata{Namespace: ns1, Ident: "i1", MaxPrefix: 5}); err != nil {
		t.Fatalf("seed put ns1: %v", err)
	}
	if err := seedCat.Put(ctx, engine.CollectionMetadata{Namespace: ns2, Ident: "i2", MaxPrefix: 3}); err != nil {
		t.Fatalf("seed put ns2: %v", err)
	}

	factory := refhandle.NewFactory(eng, seedCat.CollectionIdent)
	se, err := storageengine.New(ctx, "warm", eng, factory, storageengine.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	dbs := se.ListDatabases()
	if len(dbs) != 2 {
		t.Fatalf("expected 2 databases, got %v", dbs)
	}

	if got, err := se.Reconcile(ctx); err != nil || len(got) != 0 {
		t.Fatalf("Reconcile = %v, %v; want empty, nil", got, err)
	}
}

// TestReconcileDropsOrphan covers an orphaned user-data ident with no
// catalog entry.
func TestReconcileDropsOrphan(t *testing.T) {
	eng := memengine.New()
	ctx := newCtx(eng, fixedClock{})
	store := openCatalogStore(t, ctx, eng)

	seedCat := catalog.New(store, false)
	if err := seedCat.Init(ctx); err != nil {
		t.Fatalf("seed Init: %v", err)
	}
	ns1 := engine.NewNamespace("d1", "c1")
	for _, id := range []engine.Ident{"i1", "i_orphan"} {
		if err := eng.CreateGroupedRecordStore(ctx, id, engine.CollectionOptions{}, engine.NotPrefixed); err != nil {
			t.Fatalf("create ident %s: %v", id, err)
		}
	}
	if err := seedCat.Put(ctx, engine.CollectionMetadata{Namespace: ns1, Ident: "i1"}); err != nil {
		t.Fatalf("seed put: %v", err)
	}

	factory := refhandle.NewFactory(eng, seedCat.CollectionIdent)
	se, err := storageengine.New(ctx, "orphan", eng, factory, storageengine.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	missing, err := se.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(missing) != 0 {
		t.Fatalf("expected no missing indexes, got %v", missing)
	}
	if eng.HasIdent(ctx, "i_orphan") {
		t.Fatalf("expected orphan ident to be dropped")
	}
	if !eng.HasIdent(ctx, "i1") {
		t.Fatalf("expected referenced ident to survive reconcile")
	}
}

// TestReconcileMissingCollectionIdent covers a catalog entry whose
// collection ident is missing from the backend.
func TestReconcileMissingCollectionIdent(t *testing.T) {
	eng := memengine.New()
	ctx := newCtx(eng, fixedClock{})
	store := openCatalogStore(t, ctx, eng)

	seedCat := catalog.New(store, false)
	if err := seedCat.Init(ctx); err != nil {
		t.Fatalf("seed Init: %v", err)
	}
	ns1 := engine.NewNamespace("d1", "c1")
	if err := seedCat.Put(ctx, engine.CollectionMetadata{Namespace: ns1, Ident: "i1"}); err != nil {
		t.Fatalf("seed put: %v", err)
	}

	factory := refhandle.NewFactory(eng, seedCat.CollectionIdent)
	se, err := storageengine.New(ctx, "missing-coll", eng, factory, storageengine.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = se.Reconcile(ctx)
	if !errors.Is(err, storageengine.ErrUnrecoverableRollback) {
		t.Fatalf("Reconcile err = %v, want ErrUnrecoverableRollback", err)
	}
}

// TestReconcileMissingIndexIdent covers a catalog entry whose index ident
// is missing from the backend.
func TestReconcileMissingIndexIdent(t *testing.T) {
	eng := memengine.New()
	ctx := newCtx(eng, fixedClock{})
	store := openCatalogStore(t, ctx, eng)

	seedCat := catalog.New(store, false)
	if err := seedCat.Init(ctx); err != nil {
		t.Fatalf("seed Init: %v", err)
	}
	ns1 := engine.NewNamespace("d1", "c1")
	if err := eng.CreateGroupedRecordStore(ctx, "i1", engine.CollectionOptions{}, engine.NotPrefixed); err != nil {
		t.Fatalf("create ident: %v", err)
	}
	md := engine.CollectionMetadata{
		Namespace: ns1,
		Ident:     "i1",
		Indexes:   []engine.IndexDescriptor{{Name: "idx_a", Ident: "ia"}},
	}
	if err := seedCat.Put(ctx, md); err != nil {
		t.Fatalf("seed put: %v", err)
	}

	factory := refhandle.NewFactory(eng, seedCat.CollectionIdent)
	se, err := storageengine.New(ctx, "missing-idx", eng, factory, storageengine.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	missing, err := se.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(missing) != 1 || missing[0].Namespace != ns1 || missing[0].IndexName != "idx_a" {
		t.Fatalf("Reconcile missing = %v, want [{%v idx_a}]", missing, ns1)
	}
}

// TestDropDatabaseMixed exercises untimestamped and drop-pending namespaces
// in one database, checking that the drop succeeds, that d1 leaves
// ListDatabases, and that the commit timestamp is null again afterwards.
func TestDropDatabaseMixed(t *testing.T) {
	eng := memengine.New()
	clock := fixedClock{t: 42}
	ctx := newCtx(eng, clock)
	_ = openCatalogStore(t, ctx, eng)

	var catPtr *catalog.Catalog
	factory := refhandle.NewFactory(eng, func(ns engine.Namespace) (engine.Ident, bool) {
		return catPtr.CollectionIdent(ns)
	})
	se, err := storageengine.New(ctx, "drop-mixed", eng, factory, storageengine.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	catPtr = se.Catalog()

	nsLocal := engine.NewNamespace("d1", "c_local")
	nsMR := engine.NewNamespace("d1", "tmp.mr.x")
	nsDropPending := engine.NewNamespace("d1", "system.drop.123.c_repl")

	for ns, id := range map[engine.Namespace]engine.Ident{
		nsLocal:       "i_local",
		nsMR:          "i_mr",
		nsDropPending: "i_repl",
	} {
		if err := eng.CreateGroupedRecordStore(ctx, id, engine.CollectionOptions{}, engine.NotPrefixed); err != nil {
			t.Fatalf("create ident: %v", err)
		}
		if err := catPtr.Put(ctx, engine.CollectionMetadata{Namespace: ns, Ident: id}); err != nil {
			t.Fatalf("catalog put: %v", err)
		}
	}

	h := se.GetDatabaseHandle("d1")
	for _, ns := range []engine.Namespace{nsLocal, nsMR, nsDropPending} {
		if err := h.InitCollection(ctx, ns, false); err != nil {
			t.Fatalf("InitCollection(%s): %v", ns, err)
		}
	}

	dropCtx := newCtx(eng, clock)
	if err := se.DropDatabase(dropCtx, "d1"); err != nil {
		t.Fatalf("DropDatabase: %v", err)
	}

	for _, name := range se.ListDatabases() {
		if name == "d1" {
			t.Fatalf("expected d1 to be gone from ListDatabases")
		}
	}
	if got := dropCtx.RecoveryUnit.GetCommitTimestamp(); !got.IsNull() {
		t.Fatalf("commit timestamp not restored after drop, got %v", got)
	}
}

// TestDropDatabaseRollbackRestoresHandle checks that aborting the enclosing
// unit of work after a successful drop-database reinstalls the same Handle
// identity under the registry.
func TestDropDatabaseRollbackRestoresHandle(t *testing.T) {
	eng := memengine.New()
	ctx := newCtx(eng, fixedClock{})
	_ = openCatalogStore(t, ctx, eng)

	var catPtr *catalog.Catalog
	factory := refhandle.NewFactory(eng, func(ns engine.Namespace) (engine.Ident, bool) {
		return catPtr.CollectionIdent(ns)
	})
	se, err := storageengine.New(ctx, "drop-rollback", eng, factory, storageengine.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	catPtr = se.Catalog()

	original := se.GetDatabaseHandle("d1")

	outerRU := eng.NewRecoveryUnit()
	outerWUOW := outerRU.BeginUnitOfWork()
	dropCtx := engine.OperationContext{Context: context.Background(), RecoveryUnit: outerRU, Clock: fixedClock{}}

	if err := se.DropDatabase(dropCtx, "d1"); err != nil {
		t.Fatalf("DropDatabase: %v", err)
	}
	for _, name := range se.ListDatabases() {
		if name == "d1" {
			t.Fatalf("d1 should not be visible before outer WUOW resolves")
		}
	}

	outerWUOW.Abort()

	restored := se.GetDatabaseHandle("d1")
	if restored != original {
		t.Fatalf("expected original Handle identity to be restored after rollback")
	}
}
