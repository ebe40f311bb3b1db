package catalog_test

import (
	"context"
	"testing"

	"github.com/ValentinKolb/catalogkv/lib/catalog"
	"github.com/ValentinKolb/catalogkv/lib/engine"
	"github.com/ValentinKolb/catalogkv/lib/engine/memengine"
)

func newTestStore(t *testing.T) (engine.RecordStore, engine.OperationContext) {
	t.Helper()
	eng := memengine.New()
	ctx := engine.OperationContext{Context: context.Background(), RecoveryUnit: eng.NewRecoveryUnit()}
	if err := eng.CreateGroupedRecordStore(ctx, engine.CatalogIdent, engine.CollectionOptions{}, engine.NotPrefixed); err != nil {
		t.Fatalf("create catalog ident: %v", err)
	}
	store, err := eng.GetGroupedRecordStore(ctx, engine.CatalogIdent, engine.CollectionOptions{}, engine.NotPrefixed)
	if err != nil {
		t.Fatalf("open catalog store: %v", err)
	}
	return store, ctx
}

func TestInitEmpty(t *testing.T) {
	store, ctx := newTestStore(t)
	c := catalog.New(store, false)
	if err := c.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if got := c.Collections(); len(got) != 0 {
		t.Fatalf("expected no collections, got %v", got)
	}
	if c.MaxPrefix() != engine.NotPrefixed {
		t.Fatalf("expected NotPrefixed on empty catalog, got %v", c.MaxPrefix())
	}
}

func TestPutThenLookup(t *testing.T) {
	store, ctx := newTestStore(t)
	c := catalog.New(store, false)
	if err := c.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}

	ns := engine.NewNamespace("d1", "c1")
	md := engine.CollectionMetadata{
		Namespace: ns,
		Ident:     "collection-d1-c1",
		Indexes: []engine.IndexDescriptor{
			{Name: "_id_", Ident: "index-d1-c1-_id_", Ready: true},
		},
		MaxPrefix: 3,
	}
	if err := c.Put(ctx, md); err != nil {
		t.Fatalf("Put: %v", err)
	}

	id, ok := c.CollectionIdent(ns)
	if !ok || id != md.Ident {
		t.Fatalf("CollectionIdent(%v) = %v, %v", ns, id, ok)
	}

	idxID, ok := c.IndexIdent(ns, "_id_")
	if !ok || idxID != "index-d1-c1-_id_" {
		t.Fatalf("IndexIdent = %v, %v", idxID, ok)
	}

	got, ok := c.Metadata(ns)
	if !ok {
		t.Fatalf("Metadata missing for %v", ns)
	}
	got.Indexes[0].Ready = false
	if fresh, _ := c.Metadata(ns); !fresh.Indexes[0].Ready {
		t.Fatalf("Metadata must return an independent copy, mutation leaked into catalog")
	}

	idents := c.Idents()
	if len(idents) != 2 {
		t.Fatalf("expected 2 idents (collection + index), got %v", idents)
	}

	if c.MaxPrefix() != 3 {
		t.Fatalf("MaxPrefix = %v, want 3", c.MaxPrefix())
	}
}

func TestInitReadsExistingRecords(t *testing.T) {
	store, ctx := newTestStore(t)
	seed := catalog.New(store, false)
	ns := engine.NewNamespace("d1", "c1")
	if err := seed.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := seed.Put(ctx, engine.CollectionMetadata{Namespace: ns, Ident: "collection-d1-c1"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	reopened := catalog.New(store, false)
	if err := reopened.Init(ctx); err != nil {
		t.Fatalf("Init (reopen): %v", err)
	}
	if _, ok := reopened.CollectionIdent(ns); !ok {
		t.Fatalf("expected %v to survive reopen", ns)
	}
}

func TestRemove(t *testing.T) {
	store, ctx := newTestStore(t)
	c := catalog.New(store, false)
	if err := c.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	ns := engine.NewNamespace("d1", "c1")
	if err := c.Put(ctx, engine.CollectionMetadata{Namespace: ns, Ident: "collection-d1-c1"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Remove(ctx, ns); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := c.CollectionIdent(ns); ok {
		t.Fatalf("expected %v to be gone after Remove", ns)
	}
	// removing again is not an error
	if err := c.Remove(ctx, ns); err != nil {
		t.Fatalf("Remove (absent): %v", err)
	}
}

func TestIsUserDataIdent(t *testing.T) {
	store, ctx := newTestStore(t)
	c := catalog.New(store, false)
	if err := c.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if c.IsUserDataIdent(engine.CatalogIdent) {
		t.Fatalf("catalog ident must never classify as user data")
	}
	if !c.IsUserDataIdent("collection-d1-c1") {
		t.Fatalf("arbitrary ident must classify as user data")
	}
}
