package pebbleengine_test

import (
	"context"
	"testing"

	"github.com/ValentinKolb/catalogkv/lib/engine"
	"github.com/ValentinKolb/catalogkv/lib/engine/pebbleengine"
)

func newCtx(eng engine.Engine) engine.OperationContext {
	return engine.OperationContext{Context: context.Background(), RecoveryUnit: eng.NewRecoveryUnit()}
}

func TestIdentLifecycle(t *testing.T) {
	eng, err := pebbleengine.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer pebbleengine.Close(eng)

	ctx := newCtx(eng)
	if eng.HasIdent(ctx, "i1") {
		t.Fatalf("fresh database should not have ident i1")
	}
	if err := eng.CreateGroupedRecordStore(ctx, "i1", engine.CollectionOptions{}, engine.NotPrefixed); err != nil {
		t.Fatalf("CreateGroupedRecordStore: %v", err)
	}
	if !eng.HasIdent(ctx, "i1") {
		t.Fatalf("expected i1 to exist after creation")
	}
	if err := eng.CreateGroupedRecordStore(ctx, "i1", engine.CollectionOptions{}, engine.NotPrefixed); err != engine.ErrIdentExists {
		t.Fatalf("expected ErrIdentExists on duplicate create, got %v", err)
	}

	idents := eng.GetAllIdents(ctx)
	if len(idents) != 1 || idents[0] != "i1" {
		t.Fatalf("GetAllIdents = %v, want [i1]", idents)
	}

	if err := eng.DropIdent(ctx, "i1"); err != nil {
		t.Fatalf("DropIdent: %v", err)
	}
	if eng.HasIdent(ctx, "i1") {
		t.Fatalf("expected i1 gone after drop")
	}
}

func TestRecordStoreRoundTripAndPrefixIsolation(t *testing.T) {
	eng, err := pebbleengine.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer pebbleengine.Close(eng)

	ctx := newCtx(eng)
	if err := eng.CreateGroupedRecordStore(ctx, "i1", engine.CollectionOptions{}, engine.NotPrefixed); err != nil {
		t.Fatalf("create: %v", err)
	}

	rs1, err := eng.GetGroupedRecordStore(ctx, "i1", engine.CollectionOptions{}, 1)
	if err != nil {
		t.Fatalf("open prefix 1: %v", err)
	}
	rs2, err := eng.GetGroupedRecordStore(ctx, "i1", engine.CollectionOptions{}, 2)
	if err != nil {
		t.Fatalf("open prefix 2: %v", err)
	}

	if err := rs1.Put(ctx, "a", []byte("one")); err != nil {
		t.Fatalf("put rs1: %v", err)
	}
	if err := rs2.Put(ctx, "a", []byte("two")); err != nil {
		t.Fatalf("put rs2: %v", err)
	}

	v, ok := rs1.Get(ctx, "a")
	if !ok || string(v) != "one" {
		t.Fatalf("rs1.Get(a) = %q, %v, want \"one\", true", v, ok)
	}
	v, ok = rs2.Get(ctx, "a")
	if !ok || string(v) != "two" {
		t.Fatalf("rs2.Get(a) = %q, %v, want \"two\", true", v, ok)
	}

	count := 0
	rs1.All(ctx)(func(id string, value []byte) bool {
		count++
		if id != "a" || string(value) != "one" {
			t.Fatalf("unexpected record in rs1: %s=%s", id, value)
		}
		return true
	})
	if count != 1 {
		t.Fatalf("rs1.All visited %d records, want 1", count)
	}

	if err := rs1.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := rs1.Get(ctx, "a"); ok {
		t.Fatalf("expected a gone from rs1 after delete")
	}
	if _, ok := rs2.Get(ctx, "a"); !ok {
		t.Fatalf("rs2's record must survive rs1's delete")
	}
}

func TestBackupMutualExclusion(t *testing.T) {
	eng, err := pebbleengine.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer pebbleengine.Close(eng)

	ctx := newCtx(eng)
	if err := eng.BeginBackup(ctx); err != nil {
		t.Fatalf("first BeginBackup: %v", err)
	}
	if err := eng.BeginBackup(ctx); err != engine.ErrAlreadyInBackup {
		t.Fatalf("second BeginBackup = %v, want ErrAlreadyInBackup", err)
	}
	eng.EndBackup(ctx)
	if err := eng.BeginBackup(ctx); err != nil {
		t.Fatalf("BeginBackup after EndBackup: %v", err)
	}
}
