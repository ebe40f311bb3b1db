package catalog

import (
	"context"
	"time"

	"github.com/spf13/viper"

	"github.com/ValentinKolb/catalogkv/lib/catalog"
	"github.com/ValentinKolb/catalogkv/lib/engine"
	"github.com/ValentinKolb/catalogkv/lib/engine/pebbleengine"
	"github.com/ValentinKolb/catalogkv/lib/engine/refhandle"
	"github.com/ValentinKolb/catalogkv/lib/storageengine"
)

// wallClock stamps replicated drops with the current wall-clock second.
// Real deployments would thread in a proper logical/hybrid clock; this CLI
// talks to a single standalone engine, so wall-clock time is a reasonable
// stand-in cluster time.
type wallClock struct{}

func (wallClock) ClusterTime() engine.Timestamp { return engine.Timestamp(time.Now().Unix()) }

// session bundles everything one CLI invocation needs and how to tear it
// down in the right order.
type session struct {
	Engine engine.Engine
	Store  *storageengine.StorageEngine
	Ctx    engine.OperationContext
}

func (s *session) Close() {
	s.Store.CleanShutdown()
	_ = pebbleengine.Close(s.Engine)
}

// open bootstraps a StorageEngine against the configured pebble data
// directory.
func open(forRepair bool) (*session, error) {
	eng, err := pebbleengine.Open(viper.GetString("data-dir"))
	if err != nil {
		return nil, err
	}

	ctx := engine.OperationContext{
		Context:      context.Background(),
		RecoveryUnit: eng.NewRecoveryUnit(),
		Clock:        wallClock{},
	}

	var catPtr *catalog.Catalog
	factory := refhandle.NewFactory(eng, func(ns engine.Namespace) (engine.Ident, bool) {
		return catPtr.CollectionIdent(ns)
	})

	se, err := storageengine.New(ctx, "catalogkv", eng, factory, storageengine.Options{
		DirectoryPerDB:      viper.GetBool("directory-per-db"),
		DirectoryForIndexes: viper.GetBool("directory-for-indexes"),
		ForRepair:           forRepair,
	})
	if err != nil {
		_ = pebbleengine.Close(eng)
		return nil, err
	}
	catPtr = se.Catalog()

	return &session{Engine: eng, Store: se, Ctx: ctx}, nil
}
