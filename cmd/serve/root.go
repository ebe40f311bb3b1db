// Package serve provides the catalogkv "serve" stub: it wires up
// configuration and bootstraps the storage engine exactly the way the
// catalog subcommands do, but does not expose any RPC transport - no
// transport/serializer pair is part of this scope, unlike dKV's rpc/server.
package serve

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ValentinKolb/catalogkv/cmd/util"
	"github.com/ValentinKolb/catalogkv/lib/catalog"
	"github.com/ValentinKolb/catalogkv/lib/engine"
	"github.com/ValentinKolb/catalogkv/lib/engine/pebbleengine"
	"github.com/ValentinKolb/catalogkv/lib/engine/refhandle"
	"github.com/ValentinKolb/catalogkv/lib/storageengine"
)

// Command is the "serve" stub: it bootstraps the storage engine and reports
// the databases it found, then shuts back down. A real service would block
// here accepting requests over some transport; wiring one is out of scope.
var Command = &cobra.Command{
	Use:     "serve",
	Short:   "Bootstrap the catalog, report it, and shut down (no RPC transport)",
	Long:    util.WrapString(`Bootstraps the catalog against a data directory the same way "catalog bootstrap" does, reports the live database count, then shuts down. It does not run a request-accept loop; that is out of scope for this repository.`),
	PreRunE: func(cmd *cobra.Command, _ []string) error { return util.BindCommandFlags(cmd) },
	RunE:    run,
}

func init() {
	cobra.OnInitialize(util.InitConfig)

	key := "endpoint"
	Command.PersistentFlags().String(key, "0.0.0.0:8080", util.WrapString("address a real service would listen on (accepted but unused - no transport is wired)"))
	key = "directory-per-db"
	Command.PersistentFlags().Bool(key, false, util.WrapString("request one directory per database; the pebble engine does not support this, so true makes bootstrap fail"))
	key = "directory-for-indexes"
	Command.PersistentFlags().Bool(key, false, util.WrapString("recorded on the catalog; no engine in this module acts on it"))
}

// wallClock stamps replicated drops with the current wall-clock second, the
// same stand-in cmd/catalog's runtime.go uses for a standalone engine.
type wallClock struct{}

func (wallClock) ClusterTime() engine.Timestamp { return engine.Timestamp(time.Now().Unix()) }

func run(_ *cobra.Command, _ []string) error {
	eng, err := pebbleengine.Open(viper.GetString("data-dir"))
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	defer func() { _ = pebbleengine.Close(eng) }()

	ctx := engine.OperationContext{
		Context:      context.Background(),
		RecoveryUnit: eng.NewRecoveryUnit(),
		Clock:        wallClock{},
	}

	var catPtr *catalog.Catalog
	factory := refhandle.NewFactory(eng, func(ns engine.Namespace) (engine.Ident, bool) {
		return catPtr.CollectionIdent(ns)
	})

	se, err := storageengine.New(ctx, "catalogkv-serve", eng, factory, storageengine.Options{
		DirectoryPerDB:      viper.GetBool("directory-per-db"),
		DirectoryForIndexes: viper.GetBool("directory-for-indexes"),
	})
	if err != nil {
		return fmt.Errorf("serve: bootstrap: %w", err)
	}
	catPtr = se.Catalog()
	defer se.CleanShutdown()

	fmt.Printf("catalog bootstrapped, %d live database(s); no RPC transport wired, endpoint %s unused\n",
		len(se.ListDatabases()), viper.GetString("endpoint"))

	return nil
}
