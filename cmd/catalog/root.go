// Package catalog provides the catalogkv command-line surface for the
// persistent catalog / database registry / storage engine coordination
// primitives in lib/storageengine, layered over a pebble-backed engine.
package catalog

import (
	"github.com/spf13/cobra"

	"github.com/ValentinKolb/catalogkv/cmd/util"
)

// Command is the "catalog" command group, added to the root command.
var Command = &cobra.Command{
	Use:   "catalog",
	Short: "Bootstrap, reconcile, and administer the catalogkv catalog",
	Long: util.WrapString(`Commands that bootstrap the catalog against a
data directory, reconcile it against the backend engine, list and drop
databases, repair a damaged collection, and bracket a hot backup.`),
}

func init() {
	cobra.OnInitialize(util.InitConfig)

	Command.AddCommand(bootstrapCmd)
	Command.AddCommand(listDatabasesCmd)
	Command.AddCommand(reconcileCmd)
	Command.AddCommand(dropDatabaseCmd)
	Command.AddCommand(repairCmd)
	Command.AddCommand(backupCmd)

	key := "directory-per-db"
	Command.PersistentFlags().Bool(key, false, util.WrapString("request one directory per database; the pebble engine does not support this, so true makes bootstrap fail"))
	key = "directory-for-indexes"
	Command.PersistentFlags().Bool(key, false, util.WrapString("recorded on the catalog; no engine in this module acts on it"))
}
