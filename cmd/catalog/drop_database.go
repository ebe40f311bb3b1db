package catalog

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ValentinKolb/catalogkv/cmd/util"
)

var dropDatabaseCmd = &cobra.Command{
	Use:     "drop-database <name>",
	Short:   "Drop every collection in a database and remove it from the registry",
	Args:    cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, _ []string) error { return util.BindCommandFlags(cmd) },
	RunE:    runDropDatabase,
}

func runDropDatabase(_ *cobra.Command, args []string) error {
	sess, err := open(false)
	if err != nil {
		return fmt.Errorf("drop-database: %w", err)
	}
	defer sess.Close()

	if err := sess.Store.DropDatabase(sess.Ctx, args[0]); err != nil {
		return fmt.Errorf("drop-database %s: %w", args[0], err)
	}
	fmt.Printf("dropped database %s\n", args[0])
	return nil
}
