package catalog

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ValentinKolb/catalogkv/cmd/util"
)

var bootstrapCmd = &cobra.Command{
	Use:     "bootstrap",
	Short:   "Open the data directory, recovering the catalog and every database's handle",
	PreRunE: func(cmd *cobra.Command, _ []string) error { return util.BindCommandFlags(cmd) },
	RunE:    runBootstrap,
}

func runBootstrap(_ *cobra.Command, _ []string) error {
	sess, err := open(false)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer sess.Close()

	dbs := sess.Store.ListDatabases()
	fmt.Printf("catalog bootstrapped, %d live database(s)\n", len(dbs))
	for _, name := range dbs {
		fmt.Printf("  %s\n", name)
	}
	return nil
}
