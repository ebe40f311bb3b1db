package catalog

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ValentinKolb/catalogkv/cmd/util"
)

var listDatabasesCmd = &cobra.Command{
	Use:     "list-databases",
	Short:   "List every non-empty database known to the registry",
	PreRunE: func(cmd *cobra.Command, _ []string) error { return util.BindCommandFlags(cmd) },
	RunE:    runListDatabases,
}

func runListDatabases(_ *cobra.Command, _ []string) error {
	sess, err := open(false)
	if err != nil {
		return fmt.Errorf("list-databases: %w", err)
	}
	defer sess.Close()

	for _, name := range sess.Store.ListDatabases() {
		fmt.Println(name)
	}
	return nil
}
