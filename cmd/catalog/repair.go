package catalog

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ValentinKolb/catalogkv/cmd/util"
	"github.com/ValentinKolb/catalogkv/lib/engine"
)

var repairCmd = &cobra.Command{
	Use:     "repair <database> <collection>",
	Short:   "Repair a collection's ident and rebuild its Handle bookkeeping",
	Args:    cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, _ []string) error { return util.BindCommandFlags(cmd) },
	RunE:    runRepair,
}

func runRepair(_ *cobra.Command, args []string) error {
	sess, err := open(true)
	if err != nil {
		return fmt.Errorf("repair: %w", err)
	}
	defer sess.Close()

	ns := engine.NewNamespace(args[0], args[1])
	if err := sess.Store.RepairRecordStore(sess.Ctx, ns); err != nil {
		return fmt.Errorf("repair %s: %w", ns, err)
	}
	fmt.Printf("repaired %s\n", ns)
	return nil
}
