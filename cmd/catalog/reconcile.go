package catalog

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ValentinKolb/catalogkv/cmd/util"
	"github.com/ValentinKolb/catalogkv/lib/storageengine"
)

var reconcileCmd = &cobra.Command{
	Use:     "reconcile",
	Short:   "Drop orphaned idents and report indexes the backend is missing",
	PreRunE: func(cmd *cobra.Command, _ []string) error { return util.BindCommandFlags(cmd) },
	RunE:    runReconcile,
}

func runReconcile(_ *cobra.Command, _ []string) error {
	sess, err := open(false)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	defer sess.Close()

	missing, err := sess.Store.Reconcile(sess.Ctx)
	if err != nil {
		if errors.Is(err, storageengine.ErrUnrecoverableRollback) {
			return fmt.Errorf("reconcile: catalog is unrecoverable, process must exit: %w", err)
		}
		return fmt.Errorf("reconcile: %w", err)
	}

	if len(missing) == 0 {
		fmt.Println("reconcile: clean, no missing index idents")
		return nil
	}

	fmt.Printf("reconcile: %d index ident(s) missing from the backend, must be rebuilt:\n", len(missing))
	for _, m := range missing {
		fmt.Printf("  %s: %s\n", m.Namespace, m.IndexName)
	}
	return nil
}
