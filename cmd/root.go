package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ValentinKolb/catalogkv/cmd/catalog"
	"github.com/ValentinKolb/catalogkv/cmd/serve"
	"github.com/ValentinKolb/catalogkv/cmd/util"
)

const (
	Version = "1.0.0"
)

var (
	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "catalogkv",
		Short: "catalog coordination layer over a pluggable key-value backend",
		Long: fmt.Sprintf(`catalogkv (v%s)

A catalog coordination layer: persistent catalog, database registry,
bootstrap/recovery, reconciliation and drop-database orchestration, layered
over a pluggable github.com/cockroachdb/pebble-backed engine.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of catalogkv",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("catalogkv v%s\n", Version)
		},
	}
)

func init() {
	RootCmd.AddCommand(catalog.Command)
	RootCmd.AddCommand(serve.Command)
	RootCmd.AddCommand(versionCmd)

	key := "data-dir"
	RootCmd.PersistentFlags().String(key, "data", util.WrapString("directory backing the pebble engine"))
	key = "log-level"
	RootCmd.PersistentFlags().String(key, "info", util.WrapString("log level (debug, info, warn, error); accepted but not applied, loggers always log at info"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
