package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/stoneforge/bgen/log"
)

var rootCmd = &cobra.Command{
	Use:   "bgen",
	Short: "The build graph generator (bgen)",
	Long: `The build graph generator (bgen) turns declarative build descriptions into
backend build files. It registers build steps (external commands producing
named output files) and targets (artifacts composed from source files and
step outputs) in a build graph, validates the declarations, and emits the
graph for a build engine such as ninja or make to execute.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.PersistentFlags().BoolVarP(&log.Verbose, "verbose", "v", false, "Print debug output")
	if rootCmd.Execute() != nil || log.ErrorOccured() {
		os.Exit(1)
	}
}
