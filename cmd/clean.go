package cmd

import (
	"os"
	"path"

	"github.com/spf13/cobra"

	"github.com/stoneforge/bgen/log"
	"github.com/stoneforge/bgen/util"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Args:  cobra.NoArgs,
	Short: "Removes all generated build files",
	Long:  `Removes all generated build files.`,
	Run:   runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) {
	projectRoot, err := util.GetProjectRoot()
	if err != nil {
		log.Fatal("Failed to find the project root: %s.\n", err)
	}
	buildDir := path.Join(projectRoot, outputDirName)
	if !util.DirExists(buildDir) {
		log.Debug("Nothing to clean.\n")
		return
	}
	log.Debug("Removing '%s' directory '%s'.\n", outputDirName, buildDir)
	os.RemoveAll(buildDir)
}
