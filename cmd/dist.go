package cmd

import (
	"path"

	"github.com/spf13/cobra"

	"github.com/stoneforge/bgen/dist"
	"github.com/stoneforge/bgen/log"
	"github.com/stoneforge/bgen/project"
	"github.com/stoneforge/bgen/util"
)

var distCmd = &cobra.Command{
	Use:   "dist",
	Args:  cobra.NoArgs,
	Short: "Creates a source distribution archive",
	Long: `Creates a source distribution archive of the project.
Inside a git repository only files tracked at HEAD are packed.`,
	Run: runDist,
}

func init() {
	rootCmd.AddCommand(distCmd)
}

func runDist(cmd *cobra.Command, args []string) {
	projectRoot, err := util.GetProjectRoot()
	if err != nil {
		log.Fatal("Failed to find the project root: %s.\n", err)
	}
	proj, err := project.Load(projectRoot)
	if err != nil {
		log.Fatal("Failed to load the project description: %s.\n", err)
	}

	log.Log("Packing '%s'.\n", proj.ArchiveName())
	log.Spinner.Start()
	archivePath, err := dist.Create(projectRoot, path.Join(projectRoot, outputDirName), proj.ArchiveName())
	log.Spinner.Stop()
	if err != nil {
		log.Fatal("Failed to create the source archive: %s.\n", err)
	}

	log.Success("Created '%s'.\n", archivePath)
}
