package cmd

import (
	"bytes"
	"path"

	"github.com/spf13/cobra"

	"github.com/stoneforge/bgen/backend/dot"
	makebackend "github.com/stoneforge/bgen/backend/make"
	"github.com/stoneforge/bgen/backend/ninja"
	"github.com/stoneforge/bgen/buildfile"
	"github.com/stoneforge/bgen/config"
	"github.com/stoneforge/bgen/graph"
	"github.com/stoneforge/bgen/log"
	"github.com/stoneforge/bgen/project"
	"github.com/stoneforge/bgen/util"
)

// outputDirName is the name of the build directory inside the project root.
const outputDirName = "OUTPUT"

var generateBackend string
var generateGraph bool

var generateCmd = &cobra.Command{
	Use:   "generate [--backend ninja|make] [--graph]",
	Args:  cobra.NoArgs,
	Short: "Generates the backend build file from the build description",
	Long: `Generates the backend build file from the build description.
The build description is loaded from the project's build file, validated,
and written as a ninja file or Makefile into the '` + outputDirName + `' directory.`,
	Run: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateBackend, "backend", "b", "", "Backend build file to generate (ninja or make)")
	generateCmd.Flags().BoolVarP(&generateGraph, "graph", "g", false, "Also write the dependency graph in dot format")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) {
	g, proj := loadGraph()

	backend := generateBackend
	if backend == "" {
		backend = proj.Backend
	}
	if backend == "" {
		backend = config.GetConfig().DefaultBackend
	}

	buffer := bytes.Buffer{}
	fileName := ""
	var err error
	switch backend {
	case "ninja":
		fileName = ninja.FileName
		err = ninja.Write(&buffer, g)
	case "make":
		fileName = makebackend.FileName
		err = makebackend.Write(&buffer, g)
	default:
		log.Fatal("Unknown backend '%s'. Supported backends are 'ninja' and 'make'.\n", backend)
	}
	if err != nil {
		log.Fatal("Failed to generate the %s backend file: %s.\n", backend, err)
	}

	filePath := path.Join(g.BuildDir(), fileName)
	if err := util.WriteFile(filePath, buffer.Bytes()); err != nil {
		log.Fatal("Failed to write '%s': %s.\n", filePath, err)
	}
	log.Debug("Wrote '%s'.\n", filePath)

	if generateGraph || config.GetConfig().AlwaysGraph {
		graphBuffer := bytes.Buffer{}
		if err := dot.Write(&graphBuffer, g); err != nil {
			log.Fatal("Failed to generate the dependency graph: %s.\n", err)
		}
		graphPath := path.Join(g.BuildDir(), dot.FileName)
		if err := util.WriteFile(graphPath, graphBuffer.Bytes()); err != nil {
			log.Fatal("Failed to write '%s': %s.\n", graphPath, err)
		}
		log.Debug("Wrote '%s'.\n", graphPath)
	}

	log.Success("Generated %s for %d steps and %d targets.\n", fileName, g.NumSteps(), g.NumTargets())
}

// loadGraph locates the project root, loads the project description and
// registers all declarations of the build description in a fresh graph.
func loadGraph() (*graph.Graph, project.Project) {
	projectRoot, err := util.GetProjectRoot()
	if err != nil {
		log.Fatal("Failed to find the project root: %s.\n", err)
	}

	proj, err := project.Load(projectRoot)
	if err != nil {
		log.Fatal("Failed to load the project description: %s.\n", err)
	}

	g := graph.New(projectRoot, path.Join(projectRoot, outputDirName))
	buildFilePath := path.Join(projectRoot, proj.BuildFile)
	if !util.FileExists(buildFilePath) {
		log.Fatal("Project '%s' has no build description at '%s'.\n", proj.Name, buildFilePath)
	}
	if err := buildfile.Load(buildFilePath, g); err != nil {
		log.Fatal("Invalid build description: %s.\n", err)
	}

	return g, proj
}
