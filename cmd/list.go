package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Args:  cobra.NoArgs,
	Short: "Lists all targets",
	Long:  `Lists all targets declared in the build description.`,
	Run:   runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) {
	g, _ := loadGraph()
	for _, target := range g.Targets() {
		if target.Descr != "" {
			fmt.Printf("//%s  (%s)\n", target.Name, target.Descr)
		} else {
			fmt.Printf("//%s\n", target.Name)
		}
	}
}
