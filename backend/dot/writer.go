// Package dot emits a build graph in graphviz dot format.
package dot

import (
	"fmt"
	"io"

	"github.com/stoneforge/bgen/graph"
)

// FileName is the name of the emitted dot file.
const FileName = "graph.dot"

// Write emits the dependency graph: box nodes for build steps (labelled by
// their first output), oval nodes for targets, edges along the declared
// partial order.
func Write(w io.Writer, g *graph.Graph) error {
	steps, err := g.SortedSteps()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "digraph build {\n")
	fmt.Fprintf(w, "  rankdir=\"LR\";\n\n")

	outputs := map[string]graph.StepID{}
	for _, step := range steps {
		fmt.Fprintf(w, "  \"step%d\" [shape=box, label=%q];\n", step.ID, step.Outs[0].Relative())
		for _, out := range step.Outs {
			outputs[out.Absolute()] = step.ID
		}
	}
	for _, target := range g.Targets() {
		fmt.Fprintf(w, "  \"target:%s\" [shape=oval, label=%q];\n", target.Name, target.Name)
	}
	fmt.Fprint(w, "\n")

	for _, step := range steps {
		seen := map[graph.StepID]bool{}
		for _, in := range step.Ins {
			if dep, ok := outputs[in.Absolute()]; ok && dep != step.ID && !seen[dep] {
				seen[dep] = true
				fmt.Fprintf(w, "  \"step%d\" -> \"step%d\";\n", dep, step.ID)
			}
		}
	}
	for _, target := range g.Targets() {
		for _, dep := range target.Deps {
			fmt.Fprintf(w, "  \"step%d\" -> \"target:%s\";\n", dep, target.Name)
		}
	}

	fmt.Fprintf(w, "}\n")
	return nil
}
