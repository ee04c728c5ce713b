// Package ninja emits a build graph as a ninja build file.
package ninja

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/stoneforge/bgen/graph"
	"github.com/stoneforge/bgen/util"
)

// FileName is the name of the emitted ninja file.
const FileName = "build.ninja"

// Write emits the graph as a ninja file. Steps are written in dependency
// order, targets as phony-style rules echoing their files, matching what
// the build engine needs to reconstruct the declared partial order.
func Write(w io.Writer, g *graph.Graph) error {
	steps, err := g.SortedSteps()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "build __phony__: phony\n\n")

	fmt.Fprintf(w, "# build rules\n\n")

	for i, step := range steps {
		argv, err := g.CommandLine(step.ID)
		if err != nil {
			return eris.Wrap(err, "cannot emit build rule")
		}

		fmt.Fprintf(w, "rule __rule%d\n", i)
		fmt.Fprintf(w, "  command = %s\n", shellCommand(argv))
		if step.Descr != "" {
			fmt.Fprintf(w, "  description = %s\n", step.Descr)
		}
		fmt.Fprint(w, "\n")
	}

	fmt.Fprintf(w, "# build steps\n\n")

	for i, step := range steps {
		outs := util.MappedSlice(step.Outs, func(p graph.OutPath) string { return ninjaEscape(p.Absolute()) })
		ins := util.MappedSlice(step.Ins, func(p graph.Path) string { return ninjaEscape(p.Absolute()) })
		fmt.Fprintf(w, "build %s: __rule%d %s\n", strings.Join(outs, " "), i, strings.Join(ins, " "))
	}
	fmt.Fprint(w, "\n")

	fmt.Fprintf(w, "# targets\n\n")

	for i, target := range g.Targets() {
		ninjaFiles := util.MappedSlice(target.Files, func(p graph.Path) string { return ninjaEscape(p.Absolute()) })
		printFiles := util.MappedSlice(target.Files, func(p graph.Path) string {
			rel, err := filepath.Rel(g.SourceDir(), p.Absolute())
			if err != nil {
				return p.Absolute()
			}
			return rel
		})

		fmt.Fprintf(w, "rule __target%d\n", i)
		fmt.Fprintf(w, "  command = echo \"%s\"\n", strings.Join(printFiles, "\\n"))
		fmt.Fprintf(w, "  description = Created %s:\n", target.Name)
		fmt.Fprint(w, "\n")
		fmt.Fprintf(w, "build %s: __target%d %s __phony__\n", target.Name, i, strings.Join(ninjaFiles, " "))
		fmt.Fprint(w, "\n")
	}

	return nil
}

func ninjaEscape(s string) string {
	// `$` first: the space escape introduces one itself.
	s = strings.ReplaceAll(s, "$", "$$")
	return strings.ReplaceAll(s, " ", "$ ")
}

// shellCommand renders argv as a single shell command, quoting tokens that
// need it. A literal `$` is doubled so that ninja passes it through.
func shellCommand(argv []string) string {
	quoted := util.MappedSlice(argv, func(arg string) string {
		if strings.ContainsAny(arg, " \t\"'") {
			arg = fmt.Sprintf("%q", arg)
		}
		return strings.ReplaceAll(arg, "$", "$$")
	})
	return strings.Join(quoted, " ")
}
