// Package make emits a build graph as a Makefile.
package make

import (
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/stoneforge/bgen/graph"
	"github.com/stoneforge/bgen/util"
)

// FileName is the name of the emitted Makefile.
const FileName = "Makefile"

// Write emits the graph as a Makefile. Every step becomes one rule; a step
// with several outputs hangs the additional outputs off the first one, so
// that the recipe runs once even under parallel make.
func Write(w io.Writer, g *graph.Graph) error {
	steps, err := g.SortedSteps()
	if err != nil {
		return err
	}

	targets := g.Targets()
	names := util.MappedSlice(targets, func(t graph.TargetInfo) string { return t.Name })

	fmt.Fprintf(w, ".PHONY: all %s\n\n", strings.Join(names, " "))
	fmt.Fprintf(w, "all: %s\n\n", strings.Join(names, " "))

	for _, step := range steps {
		argv, err := g.CommandLine(step.ID)
		if err != nil {
			return eris.Wrap(err, "cannot emit make rule")
		}

		outs := util.MappedSlice(step.Outs, func(p graph.OutPath) string { return makeEscape(p.Absolute()) })
		ins := util.MappedSlice(step.Ins, func(p graph.Path) string { return makeEscape(p.Absolute()) })

		if step.Descr != "" {
			fmt.Fprintf(w, "# %s\n", step.Descr)
		}
		fmt.Fprintf(w, "%s: %s\n", outs[0], strings.Join(ins, " "))
		fmt.Fprintf(w, "\t%s\n", shellCommand(argv))
		if len(outs) > 1 {
			fmt.Fprintf(w, "%s: %s\n", strings.Join(outs[1:], " "), outs[0])
		}
		fmt.Fprint(w, "\n")
	}

	for _, target := range targets {
		files := util.MappedSlice(target.Files, func(p graph.Path) string { return makeEscape(p.Absolute()) })
		fmt.Fprintf(w, "%s: %s\n", target.Name, strings.Join(files, " "))
		fmt.Fprintf(w, "\t@echo \"Created %s\"\n\n", target.Name)
	}

	return nil
}

func makeEscape(s string) string {
	s = strings.ReplaceAll(s, "$", "$$")
	return strings.ReplaceAll(s, " ", "\\ ")
}

// shellCommand renders argv as a single recipe line, quoting tokens that
// need it. A literal `$` is doubled so that make passes it through.
func shellCommand(argv []string) string {
	quoted := util.MappedSlice(argv, func(arg string) string {
		if strings.ContainsAny(arg, " \t\"'") {
			arg = fmt.Sprintf("%q", arg)
		}
		return strings.ReplaceAll(arg, "$", "$$")
	})
	return strings.Join(quoted, " ")
}
