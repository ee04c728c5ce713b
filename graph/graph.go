// Package graph models a declarative build graph: build steps producing
// named output files, and targets composed from literal files and step
// outputs. The graph only records declarations; executing the commands is
// left to the backend build engine consuming the emitted build files.
package graph

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/stoneforge/bgen/util"
)

// Graph owns all build step and target declarations of one project.
// Steps and targets are addressed through handles into the graph and are
// immutable once registered.
type Graph struct {
	sourceDir string
	buildDir  string

	steps   []*step
	targets []*target

	// producers maps the absolute path of every declared output to the
	// step producing it and the output's position in the declaration.
	producers map[string]FileRef

	targetNames map[string]TargetID
}

// New creates an empty build graph resolving source paths against
// `sourceDir` and output paths against `buildDir`.
func New(sourceDir, buildDir string) *Graph {
	return &Graph{
		sourceDir:   sourceDir,
		buildDir:    buildDir,
		producers:   map[string]FileRef{},
		targetNames: map[string]TargetID{},
	}
}

// SourceDir returns the source directory of the graph.
func (g *Graph) SourceDir() string {
	return g.sourceDir
}

// BuildDir returns the build directory of the graph.
func (g *Graph) BuildDir() string {
	return g.buildDir
}

// AddStep registers a build step and returns one addressable reference per
// declared output, in declaration order.
//
// The declaration is rejected when it declares no outputs, when a
// placeholder in the command cannot resolve against the declared outputs,
// or when an output is already produced by another step.
func (g *Graph) AddStep(decl StepDecl) ([]FileRef, error) {
	if len(decl.Outs) == 0 {
		return nil, eris.Errorf("build step (%s) declares no outputs", Tokens(decl.Cmd))
	}

	for _, tok := range decl.Cmd {
		if tok.kind == tokenOutputAt && (tok.index < 0 || tok.index >= len(decl.Outs)) {
			return nil, eris.Errorf("build step producing %q uses output placeholder %d, but only %d outputs are declared",
				decl.Outs[0].Relative(), tok.index, len(decl.Outs))
		}
	}

	id := StepID(len(g.steps))

	seen := map[string]bool{}
	refs := make([]FileRef, 0, len(decl.Outs))
	for i, out := range decl.Outs {
		abs := out.Absolute()
		if seen[abs] {
			return nil, eris.Errorf("build step declares output %q twice", out.Relative())
		}
		seen[abs] = true
		if prev, ok := g.producers[abs]; ok {
			prevOut := g.steps[prev.step].outs[prev.index]
			return nil, eris.Errorf("output %q is already produced by another build step", prevOut.Relative())
		}
		refs = append(refs, FileRef{step: id, index: i, output: true})
	}

	ins := append([]Path(nil), decl.Ins...)
	for _, tok := range decl.Cmd {
		if tok.kind == tokenInput {
			ins = append(ins, tok.input)
		}
	}

	// Copy the declaration slices so that later changes by the caller
	// cannot corrupt the registered step.
	s := &step{
		id:    id,
		outs:  append([]OutPath(nil), decl.Outs...),
		ins:   ins,
		cmd:   append([]Token(nil), decl.Cmd...),
		descr: decl.Descr,
	}
	g.steps = append(g.steps, s)
	for _, ref := range refs {
		g.producers[s.outs[ref.index].Absolute()] = ref
	}

	return refs, nil
}

// AddExecutable registers an executable target depending on all referenced
// files' producing steps. A reference to an output that was never declared
// is rejected.
func (g *Graph) AddExecutable(decl TargetDecl) (TargetID, error) {
	if decl.Name == "" {
		return 0, eris.New("target declares no name")
	}
	if _, ok := g.targetNames[decl.Name]; ok {
		return 0, eris.Errorf("target %q is declared twice", decl.Name)
	}
	if len(decl.Files) == 0 {
		return 0, eris.Errorf("target %q declares no files", decl.Name)
	}

	files := make([]Path, 0, len(decl.Files))
	depSet := map[StepID]bool{}
	for _, ref := range decl.Files {
		p, err := g.RefPath(ref)
		if err != nil {
			return 0, eris.Wrapf(err, "invalid file reference in target %q", decl.Name)
		}
		files = append(files, p)

		if ref.output {
			depSet[ref.step] = true
		} else if prod, ok := g.producers[p.Absolute()]; ok {
			// A literal path naming a declared output still orders the
			// target after the producing step.
			depSet[prod.step] = true
		}
	}

	deps := util.OrderedKeys(depSet)

	id := TargetID(len(g.targets))
	g.targets = append(g.targets, &target{
		id:       id,
		name:     decl.Name,
		files:    files,
		includes: append([]Path(nil), decl.Includes...),
		descr:    decl.Descr,
		deps:     deps,
	})
	g.targetNames[decl.Name] = id

	return id, nil
}

// FindOutput looks up the step output with the given build-relative path.
func (g *Graph) FindOutput(rel string) (FileRef, bool) {
	ref, ok := g.producers[g.BuildPath(rel).Absolute()]
	return ref, ok
}

// RefPath resolves a file reference to its path.
func (g *Graph) RefPath(ref FileRef) (Path, error) {
	if !ref.output {
		if ref.literal == nil {
			return nil, eris.New("empty file reference")
		}
		return ref.literal, nil
	}
	if int(ref.step) < 0 || int(ref.step) >= len(g.steps) {
		return nil, eris.Errorf("reference to output of undeclared build step %d", ref.step)
	}
	s := g.steps[ref.step]
	if ref.index < 0 || ref.index >= len(s.outs) {
		return nil, eris.Errorf("reference to output %d of a build step declaring only %d outputs", ref.index, len(s.outs))
	}
	return s.outs[ref.index], nil
}

// CommandLine resolves the command of a step to concrete argv strings.
// The shared output placeholder expands to all declared outputs, in
// declaration order, one argv entry per output.
func (g *Graph) CommandLine(id StepID) ([]string, error) {
	if int(id) < 0 || int(id) >= len(g.steps) {
		return nil, eris.Errorf("undeclared build step %d", id)
	}
	s := g.steps[id]

	argv := []string{}
	for _, tok := range s.cmd {
		switch tok.kind {
		case tokenLiteral:
			argv = append(argv, tok.lit)
		case tokenInput:
			argv = append(argv, tok.input.Absolute())
		case tokenOutputs:
			for _, out := range s.outs {
				argv = append(argv, out.Absolute())
			}
		case tokenOutputAt:
			if tok.index < 0 || tok.index >= len(s.outs) {
				return nil, eris.Errorf("output placeholder %d out of range in build step producing %q", tok.index, s.outs[0].Relative())
			}
			argv = append(argv, s.outs[tok.index].Absolute())
		}
	}
	return argv, nil
}

// NumSteps returns the number of registered build steps.
func (g *Graph) NumSteps() int {
	return len(g.steps)
}

// NumTargets returns the number of registered targets.
func (g *Graph) NumTargets() int {
	return len(g.targets)
}

// Steps returns read-only views of all registered steps, in registration order.
func (g *Graph) Steps() []StepInfo {
	infos := make([]StepInfo, 0, len(g.steps))
	for _, s := range g.steps {
		infos = append(infos, g.stepInfo(s))
	}
	return infos
}

// Step returns a read-only view of one registered step.
func (g *Graph) Step(id StepID) (StepInfo, error) {
	if int(id) < 0 || int(id) >= len(g.steps) {
		return StepInfo{}, eris.Errorf("undeclared build step %d", id)
	}
	return g.stepInfo(g.steps[id]), nil
}

func (g *Graph) stepInfo(s *step) StepInfo {
	return StepInfo{
		ID:    s.id,
		Outs:  append([]OutPath(nil), s.outs...),
		Ins:   append([]Path(nil), s.ins...),
		Descr: s.descr,
	}
}

// Targets returns read-only views of all registered targets, in registration order.
func (g *Graph) Targets() []TargetInfo {
	infos := make([]TargetInfo, 0, len(g.targets))
	for _, t := range g.targets {
		infos = append(infos, TargetInfo{
			ID:       t.id,
			Name:     t.name,
			Files:    append([]Path(nil), t.files...),
			Includes: append([]Path(nil), t.includes...),
			Descr:    t.descr,
			Deps:     append([]StepID(nil), t.deps...),
		})
	}
	return infos
}

// Target looks up a registered target by name.
func (g *Graph) Target(name string) (TargetInfo, bool) {
	id, ok := g.targetNames[name]
	if !ok {
		return TargetInfo{}, false
	}
	return g.Targets()[id], true
}

// StepsFor returns the steps producing the target's files, in ascending
// StepID order and without duplicates.
func (g *Graph) StepsFor(id TargetID) ([]StepID, error) {
	if int(id) < 0 || int(id) >= len(g.targets) {
		return nil, eris.Errorf("undeclared target %d", id)
	}
	return append([]StepID(nil), g.targets[id].deps...), nil
}

// stepDeps returns the steps producing any input of `s`, without duplicates.
func (g *Graph) stepDeps(s *step) []StepID {
	depSet := map[StepID]bool{}
	for _, in := range s.ins {
		if prod, ok := g.producers[in.Absolute()]; ok && prod.step != s.id {
			depSet[prod.step] = true
		}
	}
	return util.OrderedKeys(depSet)
}

// SortedSteps returns all steps in dependency order: a step appears only
// after every step producing one of its inputs. The order is deterministic.
// A dependency cycle is reported as an error naming the steps involved.
func (g *Graph) SortedSteps() ([]StepInfo, error) {
	indegree := make([]int, len(g.steps))
	dependants := map[StepID][]StepID{}
	for _, s := range g.steps {
		deps := g.stepDeps(s)
		indegree[s.id] = len(deps)
		for _, dep := range deps {
			dependants[dep] = append(dependants[dep], s.id)
		}
	}

	ready := []StepID{}
	for _, s := range g.steps {
		if indegree[s.id] == 0 {
			ready = append(ready, s.id)
		}
	}

	sorted := []StepInfo{}
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })
		next := ready[0]
		ready = ready[1:]

		sorted = append(sorted, g.stepInfo(g.steps[next]))
		for _, dependant := range dependants[next] {
			indegree[dependant]--
			if indegree[dependant] == 0 {
				ready = append(ready, dependant)
			}
		}
	}

	if len(sorted) != len(g.steps) {
		remaining := []string{}
		for _, s := range g.steps {
			if indegree[s.id] > 0 {
				remaining = append(remaining, s.outs[0].Relative())
			}
		}
		return nil, eris.Errorf("dependency cycle between build steps producing: %s",
			util.OrderedSlice(remaining))
	}

	return sorted, nil
}
