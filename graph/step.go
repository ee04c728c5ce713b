package graph

// StepDecl declares one build step (i.e., one build command).
// The step produces `Outs` from `Ins` by running `Cmd`.
type StepDecl struct {
	Outs  []OutPath
	Ins   []Path
	Cmd   []Token
	Descr string
}

// StepID is a handle to a build step registered in a Graph.
type StepID int

// step is a registered build step. Steps are immutable after registration.
type step struct {
	id    StepID
	outs  []OutPath
	ins   []Path
	cmd   []Token
	descr string
}

// StepInfo is a read-only view of a registered build step.
type StepInfo struct {
	ID    StepID
	Outs  []OutPath
	Ins   []Path
	Descr string
}

// FileRef is an addressable reference to a file consumed by a target:
// either one declared output of a registered build step, or a literal path.
type FileRef struct {
	step    StepID
	index   int
	literal Path
	output  bool
}

// LiteralFile creates a FileRef for a literal path that is not produced by
// any build step.
func LiteralFile(p Path) FileRef {
	return FileRef{literal: p}
}

// IsOutput reports whether the reference points to a build step output.
func (r FileRef) IsOutput() bool {
	return r.output
}
