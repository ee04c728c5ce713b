package graph

// TargetDecl declares a named build target (e.g., an executable) composed
// from literal files and build step outputs.
type TargetDecl struct {
	Name     string
	Files    []FileRef
	Includes []Path
	Descr    string
}

// TargetID is a handle to a target registered in a Graph.
type TargetID int

type target struct {
	id       TargetID
	name     string
	files    []Path
	includes []Path
	descr    string
	deps     []StepID
}

// TargetInfo is a read-only view of a registered target.
type TargetInfo struct {
	ID       TargetID
	Name     string
	Files    []Path
	Includes []Path
	Descr    string

	// Deps lists the steps producing the target's files, in ascending
	// StepID order and without duplicates.
	Deps []StepID
}
