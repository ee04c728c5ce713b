package graph

import (
	"fmt"
	"path"
	"strings"
)

// Path represents an on-disk path that is either an input to or an output
// from a build step (or both).
type Path interface {
	Absolute() string
	Relative() string
	String() string
}

// OutPath is a path relative to the project build directory. Only OutPaths
// may be declared as build step outputs.
type OutPath interface {
	Path
	WithExt(ext string) OutPath
	WithSuffix(suffix string) OutPath
	forceOutPath()
}

// inPath is a path relative to the project source directory.
type inPath struct {
	root string
	rel  string
}

// Absolute returns the absolute path.
func (p inPath) Absolute() string {
	return path.Join(p.root, p.rel)
}

// Relative returns the path relative to the project source directory.
func (p inPath) Relative() string {
	return p.rel
}

// String representation of an inPath is its absolute path.
func (p inPath) String() string {
	return p.Absolute()
}

type outPath struct {
	root string
	rel  string
}

// Absolute returns the absolute path.
func (p outPath) Absolute() string {
	return path.Join(p.root, p.rel)
}

// Relative returns the path relative to the project build directory.
func (p outPath) Relative() string {
	return p.rel
}

// WithExt creates an OutPath with the same relative path and the given extension.
func (p outPath) WithExt(ext string) OutPath {
	oldExt := path.Ext(p.rel)
	newRel := fmt.Sprintf("%s.%s", strings.TrimSuffix(p.rel, oldExt), ext)
	return outPath{p.root, newRel}
}

// WithSuffix creates an OutPath with the same relative path and the given suffix.
func (p outPath) WithSuffix(suffix string) OutPath {
	return outPath{p.root, p.rel + suffix}
}

// String representation of an OutPath is its absolute path.
func (p outPath) String() string {
	return p.Absolute()
}

// forceOutPath makes sure that inPath or Path cannot be used as OutPath.
func (p outPath) forceOutPath() {}

// SourcePath returns a path relative to the source directory of the graph.
func (g *Graph) SourcePath(rel string) Path {
	return inPath{g.sourceDir, rel}
}

// BuildPath returns a path relative to the build directory of the graph.
func (g *Graph) BuildPath(rel string) OutPath {
	return outPath{g.buildDir, rel}
}
