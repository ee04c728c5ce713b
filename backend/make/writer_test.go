package make

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stoneforge/bgen/graph"
)

func TestWrite(t *testing.T) {
	g := graph.New("/src", "/build")

	refs, err := g.AddStep(graph.StepDecl{
		Outs:  []graph.OutPath{g.BuildPath("hello.cpp")},
		Cmd:   []graph.Token{graph.Lit("generator"), graph.Lit("hello"), graph.Outputs()},
		Descr: "GEN hello.cpp",
	})
	require.NoError(t, err)
	_, err = g.AddExecutable(graph.TargetDecl{
		Name:  "hello",
		Files: append(refs, graph.LiteralFile(g.SourcePath("main.cpp"))),
	})
	require.NoError(t, err)

	buffer := bytes.Buffer{}
	require.NoError(t, Write(&buffer, g))
	out := buffer.String()

	assert.Contains(t, out, ".PHONY: all hello\n")
	assert.Contains(t, out, "all: hello\n")
	assert.Contains(t, out, "# GEN hello.cpp\n")
	assert.Contains(t, out, "/build/hello.cpp: \n\tgenerator hello /build/hello.cpp\n")
	assert.Contains(t, out, "hello: /build/hello.cpp /src/main.cpp\n")
}

func TestWriteHangsExtraOutputsOffTheFirst(t *testing.T) {
	g := graph.New("/src", "/build")

	_, err := g.AddStep(graph.StepDecl{
		Outs: []graph.OutPath{g.BuildPath("goodbye.hpp"), g.BuildPath("goodbye.cpp")},
		Cmd:  []graph.Token{graph.Lit("generator"), graph.Lit("goodbye"), graph.Outputs()},
	})
	require.NoError(t, err)

	buffer := bytes.Buffer{}
	require.NoError(t, Write(&buffer, g))
	out := buffer.String()

	assert.Contains(t, out, "/build/goodbye.hpp: \n\tgenerator goodbye /build/goodbye.hpp /build/goodbye.cpp\n")
	assert.Contains(t, out, "/build/goodbye.cpp: /build/goodbye.hpp\n")
}

func TestWriteEscapesSpecialCharacters(t *testing.T) {
	g := graph.New("/src dir", "/build dir")

	_, err := g.AddStep(graph.StepDecl{
		Outs: []graph.OutPath{g.BuildPath("gen$1.cpp")},
		Cmd:  []graph.Token{graph.Lit("generator"), graph.Outputs()},
	})
	require.NoError(t, err)

	buffer := bytes.Buffer{}
	require.NoError(t, Write(&buffer, g))
	out := buffer.String()

	assert.Contains(t, out, "/build\\ dir/gen$$1.cpp: \n")
	assert.Contains(t, out, "\tgenerator \"/build dir/gen$$1.cpp\"\n")
}
