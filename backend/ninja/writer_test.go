package ninja

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stoneforge/bgen/graph"
)

func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New("/src", "/build")

	refs, err := g.AddStep(graph.StepDecl{
		Outs:  []graph.OutPath{g.BuildPath("hello.cpp")},
		Cmd:   []graph.Token{graph.Input(g.SourcePath("generator.py")), graph.Lit("hello"), graph.Outputs()},
		Descr: "GEN hello.cpp",
	})
	require.NoError(t, err)

	_, err = g.AddExecutable(graph.TargetDecl{
		Name:  "hello",
		Files: refs,
	})
	require.NoError(t, err)

	return g
}

func TestWrite(t *testing.T) {
	buffer := bytes.Buffer{}
	require.NoError(t, Write(&buffer, testGraph(t)))
	out := buffer.String()

	assert.Contains(t, out, "build __phony__: phony\n")
	assert.Contains(t, out, "rule __rule0\n")
	assert.Contains(t, out, "  command = /src/generator.py hello /build/hello.cpp\n")
	assert.Contains(t, out, "  description = GEN hello.cpp\n")
	assert.Contains(t, out, "build /build/hello.cpp: __rule0 /src/generator.py\n")
	assert.Contains(t, out, "build hello: __target0 /build/hello.cpp __phony__\n")
}

func TestWriteOrdersStepsByDependency(t *testing.T) {
	g := graph.New("/src", "/build")

	// Consumer declared first.
	_, err := g.AddStep(graph.StepDecl{
		Outs: []graph.OutPath{g.BuildPath("gen.o")},
		Ins:  []graph.Path{g.BuildPath("gen.cpp")},
		Cmd:  []graph.Token{graph.Lit("cc"), graph.Lit("-c"), graph.Input(g.BuildPath("gen.cpp"))},
	})
	require.NoError(t, err)
	_, err = g.AddStep(graph.StepDecl{
		Outs: []graph.OutPath{g.BuildPath("gen.cpp")},
		Cmd:  []graph.Token{graph.Lit("generator"), graph.Outputs()},
	})
	require.NoError(t, err)

	buffer := bytes.Buffer{}
	require.NoError(t, Write(&buffer, g))
	out := buffer.String()

	producer := strings.Index(out, "build /build/gen.cpp:")
	consumer := strings.Index(out, "build /build/gen.o:")
	require.NotEqual(t, -1, producer)
	require.NotEqual(t, -1, consumer)
	assert.Less(t, producer, consumer)
}

func TestWriteEscapesSpacesInPaths(t *testing.T) {
	g := graph.New("/src dir", "/build dir")

	_, err := g.AddStep(graph.StepDecl{
		Outs: []graph.OutPath{g.BuildPath("gen.cpp")},
		Cmd:  []graph.Token{graph.Lit("generator"), graph.Outputs()},
	})
	require.NoError(t, err)

	buffer := bytes.Buffer{}
	require.NoError(t, Write(&buffer, g))

	assert.Contains(t, buffer.String(), "build /build$ dir/gen.cpp:")
}

func TestWriteEscapesDollarSigns(t *testing.T) {
	g := graph.New("/src", "/build")

	_, err := g.AddStep(graph.StepDecl{
		Outs: []graph.OutPath{g.BuildPath("gen$1.cpp")},
		Cmd:  []graph.Token{graph.Lit("generator"), graph.Outputs()},
	})
	require.NoError(t, err)

	buffer := bytes.Buffer{}
	require.NoError(t, Write(&buffer, g))
	out := buffer.String()

	assert.Contains(t, out, "build /build/gen$$1.cpp:")
	assert.Contains(t, out, "  command = generator /build/gen$$1.cpp\n")
}

func TestWriteFailsOnCycle(t *testing.T) {
	g := graph.New("/src", "/build")

	_, err := g.AddStep(graph.StepDecl{
		Outs: []graph.OutPath{g.BuildPath("a")},
		Ins:  []graph.Path{g.BuildPath("b")},
		Cmd:  []graph.Token{graph.Lit("gen-a")},
	})
	require.NoError(t, err)
	_, err = g.AddStep(graph.StepDecl{
		Outs: []graph.OutPath{g.BuildPath("b")},
		Ins:  []graph.Path{g.BuildPath("a")},
		Cmd:  []graph.Token{graph.Lit("gen-b")},
	})
	require.NoError(t, err)

	require.Error(t, Write(&bytes.Buffer{}, g))
}
