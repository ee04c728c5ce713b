// Package buildfile loads declarative build descriptions from HCL files
// and registers the declared steps and targets in a build graph.
//
// A build description consists of `var`, `step` and `executable` blocks:
//
//	var "generator" {
//	  value = "generator.py"
//	}
//
//	step "hello" {
//	  outs  = ["hello.cpp"]
//	  cmd   = [var.generator, "hello", "$outs"]
//	  descr = "GEN hello.cpp"
//	}
//
//	executable "hello" {
//	  files = ["hello.cpp"]
//	}
//
// In a command, the token `$outs` stands for all outputs of the declaring
// step and `$out[i]` for a single one. A token or file entry naming an
// output of an earlier step refers to that output; a `^`-prefixed file
// entry requires one and fails when no step declares it.
package buildfile

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/gobwas/glob"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rotisserie/eris"
	"github.com/zclconf/go-cty/cty"

	"github.com/stoneforge/bgen/graph"
	"github.com/stoneforge/bgen/util"
)

// DefaultFileName is the conventional name of a build description file.
const DefaultFileName = "BUILD.hcl"

// OutputsPlaceholder is the command token standing for all outputs of the
// declaring step.
const OutputsPlaceholder = "$outs"

var outputAtPattern = regexp.MustCompile(`^\$out\[(\d+)\]$`)

type varBlock struct {
	Name  string         `hcl:"name,label"`
	Value hcl.Expression `hcl:"value"`
}

type stepBlock struct {
	Name  string         `hcl:"name,label"`
	Outs  hcl.Expression `hcl:"outs"`
	Cmd   hcl.Expression `hcl:"cmd"`
	Descr string         `hcl:"descr,optional"`
}

type execBlock struct {
	Name     string         `hcl:"name,label"`
	Files    hcl.Expression `hcl:"files"`
	Includes hcl.Expression `hcl:"includes,optional"`
	Descr    string         `hcl:"descr,optional"`
}

type buildFile struct {
	Vars  []varBlock  `hcl:"var,block"`
	Steps []stepBlock `hcl:"step,block"`
	Execs []execBlock `hcl:"executable,block"`
}

type varsOnly struct {
	Vars   []varBlock `hcl:"var,block"`
	Remain hcl.Body   `hcl:",remain"`
}

// Load parses the build description at `filePath` and registers all
// declarations in `g`, in file order.
func Load(filePath string, g *graph.Graph) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return eris.Errorf("failed to parse build description %s: %s", filePath, diags)
	}

	evalCtx, err := evalContext(file.Body)
	if err != nil {
		return eris.Wrapf(err, "in build description %s", filePath)
	}

	var parsed buildFile
	if diags := gohcl.DecodeBody(file.Body, evalCtx, &parsed); diags.HasErrors() {
		return eris.Errorf("failed to decode build description %s: %s", filePath, diags)
	}

	for _, block := range parsed.Steps {
		if err := addStep(g, evalCtx, block); err != nil {
			return eris.Wrapf(err, "invalid step %q in %s", block.Name, filePath)
		}
	}
	for _, block := range parsed.Execs {
		if err := addExecutable(g, evalCtx, block); err != nil {
			return eris.Wrapf(err, "invalid executable %q in %s", block.Name, filePath)
		}
	}

	return nil
}

// evalContext evaluates the `var` blocks, in declaration order, so that
// later variables can refer to earlier ones.
func evalContext(body hcl.Body) (*hcl.EvalContext, error) {
	var vars varsOnly
	if diags := gohcl.DecodeBody(body, nil, &vars); diags.HasErrors() {
		return nil, eris.Errorf("failed to decode var blocks: %s", diags)
	}

	values := map[string]cty.Value{}
	ctx := &hcl.EvalContext{Variables: map[string]cty.Value{}}
	for _, block := range vars.Vars {
		ctx.Variables["var"] = cty.ObjectVal(values)
		value, diags := block.Value.Value(ctx)
		if diags.HasErrors() {
			return nil, eris.Errorf("failed to evaluate var %q: %s", block.Name, diags)
		}
		if !value.Type().Equals(cty.String) {
			return nil, eris.Errorf("var %q is not a string", block.Name)
		}
		values[block.Name] = value
	}
	ctx.Variables["var"] = cty.ObjectVal(values)

	return ctx, nil
}

func addStep(g *graph.Graph, ctx *hcl.EvalContext, block stepBlock) error {
	outs, err := stringList(ctx, block.Outs)
	if err != nil {
		return eris.Wrap(err, "outs")
	}
	cmd, err := stringList(ctx, block.Cmd)
	if err != nil {
		return eris.Wrap(err, "cmd")
	}

	outPaths := util.MappedSlice(outs, func(rel string) graph.OutPath { return g.BuildPath(rel) })

	tokens := make([]graph.Token, 0, len(cmd))
	for _, tok := range cmd {
		tokens = append(tokens, commandToken(g, tok))
	}

	_, err = g.AddStep(graph.StepDecl{
		Outs:  outPaths,
		Cmd:   tokens,
		Descr: block.Descr,
	})
	return err
}

// commandToken classifies one command token: a placeholder, a reference to
// an earlier step's output, an existing source file, or a verbatim string.
func commandToken(g *graph.Graph, tok string) graph.Token {
	if tok == OutputsPlaceholder {
		return graph.Outputs()
	}
	if match := outputAtPattern.FindStringSubmatch(tok); match != nil {
		index, _ := strconv.Atoi(match[1])
		return graph.OutputAt(index)
	}
	if ref, ok := g.FindOutput(tok); ok {
		if p, err := g.RefPath(ref); err == nil {
			return graph.Input(p)
		}
	}
	if util.FileExists(filepath.Join(g.SourceDir(), tok)) {
		return graph.Input(g.SourcePath(tok))
	}
	return graph.Lit(tok)
}

func addExecutable(g *graph.Graph, ctx *hcl.EvalContext, block execBlock) error {
	files, err := stringList(ctx, block.Files)
	if err != nil {
		return eris.Wrap(err, "files")
	}
	includes, err := stringList(ctx, block.Includes)
	if err != nil {
		return eris.Wrap(err, "includes")
	}

	refs := []graph.FileRef{}
	for _, entry := range files {
		entryRefs, err := fileRefs(g, entry)
		if err != nil {
			return err
		}
		refs = append(refs, entryRefs...)
	}

	includePaths := util.MappedSlice(includes, func(entry string) graph.Path {
		if ref, ok := g.FindOutput(entry); ok {
			if p, err := g.RefPath(ref); err == nil {
				return p
			}
		}
		return g.SourcePath(entry)
	})

	_, err = g.AddExecutable(graph.TargetDecl{
		Name:     block.Name,
		Files:    refs,
		Includes: includePaths,
		Descr:    block.Descr,
	})
	return err
}

// fileRefs resolves one `files` entry to file references. An entry names a
// declared step output, a glob over the source tree, or a literal source
// file; a `^`-prefix restricts resolution to declared outputs.
func fileRefs(g *graph.Graph, entry string) ([]graph.FileRef, error) {
	if strings.HasPrefix(entry, "^") {
		rel := strings.TrimPrefix(entry, "^")
		ref, ok := g.FindOutput(rel)
		if !ok {
			return nil, eris.Errorf("file %q does not name an output of any declared build step", rel)
		}
		return []graph.FileRef{ref}, nil
	}

	if ref, ok := g.FindOutput(entry); ok {
		return []graph.FileRef{ref}, nil
	}

	if strings.ContainsAny(entry, "*?[{") {
		matches, err := expandGlob(g.SourceDir(), entry)
		if err != nil {
			return nil, err
		}
		return util.MappedSlice(matches, func(rel string) graph.FileRef {
			return graph.LiteralFile(g.SourcePath(rel))
		}), nil
	}

	return []graph.FileRef{graph.LiteralFile(g.SourcePath(entry))}, nil
}

// expandGlob matches the pattern against all files under the source
// directory, returning source-relative paths in walk order.
func expandGlob(sourceDir, pattern string) ([]string, error) {
	matcher, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, eris.Wrapf(err, "invalid file pattern %q", pattern)
	}

	matches := []string{}
	err = filepath.Walk(sourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if matcher.Match(rel) {
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "failed to expand file pattern %q", pattern)
	}
	return matches, nil
}

// stringList evaluates an expression to a list of strings. A nil
// expression yields an empty list.
func stringList(ctx *hcl.EvalContext, expr hcl.Expression) ([]string, error) {
	if expr == nil {
		return nil, nil
	}

	value, diags := expr.Value(ctx)
	if diags.HasErrors() {
		return nil, eris.Errorf("%s", diags)
	}
	if value.IsNull() {
		return nil, nil
	}
	if !value.CanIterateElements() {
		return nil, eris.New("expected a list of strings")
	}

	result := []string{}
	for it := value.ElementIterator(); it.Next(); {
		_, element := it.Element()
		if !element.Type().Equals(cty.String) {
			return nil, eris.New("expected a list of strings")
		}
		result = append(result, element.AsString())
	}
	return result, nil
}
