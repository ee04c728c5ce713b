package graph

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokenLiteral tokenKind = iota
	tokenInput
	tokenOutputs
	tokenOutputAt
)

// Token is a single element of a build step command line.
//
// Placeholder tokens (Outputs, OutputAt) are late-bound: they are symbolic
// until the owning step is registered and resolve against the step's declared
// outputs only then. This keeps a command valid no matter in which order the
// outputs and the command are assembled.
type Token struct {
	kind  tokenKind
	lit   string
	index int
	input Path
}

// Lit creates a token holding a verbatim command line string.
func Lit(s string) Token {
	return Token{kind: tokenLiteral, lit: s}
}

// Input creates a token referring to an input file. The file becomes a
// dependency of the step using the token.
func Input(p Path) Token {
	return Token{kind: tokenInput, input: p}
}

// Outputs creates the shared output placeholder. It expands to all declared
// outputs of the owning step, in declaration order.
func Outputs() Token {
	return Token{kind: tokenOutputs}
}

// OutputAt creates a placeholder for the i-th declared output of the owning step.
func OutputAt(i int) Token {
	return Token{kind: tokenOutputAt, index: i}
}

func (t Token) String() string {
	switch t.kind {
	case tokenLiteral:
		return t.lit
	case tokenInput:
		return t.input.Absolute()
	case tokenOutputs:
		return "$outs"
	case tokenOutputAt:
		return fmt.Sprintf("$out[%d]", t.index)
	}
	return "<invalid token>"
}

// Tokens is a list of command line tokens.
type Tokens []Token

func (ts Tokens) String() string {
	parts := []string{}
	for _, t := range ts {
		parts = append(parts, t.String())
	}
	return strings.Join(parts, " ")
}
