// Package tpegerr defines the error kinds raised across the TPEG toolchain,
// each carrying a position and a human-readable detail.
package tpegerr

import (
	"fmt"
	"strings"

	"github.com/tpeg-lang/tpeg/position"
)

// Kind identifies the category of diagnostic a parse or generation error
// belongs to.
type Kind string

const (
	UnexpectedInput      Kind = "UnexpectedInput"
	UnexpectedEndOfInput Kind = "UnexpectedEndOfInput"
	InvalidEscape        Kind = "InvalidEscape"
	UnclosedConstruct    Kind = "UnclosedConstruct"
	InvalidQuantifier    Kind = "InvalidQuantifier"
	DuplicateRule        Kind = "DuplicateRule"
	InvalidConstruction  Kind = "InvalidConstruction"
	UnresolvedReference  Kind = "UnresolvedReference"
	RecursionLimit       Kind = "RecursionLimit"
	InvalidConfiguration Kind = "InvalidConfiguration"
)

// ParseError is raised by the meta-grammar parser (and, via the same shape,
// by AST factories).
type ParseError struct {
	Kind   Kind
	Pos    position.Position
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%v: %v", e.Pos, e.Kind)
	}
	return fmt.Sprintf("%v: %v: %v", e.Pos, e.Kind, e.Detail)
}

// ParseErrors aggregates every ParseError collected while parsing a single
// grammar. The deepest-position error is reported first.
type ParseErrors []*ParseError

func (es ParseErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// GeneratorError is raised by the parser generator (component E).
type GeneratorError struct {
	Kind   Kind
	Detail string
}

func (e *GeneratorError) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Detail)
}
