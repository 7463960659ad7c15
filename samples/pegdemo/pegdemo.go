// Package pegdemo is the fourth sample grammar (component F): a
// self-hosting demonstration that TPEG grammar source describing a small
// PEG, when run through the meta-grammar parser (component D) and then the
// generator (component E), produces Go source that itself builds the same
// parser from package combinator. It exercises the full
// "grammar text -> AST -> generated source" pipeline described in the
// system overview, rather than hand-writing combinators the way the other
// three samples do.
package pegdemo

import (
	"github.com/tpeg-lang/tpeg/ast"
	"github.com/tpeg-lang/tpeg/astgen"
	"github.com/tpeg-lang/tpeg/metaparser"
)

// Source is a small TPEG grammar describing parenthesized, comma-separated
// lists of identifiers and numbers, e.g. "(a,1,(b,2))" (the grammar has no
// whitespace rule, so no spaces are allowed). It is deliberately
// self-referential (list can contain list) to demonstrate that the
// generator's function-per-rule output supports recursive rules without
// any special casing.
const Source = `grammar PegDemo {
	@version: "1.0"

	list    = "(" ( item ("," item)* )? ")"
	item    = list / number / identifier
	number  = [0-9]+
	identifier = [A-Za-z_][A-Za-z0-9_]*
}`

// Parse runs the meta-grammar parser (component D) over Source, returning
// the resulting AST.
func Parse() (*ast.Grammar, error) {
	return metaparser.ParseGrammar(Source)
}

// Generate runs the parser generator (component E) over Source's AST,
// returning the generated Go source text.
func Generate(cfg astgen.Config) (*astgen.Result, error) {
	grammar, err := Parse()
	if err != nil {
		return nil, err
	}
	return astgen.Generate(grammar, cfg)
}
