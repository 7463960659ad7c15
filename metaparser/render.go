package metaparser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tpeg-lang/tpeg/ast"
)

// maxRenderDepth bounds recursion like astgen's translate depth guard, so a
// pathological Expr tree (however it was constructed) cannot overflow the
// stack. Unlike astgen, rendering reports no error: any subtree deeper
// than the limit is written as "<...>".
const maxRenderDepth = 500

// RenderGrammar writes g back out as TPEG grammar source. The result is
// not byte-for-byte the text ParseGrammar originally consumed -- trivia,
// comment placement, and the exact spelling of a fixed-count quantifier
// are not preserved -- but reparsing it with ParseGrammar always yields a
// structurally equal Grammar.
func RenderGrammar(g *ast.Grammar) string {
	var b strings.Builder
	fmt.Fprintf(&b, "grammar %s {\n", g.Name)
	for _, ann := range g.Annotations {
		fmt.Fprintf(&b, "\t@%s: %s\n", ann.Key, encodeStringLiteral(ann.Value, '"'))
	}
	for _, r := range g.Rules {
		fmt.Fprintf(&b, "\t%s = %s\n", r.Name, RenderExpr(r.Pattern))
	}
	b.WriteString("}\n")
	return b.String()
}

// RenderExpr writes e back out as a PEG expression, the inverse of the
// recursive-descent parser in parser.go: each Expr variant is matched by
// type switch, the same style astgen's translator uses for the same sum
// type, and lowered to the one surface syntax that produces it.
func RenderExpr(e ast.Expr) string {
	return renderExpr(e, 0)
}

func renderExpr(e ast.Expr, depth int) string {
	if depth > maxRenderDepth {
		return "<...>"
	}
	switch n := e.(type) {
	case *ast.StringLiteral:
		return encodeStringLiteral(n.Value, n.Quote)

	case *ast.CharacterClass:
		var b strings.Builder
		b.WriteByte('[')
		if n.Negated {
			b.WriteByte('^')
		}
		for _, r := range n.Ranges {
			b.WriteString(encodeClassChar(r.Start))
			if r.HasEnd {
				b.WriteByte('-')
				b.WriteString(encodeClassChar(r.End))
			}
		}
		b.WriteByte(']')
		return b.String()

	case *ast.AnyChar:
		return "."

	case *ast.Identifier:
		return n.Name

	case *ast.QualifiedIdentifier:
		return n.Module + "." + n.Name

	case *ast.Sequence:
		parts := make([]string, len(n.Elements))
		for i, el := range n.Elements {
			parts[i] = renderExpr(el, depth+1)
		}
		return strings.Join(parts, " ")

	case *ast.Choice:
		parts := make([]string, len(n.Alternatives))
		for i, alt := range n.Alternatives {
			parts[i] = renderExpr(alt, depth+1)
		}
		return strings.Join(parts, " / ")

	case *ast.Group:
		return "(" + renderExpr(n.Expression, depth+1) + ")"

	case *ast.Star:
		return renderExpr(n.Expression, depth+1) + "*"

	case *ast.Plus:
		return renderExpr(n.Expression, depth+1) + "+"

	case *ast.Optional:
		return renderExpr(n.Expression, depth+1) + "?"

	case *ast.Quantified:
		return renderExpr(n.Expression, depth+1) + renderBounds(n.Min, n.Max)

	case *ast.PositiveLookahead:
		return "&" + renderExpr(n.Expression, depth+1)

	case *ast.NegativeLookahead:
		return "!" + renderExpr(n.Expression, depth+1)

	case *ast.LabeledExpression:
		return n.Label + ":" + renderExpr(n.Expression, depth+1)

	default:
		return fmt.Sprintf("<unrenderable %T>", e)
	}
}

// renderBounds picks the shortest {...} spelling that reparses to the
// given min/max: an exact count collapses to "{n}" rather than "{n,n}",
// since parseQuantifier treats them identically (both set Max to a
// pointer holding min).
func renderBounds(min int, max *int) string {
	switch {
	case max == nil:
		return "{" + strconv.Itoa(min) + ",}"
	case *max == min:
		return "{" + strconv.Itoa(min) + "}"
	default:
		return "{" + strconv.Itoa(min) + "," + strconv.Itoa(*max) + "}"
	}
}

// encodeStringLiteral is the inverse of scanStringLiteral: only the
// delimiter quote, backslash, and the control characters scanStringLiteral
// accepts as short escapes need encoding, since any other rune is consumed
// literally by that function's Any() fallback.
func encodeStringLiteral(value string, quote byte) string {
	var b strings.Builder
	b.WriteByte(quote)
	for _, r := range value {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(quote):
			b.WriteByte('\\')
			b.WriteByte(quote)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == 0:
			b.WriteString(`\0`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(quote)
	return b.String()
}

// encodeClassChar is the inverse of scanClassChar: besides backslash and
// the control escapes, it also escapes the characters that are only
// special inside a character class ("]", "[", "-", "^"), all of which
// escapeSimple already knows how to decode.
func encodeClassChar(r rune) string {
	switch r {
	case '\\':
		return `\\`
	case ']':
		return `\]`
	case '[':
		return `\[`
	case '-':
		return `\-`
	case '^':
		return `\^`
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	case 0:
		return `\0`
	default:
		return string(r)
	}
}
