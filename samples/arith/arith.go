// Package arith is a sample grammar (component F) built directly on package
// combinator: arithmetic expressions with the usual operator precedence,
// `Expr -> Term -> Factor`, each level folding its repeated operator/operand
// tail left-associatively with Map. It exists to exercise (B)'s contracts
// end to end, the same role the pack's sample parsers play for their own
// combinator libraries.
package arith

import (
	"strconv"

	"github.com/tpeg-lang/tpeg/combinator"
	"github.com/tpeg-lang/tpeg/position"
)

// Evaluate parses and evaluates a complete arithmetic expression. The whole
// input must be consumed; leading and trailing whitespace is ignored.
func Evaluate(input string) (int, error) {
	r := Expr(input, position.Start)
	if !r.IsOk() {
		return 0, r.Err()
	}
	end := skipSpace(input, r.Next())
	if end.Offset != len(input) {
		return 0, &position.Error{Message: "unexpected trailing input", Pos: end}
	}
	return r.Value().(int), nil
}

// Expr = Term (("+" | "-") Term)*
func Expr(input string, pos position.Position) combinator.Result {
	return foldLeft(Term, additiveOp)(input, pos)
}

// Term = Factor (("*" | "/") Factor)*
func Term(input string, pos position.Position) combinator.Result {
	return foldLeft(Factor, multiplicativeOp)(input, pos)
}

// Factor = Number | "(" Expr ")"
func Factor(input string, pos position.Position) combinator.Result {
	return combinator.Choice(number, parenExpr)(input, pos)
}

var additiveOp = lexeme(combinator.Choice(combinator.Literal("+"), combinator.Literal("-")))
var multiplicativeOp = lexeme(combinator.Choice(combinator.Literal("*"), combinator.Literal("/")))

func parenExpr(input string, pos position.Position) combinator.Result {
	return combinator.Map(
		combinator.Sequence(lexeme(combinator.Literal("(")), Expr, lexeme(combinator.Literal(")"))),
		func(v any) any {
			return v.([]any)[1]
		},
	)(input, pos)
}

var digit = combinator.CharacterClass(false, combinator.CharRange{Lo: '0', Hi: '9'})

func number(input string, pos position.Position) combinator.Result {
	return lexeme(combinator.Map(combinator.Plus(digit), func(v any) any {
		digits := v.([]any)
		b := make([]byte, len(digits))
		for i, d := range digits {
			b[i] = byte(d.(rune))
		}
		n, err := strconv.Atoi(string(b))
		if err != nil {
			panic(err) // unreachable: Plus(digit) only ever yields digit runes
		}
		return n
	}))(input, pos)
}

func applyOp(op string, a, b int) int {
	switch op {
	case "+":
		return a + b
	case "-":
		return a - b
	case "*":
		return a * b
	case "/":
		return a / b
	default:
		panic("arith: unknown operator " + op)
	}
}

// foldLeft builds `operand (opClass operand)*` and reduces the repeated
// tail left-associatively, so "1 - 2 - 3" parses as (1-2)-3.
func foldLeft(operand, opClass combinator.Parser) combinator.Parser {
	tail := combinator.Star(combinator.Sequence(opClass, operand))
	return combinator.Map(combinator.Sequence(operand, tail), func(v any) any {
		parts := v.([]any)
		acc := parts[0].(int)
		for _, item := range parts[1].([]any) {
			pair := item.([]any)
			acc = applyOp(pair[0].(string), acc, pair[1].(int))
		}
		return acc
	})
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func skipSpace(input string, pos position.Position) position.Position {
	for pos.Offset < len(input) && isSpace(input[pos.Offset]) {
		pos = position.Advance(pos, input[pos.Offset:pos.Offset+1])
	}
	return pos
}

// lexeme skips leading whitespace before handing off to p, the same
// convention the meta-grammar parser's skipTrivia applies ahead of every
// terminal.
func lexeme(p combinator.Parser) combinator.Parser {
	return func(input string, pos position.Position) combinator.Result {
		return p(input, skipSpace(input, pos))
	}
}
