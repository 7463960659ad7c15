// Package json is a sample grammar (component F): a full JSON value grammar
// built directly on package combinator, decoding into plain Go values
// (map[string]any, []any, string, float64, bool, nil).
package json

import (
	"strconv"
	"strings"

	"github.com/tpeg-lang/tpeg/combinator"
	"github.com/tpeg-lang/tpeg/position"
)

// Parse parses a single complete JSON value. The whole input (apart from
// surrounding whitespace) must be consumed.
func Parse(input string) (any, error) {
	r := value(input, skipSpace(input, position.Start))
	if !r.IsOk() {
		return nil, r.Err()
	}
	end := skipSpace(input, r.Next())
	if end.Offset != len(input) {
		return nil, &position.Error{Message: "unexpected trailing input", Pos: end}
	}
	return r.Value(), nil
}

func value(input string, pos position.Position) combinator.Result {
	return lexeme(combinator.Choice(object, array, jsonString, number, literalTrue, literalFalse, literalNull))(input, pos)
}

func literalTrue(input string, pos position.Position) combinator.Result {
	return combinator.Map(combinator.Literal("true"), func(any) any { return true })(input, pos)
}

func literalFalse(input string, pos position.Position) combinator.Result {
	return combinator.Map(combinator.Literal("false"), func(any) any { return false })(input, pos)
}

func literalNull(input string, pos position.Position) combinator.Result {
	return combinator.Map(combinator.Literal("null"), func(any) any { return nil })(input, pos)
}

// Object = "{" (Pair ("," Pair)*)? "}"
func object(input string, pos position.Position) combinator.Result {
	pairs := combinator.Sequence(pair, combinator.Star(combinator.Sequence(lexeme(combinator.Literal(",")), pair)))
	body := combinator.Optional(pairs)
	return combinator.Map(
		combinator.Sequence(lexeme(combinator.Literal("{")), body, lexeme(combinator.Literal("}"))),
		func(v any) any {
			out := map[string]any{}
			opt := v.([]any)[1].([]any)
			if len(opt) == 0 {
				return out
			}
			seq := opt[0].([]any)
			first := seq[0].([]any)
			out[first[0].(string)] = first[1]
			for _, item := range seq[1].([]any) {
				kv := item.([]any)[1].([]any)
				out[kv[0].(string)] = kv[1]
			}
			return out
		},
	)(input, pos)
}

// Pair = String ":" Value, reduced to a [key, value] pair.
func pair(input string, pos position.Position) combinator.Result {
	return combinator.Map(
		combinator.Sequence(lexeme(jsonString), lexeme(combinator.Literal(":")), value),
		func(v any) any {
			parts := v.([]any)
			return []any{parts[0], parts[2]}
		},
	)(input, pos)
}

// Array = "[" (Value ("," Value)*)? "]"
func array(input string, pos position.Position) combinator.Result {
	items := combinator.Sequence(value, combinator.Star(combinator.Sequence(lexeme(combinator.Literal(",")), value)))
	body := combinator.Optional(items)
	return combinator.Map(
		combinator.Sequence(lexeme(combinator.Literal("[")), body, lexeme(combinator.Literal("]"))),
		func(v any) any {
			out := []any{}
			opt := v.([]any)[1].([]any)
			if len(opt) == 0 {
				return out
			}
			seq := opt[0].([]any)
			out = append(out, seq[0])
			for _, item := range seq[1].([]any) {
				out = append(out, item.([]any)[1])
			}
			return out
		},
	)(input, pos)
}

func jsonString(input string, pos position.Position) combinator.Result {
	inner := combinator.Star(combinator.Choice(stringEscape, stringPlainChar))
	return combinator.Map(
		combinator.Sequence(combinator.Literal(`"`), inner, combinator.Literal(`"`)),
		func(v any) any {
			var b strings.Builder
			for _, r := range v.([]any)[1].([]any) {
				b.WriteRune(r.(rune))
			}
			return b.String()
		},
	)(input, pos)
}

func stringPlainChar(input string, pos position.Position) combinator.Result {
	return combinator.CharacterClass(true, combinator.CharRange{Lo: '"', Hi: '"'}, combinator.CharRange{Lo: '\\', Hi: '\\'})(input, pos)
}

// stringEscape decodes one backslash escape. A \uXXXX escape decodes to the
// single code point XXXX; UTF-16 surrogate pairs are not combined.
func stringEscape(input string, pos position.Position) combinator.Result {
	hex := combinator.CharacterClass(false, combinator.CharRange{Lo: '0', Hi: '9'}, combinator.CharRange{Lo: 'a', Hi: 'f'}, combinator.CharRange{Lo: 'A', Hi: 'F'})
	unicodeEscape := combinator.Map(combinator.Sequence(combinator.Literal(`\u`), hex, hex, hex, hex), func(v any) any {
		var b strings.Builder
		for _, d := range v.([]any)[1:] {
			b.WriteRune(d.(rune))
		}
		n, _ := strconv.ParseUint(b.String(), 16, 32)
		return rune(n)
	})
	decode := func(v any) any {
		parts := v.([]any)
		switch parts[1].(rune) {
		case 'n':
			return '\n'
		case 't':
			return '\t'
		case 'r':
			return '\r'
		case '"':
			return '"'
		case '\\':
			return '\\'
		case '/':
			return '/'
		case 'b':
			return '\b'
		case 'f':
			return '\f'
		default:
			return parts[1]
		}
	}
	return combinator.Choice(unicodeEscape, combinator.Map(combinator.Sequence(combinator.Literal(`\`), combinator.Any()), decode))(input, pos)
}

// Number = "-"? digit+ ("." digit+)? (("e"|"E") ("+"|"-")? digit+)?
func number(input string, pos position.Position) combinator.Result {
	digits := combinator.Plus(combinator.CharacterClass(false, combinator.CharRange{Lo: '0', Hi: '9'}))
	frac := combinator.Optional(combinator.Sequence(combinator.Literal("."), digits))
	exp := combinator.Optional(combinator.Sequence(
		combinator.CharacterClass(false, combinator.CharRange{Lo: 'e', Hi: 'e'}, combinator.CharRange{Lo: 'E', Hi: 'E'}),
		combinator.Optional(combinator.Choice(combinator.Literal("+"), combinator.Literal("-"))),
		digits,
	))
	whole := combinator.Sequence(combinator.Optional(combinator.Literal("-")), digits, frac, exp)
	return func(in string, p position.Position) combinator.Result {
		r := whole(in, p)
		if !r.IsOk() {
			return r
		}
		text := in[p.Offset:r.Next().Offset]
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return position.ErrFound[any]("invalid number literal", p, "number", text)
		}
		return combinator.Value(n, p, r.Next())
	}(input, pos)
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

func lexeme(p combinator.Parser) combinator.Parser {
	return func(input string, pos position.Position) combinator.Result {
		return p(input, skipSpace(input, pos))
	}
}
