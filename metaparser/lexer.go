package metaparser

import (
	"strconv"
	"strings"

	"github.com/tpeg-lang/tpeg/ast"
	"github.com/tpeg-lang/tpeg/combinator"
	"github.com/tpeg-lang/tpeg/position"
	"github.com/tpeg-lang/tpeg/tpegerr"
)

// The terminal matchers below are all assembled from package combinator's
// primitives rather than hand-indexed into the input byte slice; the
// functions in this file only drive those primitives and translate their
// generic position.Error failures into the Kind-tagged tpegerr.ParseError
// this package's callers expect.

var (
	identStartClass = combinator.CharacterClass(false,
		combinator.CharRange{Lo: 'a', Hi: 'z'},
		combinator.CharRange{Lo: 'A', Hi: 'Z'},
		combinator.CharRange{Lo: '_', Hi: '_'},
	)
	identContClass = combinator.CharacterClass(false,
		combinator.CharRange{Lo: 'a', Hi: 'z'},
		combinator.CharRange{Lo: 'A', Hi: 'Z'},
		combinator.CharRange{Lo: '0', Hi: '9'},
		combinator.CharRange{Lo: '_', Hi: '_'},
	)
	digitClass = combinator.CharacterClass(false, combinator.CharRange{Lo: '0', Hi: '9'})
	hexClass   = combinator.CharacterClass(false,
		combinator.CharRange{Lo: '0', Hi: '9'},
		combinator.CharRange{Lo: 'a', Hi: 'f'},
		combinator.CharRange{Lo: 'A', Hi: 'F'},
	)
	wsCharClass = combinator.CharacterClass(false,
		combinator.CharRange{Lo: ' ', Hi: ' '},
		combinator.CharRange{Lo: '\t', Hi: '\t'},
		combinator.CharRange{Lo: '\r', Hi: '\r'},
		combinator.CharRange{Lo: '\n', Hi: '\n'},
	)
	quoteCharClass = combinator.CharacterClass(false,
		combinator.CharRange{Lo: '"', Hi: '"'},
		combinator.CharRange{Lo: '\'', Hi: '\''},
	)

	lineComment = combinator.Sequence(
		combinator.Literal("//"),
		combinator.Star(combinator.CharacterClass(true, combinator.CharRange{Lo: '\n', Hi: '\n'})),
	)
	triviaRun = combinator.Star(combinator.Choice(wsCharClass, lineComment))

	identifierParser = combinator.Map(
		combinator.Sequence(identStartClass, combinator.Star(identContClass)),
		func(v any) any {
			parts := v.([]any)
			var b strings.Builder
			b.WriteRune(parts[0].(rune))
			for _, r := range parts[1].([]any) {
				b.WriteRune(r.(rune))
			}
			return b.String()
		},
	)

	intParser = combinator.Map(combinator.Plus(digitClass), func(v any) any {
		var b strings.Builder
		for _, r := range v.([]any) {
			b.WriteRune(r.(rune))
		}
		n, _ := strconv.Atoi(b.String())
		return n
	})

	escapeSimple = combinator.Map(
		combinator.Sequence(combinator.Literal("\\"), combinator.CharacterClass(false,
			combinator.CharRange{Lo: 'n', Hi: 'n'}, combinator.CharRange{Lo: 'r', Hi: 'r'},
			combinator.CharRange{Lo: 't', Hi: 't'}, combinator.CharRange{Lo: '\\', Hi: '\\'},
			combinator.CharRange{Lo: '"', Hi: '"'}, combinator.CharRange{Lo: '\'', Hi: '\''},
			combinator.CharRange{Lo: '0', Hi: '0'}, combinator.CharRange{Lo: ']', Hi: ']'},
			combinator.CharRange{Lo: '[', Hi: '['}, combinator.CharRange{Lo: '-', Hi: '-'},
			combinator.CharRange{Lo: '^', Hi: '^'},
		)),
		func(v any) any {
			switch v.([]any)[1].(rune) {
			case 'n':
				return '\n'
			case 'r':
				return '\r'
			case 't':
				return '\t'
			case '0':
				return rune(0)
			default:
				return v.([]any)[1].(rune)
			}
		},
	)
	escapeHex = combinator.Map(
		combinator.Sequence(combinator.Literal(`\x`), hexClass, hexClass),
		func(v any) any { return decodeHexDigits(v.([]any)[1:]) },
	)
	escapeUnicode = combinator.Map(
		combinator.Sequence(combinator.Literal(`\u`), hexClass, hexClass, hexClass, hexClass),
		func(v any) any { return decodeHexDigits(v.([]any)[1:]) },
	)
	escapeParser = combinator.Choice(escapeHex, escapeUnicode, escapeSimple)
)

func decodeHexDigits(digits []any) rune {
	var b strings.Builder
	for _, d := range digits {
		b.WriteRune(d.(rune))
	}
	n, _ := strconv.ParseUint(b.String(), 16, 32)
	return rune(n)
}

// skipTrivia advances past whitespace and comments. Line comments start
// with "//"; "///" doc comments are lexically identical (they are only
// distinguished for later tooling, never by the parser).
func skipTrivia(input string, pos position.Position) position.Position {
	return triviaRun(input, pos).Next()
}

// peekIdentStart reports, without consuming, whether an identifier begins
// at pos.
func peekIdentStart(input string, pos position.Position) bool {
	return combinator.And(identStartClass)(input, pos).IsOk()
}

// matchLiteral consumes s at pos if present, via combinator.Literal.
func matchLiteral(input string, pos position.Position, s string) (position.Position, bool) {
	r := combinator.Literal(s)(input, pos)
	if !r.IsOk() {
		return pos, false
	}
	return r.Next(), true
}

// peekLiteral reports, without consuming, whether s begins at pos.
func peekLiteral(input string, pos position.Position, s string) bool {
	return combinator.And(combinator.Literal(s))(input, pos).IsOk()
}

// scanIdentifier reads a raw `[A-Za-z_][A-Za-z0-9_]*` starting exactly at
// pos, without skipping leading trivia.
func scanIdentifier(input string, pos position.Position) (name string, next position.Position, err *tpegerr.ParseError) {
	r := identifierParser(input, pos)
	if !r.IsOk() {
		return "", pos, unexpected(pos, "identifier", foundAt(input, pos))
	}
	return r.Value().(string), r.Next(), nil
}

// scanStringLiteral reads a quoted string starting exactly at pos, which
// must hold '"' or '\''. It returns the decoded value.
func scanStringLiteral(input string, pos position.Position) (value string, quote byte, next position.Position, err *tpegerr.ParseError) {
	open := combinator.And(quoteCharClass)(input, pos)
	if !open.IsOk() {
		return "", 0, pos, unexpected(pos, "string literal", foundAt(input, pos))
	}
	quote = byte(open.Value().(rune))
	closeParser := combinator.Literal(string(quote))

	var b strings.Builder
	cur := position.Advance(pos, string(quote))
	for {
		if close := closeParser(input, cur); close.IsOk() {
			return b.String(), quote, close.Next(), nil
		}
		if cur.Offset >= len(input) {
			return "", 0, pos, unclosed(pos, "string literal")
		}
		if peekLiteral(input, cur, "\\") {
			esc := escapeParser(input, cur)
			if !esc.IsOk() {
				return "", 0, pos, &tpegerr.ParseError{Kind: tpegerr.InvalidEscape, Pos: pos, Detail: escapeDetail(input, cur)}
			}
			b.WriteRune(esc.Value().(rune))
			cur = esc.Next()
			continue
		}
		r := combinator.Any()(input, cur)
		b.WriteRune(r.Value().(rune))
		cur = r.Next()
	}
}

// scanCharacterClass reads a `[...]`/`[^...]` construct starting exactly at
// pos, which must hold '['.
func scanCharacterClass(input string, pos position.Position) (*ast.CharacterClass, position.Position, *tpegerr.ParseError) {
	open := combinator.Literal("[")(input, pos)
	if !open.IsOk() {
		return nil, pos, unexpected(pos, "character class", foundAt(input, pos))
	}
	cur := open.Next()
	negated := false
	if neg := combinator.Literal("^")(input, cur); neg.IsOk() {
		negated = true
		cur = neg.Next()
	}

	closeParser := combinator.Literal("]")
	var ranges []ast.CharRange
	for {
		if close := closeParser(input, cur); close.IsOk() {
			if len(ranges) == 0 {
				return nil, pos, unexpected(cur, "character class item", "]")
			}
			cur = close.Next()
			break
		}
		if cur.Offset >= len(input) {
			return nil, pos, unclosed(pos, "character class")
		}
		start, afterStart, cerr := scanClassChar(input, cur)
		if cerr != nil {
			return nil, pos, cerr
		}
		cur = afterStart
		if dash := combinator.Literal("-")(input, cur); dash.IsOk() && closeParser(input, dash.Next()).Err() != nil {
			end, afterEnd, eerr := scanClassChar(input, dash.Next())
			if eerr != nil {
				return nil, pos, eerr
			}
			cur = afterEnd
			if end < start {
				return nil, pos, &tpegerr.ParseError{Kind: tpegerr.InvalidConstruction, Pos: pos, Detail: "character range end precedes start"}
			}
			ranges = append(ranges, ast.CharRange{Start: start, End: end, HasEnd: true})
			continue
		}
		ranges = append(ranges, ast.CharRange{Start: start, HasEnd: false})
	}

	cc, cerr := ast.NewCharacterClass(negated, ranges...)
	if cerr != nil {
		return nil, pos, &tpegerr.ParseError{Kind: tpegerr.InvalidConstruction, Pos: pos, Detail: cerr.Error()}
	}
	return cc, cur, nil
}

// scanClassChar reads one raw character or escape sequence inside a
// character class, returning the rune and the position just past it.
func scanClassChar(input string, pos position.Position) (rune, position.Position, *tpegerr.ParseError) {
	if peekLiteral(input, pos, "\\") {
		r := escapeParser(input, pos)
		if !r.IsOk() {
			return 0, pos, &tpegerr.ParseError{Kind: tpegerr.InvalidEscape, Pos: pos, Detail: escapeDetail(input, pos)}
		}
		return r.Value().(rune), r.Next(), nil
	}
	r := combinator.Any()(input, pos)
	if !r.IsOk() {
		return 0, pos, unclosed(pos, "character class")
	}
	return r.Value().(rune), r.Next(), nil
}

func unexpected(pos position.Position, expected, found string) *tpegerr.ParseError {
	return &tpegerr.ParseError{Kind: tpegerr.UnexpectedInput, Pos: pos, Detail: "expected " + expected + ", found " + quoteDetail(found)}
}

func unclosed(pos position.Position, what string) *tpegerr.ParseError {
	return &tpegerr.ParseError{Kind: tpegerr.UnclosedConstruct, Pos: pos, Detail: "unclosed " + what}
}

func foundAt(input string, pos position.Position) string {
	r := combinator.Any()(input, pos)
	if !r.IsOk() {
		return "end of input"
	}
	return string(r.Value().(rune))
}

// escapeDetail reports the raw (undecoded) text of the escape sequence at
// pos, for error messages only; it plays no part in matching.
func escapeDetail(input string, pos position.Position) string {
	end := pos.Offset + 2
	if end > len(input) {
		end = len(input)
	}
	return input[pos.Offset:end]
}

func quoteDetail(s string) string {
	if s == "end of input" {
		return s
	}
	return "\"" + s + "\""
}
