// Package csv is a sample grammar (component F) for CSV text with quoted
// fields, built directly on package combinator.
package csv

import (
	"strings"

	"github.com/tpeg-lang/tpeg/combinator"
	"github.com/tpeg-lang/tpeg/position"
)

// Parse parses a complete CSV document into rows of fields. The whole input
// must be consumed.
func Parse(input string) ([][]string, error) {
	r := File(input, position.Start)
	if !r.IsOk() {
		return nil, r.Err()
	}
	if r.Next().Offset != len(input) {
		return nil, &position.Error{Message: "unexpected trailing input", Pos: r.Next()}
	}
	rows := r.Value().([]any)
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = row.([]string)
	}
	return out, nil
}

// File = Record ("\n" &. Record)* "\n"?
//
// A newline starts another record only when input follows it, so a single
// trailing newline adds no empty row.
func File(input string, pos position.Position) combinator.Result {
	return combinator.Map(
		combinator.Sequence(record, combinator.Star(combinator.Sequence(newline, combinator.And(combinator.Any()), record)), combinator.Optional(newline)),
		func(v any) any {
			parts := v.([]any)
			rows := []any{toRow(parts[0])}
			for _, item := range parts[1].([]any) {
				rows = append(rows, toRow(item.([]any)[2]))
			}
			return rows
		},
	)(input, pos)
}

func toRow(v any) []string {
	fields := v.([]any)
	row := make([]string, len(fields))
	for i, f := range fields {
		row[i] = f.(string)
	}
	return row
}

// Record = Field ("," Field)*
func record(input string, pos position.Position) combinator.Result {
	return combinator.Map(
		combinator.Sequence(field, combinator.Star(combinator.Sequence(combinator.Literal(","), field))),
		func(v any) any {
			parts := v.([]any)
			fields := []any{parts[0]}
			for _, item := range parts[1].([]any) {
				fields = append(fields, item.([]any)[1])
			}
			return fields
		},
	)(input, pos)
}

// Field = QuotedField | UnquotedField
func field(input string, pos position.Position) combinator.Result {
	return combinator.Choice(quotedField, unquotedField)(input, pos)
}

// QuotedField = '"' (EscapedQuote | NotQuote)* '"'
func quotedField(input string, pos position.Position) combinator.Result {
	inner := combinator.Star(combinator.Choice(escapedQuote, notQuote))
	return combinator.Map(
		combinator.Sequence(combinator.Literal(`"`), inner, combinator.Literal(`"`)),
		func(v any) any {
			parts := v.([]any)
			var b strings.Builder
			for _, r := range parts[1].([]any) {
				b.WriteRune(r.(rune))
			}
			return b.String()
		},
	)(input, pos)
}

// EscapedQuote = '""' (a literal quote inside a quoted field)
func escapedQuote(input string, pos position.Position) combinator.Result {
	return combinator.Map(combinator.Literal(`""`), func(any) any { return rune('"') })(input, pos)
}

func notQuote(input string, pos position.Position) combinator.Result {
	return combinator.CharacterClass(true, combinator.CharRange{Lo: '"', Hi: '"'})(input, pos)
}

// UnquotedField = (any char except ',', '\n', '\r', '"')*
func unquotedField(input string, pos position.Position) combinator.Result {
	return combinator.Map(combinator.Star(plainChar), func(v any) any {
		var b strings.Builder
		for _, r := range v.([]any) {
			b.WriteRune(r.(rune))
		}
		return b.String()
	})(input, pos)
}

func plainChar(input string, pos position.Position) combinator.Result {
	return combinator.Map(
		combinator.Sequence(combinator.Not(fieldBoundary), combinator.Any()),
		func(v any) any { return v.([]any)[1] },
	)(input, pos)
}

func fieldBoundary(input string, pos position.Position) combinator.Result {
	return combinator.Choice(combinator.Literal(","), combinator.Literal("\n"), combinator.Literal("\r"), combinator.Literal(`"`))(input, pos)
}

func newline(input string, pos position.Position) combinator.Result {
	return combinator.Choice(combinator.Literal("\r\n"), combinator.Literal("\n"), combinator.Literal("\r"))(input, pos)
}
