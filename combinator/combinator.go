// Package combinator implements the primitive parser constructors shared by
// every sample grammar and by the code the generator (package astgen)
// emits. Parsers are pure functions closing over their children, following
// the pack's convention (see hucsmn/peg, oleiade/gomme) rather than an
// interface-per-node hierarchy: a Parser is nothing but a function value,
// and composing parsers is nothing but composing closures.
//
// Positions track UTF-8 bytes for Offset; any() and characterClass consume
// exactly one decoded rune at a time, so Offset always advances by that
// rune's UTF-8 byte width. literal() matches the raw byte sequence of its
// argument. Both primitives therefore agree on "code unit" meaning "the
// bytes of one rune", so a literal and a character class never disagree
// about where the next unit begins.
package combinator

import (
	"unicode/utf8"

	"github.com/tpeg-lang/tpeg/position"
)

// Result is the envelope every Parser returns. Values are carried as `any`
// because Sequence and Choice must hold children of differing underlying
// types; Map narrows to a concrete type once a rule is fully reduced.
type Result = position.Result[any]

// Parser is a first-class function taking (input, pos) and yielding a
// Result. Parsers are pure and safe to invoke concurrently on independent
// inputs.
type Parser func(input string, pos position.Position) Result

// Value wraps v as a successful Result spanning [current, next).
func Value(v any, current, next position.Position) Result {
	return position.Ok(v, current, next)
}

// Literal succeeds iff input at pos.Offset begins with s, consuming len(s)
// bytes. It fails with an UnexpectedInput/UnexpectedEndOfInput error
// otherwise.
func Literal(s string) Parser {
	return func(input string, pos position.Position) Result {
		end := pos.Offset + len(s)
		if end > len(input) {
			if pos.Offset >= len(input) {
				return position.ErrFound[any]("unexpected end of input", pos, quote(s), "")
			}
			return position.ErrFound[any]("unexpected input", pos, quote(s), input[pos.Offset:])
		}
		if input[pos.Offset:end] != s {
			found := input[pos.Offset : pos.Offset+minInt(1, end-pos.Offset)]
			return position.ErrFound[any]("unexpected input", pos, quote(s), found)
		}
		next := position.Advance(pos, s)
		return Value(s, pos, next)
	}
}

// Any succeeds consuming one decoded rune; it fails at end-of-input.
func Any() Parser {
	return func(input string, pos position.Position) Result {
		if pos.Offset >= len(input) {
			return position.ErrFound[any]("unexpected end of input", pos, "any character", "")
		}
		r, size := utf8.DecodeRuneInString(input[pos.Offset:])
		next := position.Advance(pos, input[pos.Offset:pos.Offset+size])
		return Value(r, pos, next)
	}
}

// CharRange is a single character (Lo == Hi) or an inclusive range [Lo, Hi]
// used by CharacterClass.
type CharRange struct {
	Lo, Hi rune
}

// CharacterClass succeeds on one rune matching any of items (subject to
// negation) and fails otherwise, including at end-of-input (a negated
// class has nothing to negate against when there is no character).
func CharacterClass(negated bool, items ...CharRange) Parser {
	return func(input string, pos position.Position) Result {
		if pos.Offset >= len(input) {
			return position.ErrFound[any]("unexpected end of input", pos, "character class", "")
		}
		r, size := utf8.DecodeRuneInString(input[pos.Offset:])
		matched := false
		for _, item := range items {
			if r >= item.Lo && r <= item.Hi {
				matched = true
				break
			}
		}
		if matched == negated {
			return position.ErrFound[any]("unexpected input", pos, "character class", string(r))
		}
		next := position.Advance(pos, input[pos.Offset:pos.Offset+size])
		return Value(r, pos, next)
	}
}

// Sequence runs children left-to-right, failing on the first child that
// fails and restoring position to the sequence's start (no child's partial
// consumption is observable by the caller on failure). The success value
// is a []any holding each child's value in order.
func Sequence(parsers ...Parser) Parser {
	return func(input string, pos position.Position) Result {
		values := make([]any, 0, len(parsers))
		cur := pos
		for _, p := range parsers {
			r := p(input, cur)
			if !r.IsOk() {
				return position.ErrFrom[any](r.Err())
			}
			values = append(values, r.Value())
			cur = r.Next()
		}
		return Value(values, pos, cur)
	}
}

// Choice tries children left-to-right, returning the first success. If all
// fail, the failure reported is the one whose position.Offset is greatest
// among the alternatives; ties are broken by alternative order (leftmost
// wins).
func Choice(parsers ...Parser) Parser {
	return func(input string, pos position.Position) Result {
		var deepest *position.Error
		for _, p := range parsers {
			r := p(input, pos)
			if r.IsOk() {
				return r
			}
			if deepest == nil || r.Err().Pos.Offset > deepest.Pos.Offset {
				deepest = r.Err()
			}
		}
		return position.ErrFrom[any](deepest)
	}
}

// Star greedily matches zero or more repetitions of p, stopping at the
// first failure or at the first iteration that would consume no input
// (preventing infinite loops on nullable parsers). It never fails.
func Star(p Parser) Parser {
	return func(input string, pos position.Position) Result {
		var values []any
		cur := pos
		for {
			r := p(input, cur)
			if !r.IsOk() {
				break
			}
			if r.Next().Offset == cur.Offset {
				break
			}
			values = append(values, r.Value())
			cur = r.Next()
		}
		return Value(values, pos, cur)
	}
}

// Plus matches one or more repetitions of p, failing if the first
// repetition fails.
func Plus(p Parser) Parser {
	return func(input string, pos position.Position) Result {
		first := p(input, pos)
		if !first.IsOk() {
			return position.ErrFrom[any](first.Err())
		}
		rest := Star(p)(input, first.Next())
		values := append([]any{first.Value()}, rest.Value().([]any)...)
		return Value(values, pos, rest.Next())
	}
}

// Optional matches zero or one repetition of p and never fails; the value
// is a []any of length 0 or 1.
func Optional(p Parser) Parser {
	return func(input string, pos position.Position) Result {
		r := p(input, pos)
		if !r.IsOk() {
			return Value([]any{}, pos, pos)
		}
		return Value([]any{r.Value()}, pos, r.Next())
	}
}

// And is a positive zero-width assertion: it succeeds iff p succeeds, but
// never consumes input.
func And(p Parser) Parser {
	return func(input string, pos position.Position) Result {
		r := p(input, pos)
		if !r.IsOk() {
			return position.ErrFrom[any](r.Err())
		}
		return Value(r.Value(), pos, pos)
	}
}

// Not is a negative zero-width assertion: it succeeds iff p fails, and
// never consumes input.
func Not(p Parser) Parser {
	return func(input string, pos position.Position) Result {
		r := p(input, pos)
		if r.IsOk() {
			return position.ErrFound[any]("unexpected match", pos, "negative lookahead to fail", "")
		}
		return Value(nil, pos, pos)
	}
}

// Map applies f to the value of a successful p, preserving failure
// verbatim.
func Map(p Parser, f func(any) any) Parser {
	return func(input string, pos position.Position) Result {
		r := p(input, pos)
		if !r.IsOk() {
			return r
		}
		return Value(f(r.Value()), r.Current(), r.Next())
	}
}

// Quantified matches between min and max (inclusive) repetitions of p; a
// nil max means unbounded. It is the runtime counterpart of the AST's
// Quantified node; generated code calls it directly with the node's
// {min,max} bounds rather than expanding them.
func Quantified(p Parser, min int, max *int) Parser {
	return func(input string, pos position.Position) Result {
		var values []any
		cur := pos
		count := 0
		for max == nil || count < *max {
			r := p(input, cur)
			if !r.IsOk() {
				break
			}
			if r.Next().Offset == cur.Offset && count >= min {
				break
			}
			values = append(values, r.Value())
			cur = r.Next()
			count++
		}
		if count < min {
			return position.ErrFound[any]("unexpected input", cur, "more repetitions", "")
		}
		return Value(values, pos, cur)
	}
}

func quote(s string) string {
	return "\"" + s + "\""
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Aliases matching the shorter alias surface some combinator libraries in
// the ecosystem expose. Kept minimal; generated code always uses the
// canonical names above, never these.
var (
	Lit      = Literal
	CharCls  = CharacterClass
	Seq      = Sequence
	Alt      = Choice
)
