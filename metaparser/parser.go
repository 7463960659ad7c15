// Package metaparser implements a recursive-descent parser, built directly
// on top of package combinator, that turns TPEG grammar source text into an
// *ast.Grammar. Terminal matching (identifiers, string literals, character
// classes, single-character operators) is delegated to lexer.go's
// combinator-built matchers; this file only expresses the recursive
// structure of the expression grammar (choice/sequence/prefix/suffix/
// primary) as ordinary mutually recursive functions, deciding between
// grammar productions by peeking ahead with those same matchers.
package metaparser

import (
	"strings"

	"github.com/tpeg-lang/tpeg/ast"
	"github.com/tpeg-lang/tpeg/position"
	"github.com/tpeg-lang/tpeg/tpegerr"
)

const bom = "\xef\xbb\xbf"

// ParseGrammar parses TPEG grammar source into a Grammar AST. On failure it
// returns a tpegerr.ParseErrors holding the single deepest-position error
// encountered along the path that was taken.
func ParseGrammar(source string) (*ast.Grammar, error) {
	source = strings.TrimPrefix(source, bom)
	pos := position.Start

	pos = skipTrivia(source, pos)
	kw, next, err := scanIdentifier(source, pos)
	if err != nil {
		return nil, tpegerr.ParseErrors{err}
	}
	if kw != "grammar" {
		return nil, tpegerr.ParseErrors{&tpegerr.ParseError{Kind: tpegerr.UnexpectedInput, Pos: pos, Detail: "expected keyword \"grammar\", found \"" + kw + "\""}}
	}
	pos = skipTrivia(source, next)

	name, next, err := scanIdentifier(source, pos)
	if err != nil {
		return nil, tpegerr.ParseErrors{err}
	}
	pos = skipTrivia(source, next)

	pos, err = expectByte(source, pos, '{')
	if err != nil {
		return nil, tpegerr.ParseErrors{err}
	}

	var annotations []ast.Annotation
	var rules []ast.Rule
	for {
		pos = skipTrivia(source, pos)
		if pos.Offset >= len(source) {
			return nil, tpegerr.ParseErrors{unclosed(pos, "grammar block")}
		}
		if next, ok := matchLiteral(source, pos, "}"); ok {
			pos = next
			break
		}
		if peekLiteral(source, pos, "@") {
			var ann ast.Annotation
			ann, pos, err = parseAnnotation(source, pos)
			if err != nil {
				return nil, tpegerr.ParseErrors{err}
			}
			annotations = append(annotations, ann)
			continue
		}
		var rule ast.Rule
		rule, pos, err = parseRule(source, pos)
		if err != nil {
			return nil, tpegerr.ParseErrors{err}
		}
		rules = append(rules, rule)
	}

	pos = skipTrivia(source, pos)
	if pos.Offset != len(source) {
		return nil, tpegerr.ParseErrors{unexpected(pos, "end of input", foundAt(source, pos))}
	}

	grammar, gerr := ast.NewGrammar(name, annotations, rules)
	if gerr != nil {
		pe := gerr.(*tpegerr.ParseError)
		pe.Pos = pos
		return nil, tpegerr.ParseErrors{pe}
	}
	return grammar, nil
}

func parseAnnotation(input string, pos position.Position) (ast.Annotation, position.Position, *tpegerr.ParseError) {
	pos, err := expectByte(input, pos, '@')
	if err != nil {
		return ast.Annotation{}, pos, err
	}
	pos = skipTrivia(input, pos)
	key, next, err := scanIdentifier(input, pos)
	if err != nil {
		return ast.Annotation{}, pos, err
	}
	pos = skipTrivia(input, next)
	pos, err = expectByte(input, pos, ':')
	if err != nil {
		return ast.Annotation{}, pos, err
	}
	pos = skipTrivia(input, pos)
	value, _, next, err := scanStringLiteral(input, pos)
	if err != nil {
		return ast.Annotation{}, pos, err
	}
	return ast.Annotation{Key: key, Value: value}, next, nil
}

func parseRule(input string, pos position.Position) (ast.Rule, position.Position, *tpegerr.ParseError) {
	name, next, err := scanIdentifier(input, pos)
	if err != nil {
		return ast.Rule{}, pos, err
	}
	pos = skipTrivia(input, next)
	pos, err = expectByte(input, pos, '=')
	if err != nil {
		return ast.Rule{}, pos, err
	}
	pos = skipTrivia(input, pos)
	pattern, next, err := parseChoice(input, pos)
	if err != nil {
		return ast.Rule{}, pos, err
	}
	return ast.NewRule(name, pattern), next, nil
}

// parseChoice implements `Choice = Sequence ("/" Sequence)*`.
func parseChoice(input string, pos position.Position) (ast.Expr, position.Position, *tpegerr.ParseError) {
	first, next, err := parseSequence(input, pos)
	if err != nil {
		return nil, pos, err
	}
	alts := []ast.Expr{first}
	cur := next
	for {
		tryPos := skipTrivia(input, cur)
		slash, ok := matchLiteral(input, tryPos, "/")
		if !ok {
			break
		}
		tryPos = skipTrivia(input, slash)
		alt, after, aerr := parseSequence(input, tryPos)
		if aerr != nil {
			return nil, pos, aerr
		}
		alts = append(alts, alt)
		cur = after
	}
	expr, cerr := ast.NewChoice(alts...)
	if cerr != nil {
		return nil, pos, &tpegerr.ParseError{Kind: tpegerr.InvalidConstruction, Pos: pos, Detail: cerr.Error()}
	}
	return expr, cur, nil
}

// parseSequence implements `Sequence = Prefixed (Prefixed)*`. The loop below
// peeks for a token that can start a Prefixed before committing to parse
// one; once committed, any failure is a genuine syntax error and must
// propagate rather than be mistaken for "no more elements".
func parseSequence(input string, pos position.Position) (ast.Expr, position.Position, *tpegerr.ParseError) {
	first, next, err := parsePrefixed(input, pos)
	if err != nil {
		return nil, pos, err
	}
	elems := []ast.Expr{first}
	cur := next
	for {
		tryPos := skipTrivia(input, cur)
		if !startsPrefixed(input, tryPos) {
			break
		}
		elem, after, perr := parsePrefixed(input, cur)
		if perr != nil {
			return nil, pos, perr
		}
		elems = append(elems, elem)
		cur = after
	}
	expr, serr := ast.NewSequence(elems...)
	if serr != nil {
		return nil, pos, &tpegerr.ParseError{Kind: tpegerr.InvalidConstruction, Pos: pos, Detail: serr.Error()}
	}
	return expr, cur, nil
}

// startsPrefixed reports, without consuming, whether a Prefixed expression
// begins at pos: an explicit "&"/"!" marker, or anything that can start a
// Primary. A bare identifier doesn't count when it is itself the start of
// the grammar's next rule declaration ("Identifier ="): "=" never appears
// inside an expression, so that lookahead is the only way to tell "this
// identifier continues the sequence" apart from "this identifier is the
// next rule's name", since both shapes begin identically.
func startsPrefixed(input string, pos position.Position) bool {
	if peekLiteral(input, pos, "&") || peekLiteral(input, pos, "!") {
		return true
	}
	for _, lit := range []string{"(", `"`, "'", "[", "."} {
		if peekLiteral(input, pos, lit) {
			return true
		}
	}
	if !peekIdentStart(input, pos) {
		return false
	}
	return !startsRuleHeader(input, pos)
}

// startsRuleHeader reports whether pos begins "Identifier =", the only
// shape a rule declaration can take.
func startsRuleHeader(input string, pos position.Position) bool {
	_, next, err := scanIdentifier(input, pos)
	if err != nil {
		return false
	}
	next = skipTrivia(input, next)
	return peekLiteral(input, next, "=")
}

// parsePrefixed implements `Prefixed = ("&" | "!")? Labeled`.
func parsePrefixed(input string, pos position.Position) (ast.Expr, position.Position, *tpegerr.ParseError) {
	pos = skipTrivia(input, pos)
	if next, ok := matchLiteral(input, pos, "&"); ok {
		inner, after, err := parseLabeled(input, next)
		if err != nil {
			return nil, pos, err
		}
		return &ast.PositiveLookahead{Expression: inner}, after, nil
	}
	if next, ok := matchLiteral(input, pos, "!"); ok {
		inner, after, err := parseLabeled(input, next)
		if err != nil {
			return nil, pos, err
		}
		return &ast.NegativeLookahead{Expression: inner}, after, nil
	}
	return parseLabeled(input, pos)
}

// parseLabeled implements `Labeled = (Identifier ":") ? Suffixed`.
func parseLabeled(input string, pos position.Position) (ast.Expr, position.Position, *tpegerr.ParseError) {
	pos = skipTrivia(input, pos)
	if peekIdentStart(input, pos) {
		name, afterName, nerr := scanIdentifier(input, pos)
		if nerr == nil {
			afterWS := skipTrivia(input, afterName)
			if afterColon, ok := matchLiteral(input, afterWS, ":"); ok {
				afterColon = skipTrivia(input, afterColon)
				inner, next, ierr := parseSuffixed(input, afterColon)
				if ierr != nil {
					return nil, pos, ierr
				}
				return &ast.LabeledExpression{Label: name, Expression: inner}, next, nil
			}
		}
	}
	return parseSuffixed(input, pos)
}

// parseSuffixed implements:
//
//	Suffixed = Primary ( "*" | "+" | "?" | "{" N ("," N?)? "}" )?
func parseSuffixed(input string, pos position.Position) (ast.Expr, position.Position, *tpegerr.ParseError) {
	primary, next, err := parsePrimary(input, pos)
	if err != nil {
		return nil, pos, err
	}
	suffixPos := skipTrivia(input, next)
	if after, ok := matchLiteral(input, suffixPos, "*"); ok {
		return &ast.Star{Expression: primary}, after, nil
	}
	if after, ok := matchLiteral(input, suffixPos, "+"); ok {
		return &ast.Plus{Expression: primary}, after, nil
	}
	if after, ok := matchLiteral(input, suffixPos, "?"); ok {
		return &ast.Optional{Expression: primary}, after, nil
	}
	if peekLiteral(input, suffixPos, "{") {
		return parseQuantifier(input, primary, suffixPos)
	}
	return primary, next, nil
}

func parseQuantifier(input string, primary ast.Expr, pos position.Position) (ast.Expr, position.Position, *tpegerr.ParseError) {
	cur, _ := matchLiteral(input, pos, "{")
	cur = skipTrivia(input, cur)
	min, cur, err := scanInt(input, cur)
	if err != nil {
		return nil, pos, err
	}
	var max *int
	cur = skipTrivia(input, cur)
	if after, ok := matchLiteral(input, cur, ","); ok {
		cur = skipTrivia(input, after)
		if !peekLiteral(input, cur, "}") {
			var n int
			n, cur, err = scanInt(input, cur)
			if err != nil {
				return nil, pos, err
			}
			max = &n
		}
	} else {
		max = &min
	}
	cur = skipTrivia(input, cur)
	cur, err = expectByte(input, cur, '}')
	if err != nil {
		return nil, pos, err
	}
	q, qerr := ast.NewQuantified(primary, min, max)
	if qerr != nil {
		return nil, pos, &tpegerr.ParseError{Kind: tpegerr.InvalidQuantifier, Pos: pos, Detail: qerr.Error()}
	}
	return q, cur, nil
}

func scanInt(input string, pos position.Position) (int, position.Position, *tpegerr.ParseError) {
	r := intParser(input, pos)
	if !r.IsOk() {
		return 0, pos, unexpected(pos, "number", foundAt(input, pos))
	}
	return r.Value().(int), r.Next(), nil
}

// parsePrimary implements:
//
//	Primary = Group | StringLiteral | CharacterClass | AnyChar
//	        | QualifiedIdentifier | Identifier
func parsePrimary(input string, pos position.Position) (ast.Expr, position.Position, *tpegerr.ParseError) {
	pos = skipTrivia(input, pos)
	if peekLiteral(input, pos, "(") {
		return parseGroup(input, pos)
	}
	if peekLiteral(input, pos, `"`) || peekLiteral(input, pos, "'") {
		value, quote, next, err := scanStringLiteral(input, pos)
		if err != nil {
			return nil, pos, err
		}
		return &ast.StringLiteral{Value: value, Quote: quote}, next, nil
	}
	if peekLiteral(input, pos, "[") {
		cc, next, err := scanCharacterClass(input, pos)
		if err != nil {
			return nil, pos, err
		}
		return cc, next, nil
	}
	if next, ok := matchLiteral(input, pos, "."); ok {
		return &ast.AnyChar{}, next, nil
	}
	if peekIdentStart(input, pos) {
		return parseIdentifierOrQualified(input, pos)
	}
	return nil, pos, unexpected(pos, "expression", foundAt(input, pos))
}

func parseIdentifierOrQualified(input string, pos position.Position) (ast.Expr, position.Position, *tpegerr.ParseError) {
	first, afterFirst, err := scanIdentifier(input, pos)
	if err != nil {
		return nil, pos, err
	}
	if afterDot, ok := matchLiteral(input, afterFirst, "."); ok && peekIdentStart(input, afterDot) {
		second, afterSecond, serr := scanIdentifier(input, afterDot)
		if serr == nil {
			return &ast.QualifiedIdentifier{Module: first, Name: second}, afterSecond, nil
		}
	}
	return &ast.Identifier{Name: first}, afterFirst, nil
}

func parseGroup(input string, pos position.Position) (ast.Expr, position.Position, *tpegerr.ParseError) {
	pos, err := expectByte(input, pos, '(')
	if err != nil {
		return nil, pos, err
	}
	pos = skipTrivia(input, pos)
	inner, next, ierr := parseChoice(input, pos)
	if ierr != nil {
		return nil, pos, ierr
	}
	next = skipTrivia(input, next)
	closed, ok := matchLiteral(input, next, ")")
	if !ok {
		return nil, pos, unclosed(pos, "group")
	}
	return &ast.Group{Expression: inner}, closed, nil
}

func expectByte(input string, pos position.Position, c byte) (position.Position, *tpegerr.ParseError) {
	next, ok := matchLiteral(input, pos, string(c))
	if !ok {
		return pos, unexpected(pos, "\""+string(c)+"\"", foundAt(input, pos))
	}
	return next, nil
}
