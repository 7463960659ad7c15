package metaparser_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpeg-lang/tpeg/ast"
	"github.com/tpeg-lang/tpeg/metaparser"
	"github.com/tpeg-lang/tpeg/tpegerr"
)

func TestParseGrammarBasic(t *testing.T) {
	src := `grammar Calculator {
		@version: "1.0"
		number = [0-9]+
	}`

	g, err := metaparser.ParseGrammar(src)
	require.NoError(t, err)
	assert.Equal(t, "Calculator", g.Name)
	require.Len(t, g.Annotations, 1)
	assert.Equal(t, "version", g.Annotations[0].Key)
	assert.Equal(t, "1.0", g.Annotations[0].Value)

	require.Len(t, g.Rules, 1)
	assert.Equal(t, "number", g.Rules[0].Name)

	plus, ok := g.Rules[0].Pattern.(*ast.Plus)
	require.True(t, ok)
	cc, ok := plus.Expression.(*ast.CharacterClass)
	require.True(t, ok)
	assert.False(t, cc.Negated)
	require.Len(t, cc.Ranges, 1)
	assert.Equal(t, ast.CharRange{Start: '0', End: '9', HasEnd: true}, cc.Ranges[0])
}

func TestParseStringLiteral(t *testing.T) {
	src := `grammar G { r = "hello" }`
	g, err := metaparser.ParseGrammar(src)
	require.NoError(t, err)

	lit, ok := g.Rules[0].Pattern.(*ast.StringLiteral)
	require.True(t, ok)
	assert.Equal(t, "hello", lit.Value)
	assert.Equal(t, byte('"'), lit.Quote)
}

func TestParseCharacterClassOrder(t *testing.T) {
	src := `grammar G { r = [a-zA-Z0-9_] }`
	g, err := metaparser.ParseGrammar(src)
	require.NoError(t, err)

	cc, ok := g.Rules[0].Pattern.(*ast.CharacterClass)
	require.True(t, ok)
	require.Len(t, cc.Ranges, 4)
	assert.Equal(t, ast.CharRange{Start: 'a', End: 'z', HasEnd: true}, cc.Ranges[0])
	assert.Equal(t, ast.CharRange{Start: 'A', End: 'Z', HasEnd: true}, cc.Ranges[1])
	assert.Equal(t, ast.CharRange{Start: '0', End: '9', HasEnd: true}, cc.Ranges[2])
	assert.Equal(t, ast.CharRange{Start: '_', HasEnd: false}, cc.Ranges[3])
	assert.False(t, cc.Negated)
}

func TestParseChoiceSourceOrder(t *testing.T) {
	src := `grammar G { r = "yes" / "no" / "maybe" }`
	g, err := metaparser.ParseGrammar(src)
	require.NoError(t, err)

	choice, ok := g.Rules[0].Pattern.(*ast.Choice)
	require.True(t, ok)
	require.Len(t, choice.Alternatives, 3)
	for i, want := range []string{"yes", "no", "maybe"} {
		lit := choice.Alternatives[i].(*ast.StringLiteral)
		assert.Equal(t, want, lit.Value)
	}
}

func TestParseLabeledExpression(t *testing.T) {
	src := `grammar G { r = value:number }`
	g, err := metaparser.ParseGrammar(src)
	require.NoError(t, err)

	labeled, ok := g.Rules[0].Pattern.(*ast.LabeledExpression)
	require.True(t, ok)
	assert.Equal(t, "value", labeled.Label)
	id, ok := labeled.Expression.(*ast.Identifier)
	require.True(t, ok)
	assert.Equal(t, "number", id.Name)
}

func TestParseQualifiedIdentifier(t *testing.T) {
	src := `grammar G { r = Other.rule }`
	g, err := metaparser.ParseGrammar(src)
	require.NoError(t, err)

	qid, ok := g.Rules[0].Pattern.(*ast.QualifiedIdentifier)
	require.True(t, ok)
	assert.Equal(t, "Other", qid.Module)
	assert.Equal(t, "rule", qid.Name)
}

func TestParseQuantified(t *testing.T) {
	src := `grammar G { r = "a"{2,4} }`
	g, err := metaparser.ParseGrammar(src)
	require.NoError(t, err)

	q, ok := g.Rules[0].Pattern.(*ast.Quantified)
	require.True(t, ok)
	assert.Equal(t, 2, q.Min)
	require.NotNil(t, q.Max)
	assert.Equal(t, 4, *q.Max)
}

func TestParseLookaheads(t *testing.T) {
	src := `grammar G { r = &"a" !"b" "c" }`
	g, err := metaparser.ParseGrammar(src)
	require.NoError(t, err)

	seq, ok := g.Rules[0].Pattern.(*ast.Sequence)
	require.True(t, ok)
	require.Len(t, seq.Elements, 3)
	_, ok = seq.Elements[0].(*ast.PositiveLookahead)
	assert.True(t, ok)
	_, ok = seq.Elements[1].(*ast.NegativeLookahead)
	assert.True(t, ok)
}

func TestParseUnclosedStringReportsError(t *testing.T) {
	_, err := metaparser.ParseGrammar(`grammar G { r = "unterminated }`)
	require.Error(t, err)
}

func TestParseDuplicateRuleNameReportsError(t *testing.T) {
	src := `grammar G { a = "x" a = "y" }`
	_, err := metaparser.ParseGrammar(src)
	require.Error(t, err)
}

func TestParseEmptyGroupFails(t *testing.T) {
	_, err := metaparser.ParseGrammar(`grammar G { r = () }`)
	require.Error(t, err)
}

func TestParseChoiceBubblesInnerAlternativeError(t *testing.T) {
	// The first alternative ("a") parses fine on its own, so the second
	// alternative is attempted after the "/"; it fails deep inside its own
	// group, at the unterminated string literal. ParseGrammar must report
	// that inner position, not the position of the rule or the choice
	// itself, i.e. it must not discard the inner error while bubbling up
	// through the enclosing alternative.
	const src = `grammar G { r = "a" / ("b" "unterminated) }`
	_, err := metaparser.ParseGrammar(src)
	require.Error(t, err)

	pes, ok := err.(tpegerr.ParseErrors)
	require.True(t, ok)
	require.Len(t, pes, 1)

	wantOffset := strings.Index(src, `"unterminated`)
	require.NotEqual(t, -1, wantOffset)
	assert.Equal(t, wantOffset, pes[0].Pos.Offset)
	assert.Equal(t, tpegerr.UnclosedConstruct, pes[0].Kind)
}

func TestEscapeSequencesInString(t *testing.T) {
	src := `grammar G { r = "a\nb\tc\\d" }`
	g, err := metaparser.ParseGrammar(src)
	require.NoError(t, err)
	lit := g.Rules[0].Pattern.(*ast.StringLiteral)
	assert.Equal(t, "a\nb\tc\\d", lit.Value)
}

func TestHexAndUnicodeEscapes(t *testing.T) {
	src := `grammar G { r = "\x41\u00e9" }`
	g, err := metaparser.ParseGrammar(src)
	require.NoError(t, err)
	lit := g.Rules[0].Pattern.(*ast.StringLiteral)
	assert.Equal(t, "Aé", lit.Value)
}

func TestRenderGrammarRoundTrips(t *testing.T) {
	src := `grammar Sample {
		@version: "1.0"
		@note: "has a \"quote\" and a 'tab\t'"
		letter = [a-zA-Z_]
		digits = [0-9]+
		ident = letter (letter / digits)*
		greeting = 'hi' / "hello" / "hey"
		exact = "x"{3}
		atLeast = "x"{2,}
		bounded = "x"{2,4}
		lookaheads = &"a" !"b" "c"
		qualified = Other.rule
		label = value:digits
		grouped = (ident / digits)?
	}`

	g, err := metaparser.ParseGrammar(src)
	require.NoError(t, err)

	rendered := metaparser.RenderGrammar(g)

	g2, err := metaparser.ParseGrammar(rendered)
	require.NoErrorf(t, err, "rendered source:\n%s", rendered)

	if diff := cmp.Diff(g, g2); diff != "" {
		t.Fatalf("round trip changed the grammar (-want +got):\n%s\nrendered source:\n%s", diff, rendered)
	}
}

func TestRenderExprPreservesQuoteStyle(t *testing.T) {
	src := `grammar G { r = 'single' }`
	g, err := metaparser.ParseGrammar(src)
	require.NoError(t, err)

	rendered := metaparser.RenderExpr(g.Rules[0].Pattern)
	assert.Equal(t, `'single'`, rendered)
}
