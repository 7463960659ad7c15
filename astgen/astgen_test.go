package astgen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpeg-lang/tpeg/ast"
	"github.com/tpeg-lang/tpeg/astgen"
)

func mustGrammar(t *testing.T, rules ...ast.Rule) *ast.Grammar {
	t.Helper()
	g, err := ast.NewGrammar("G", nil, rules)
	require.NoError(t, err)
	return g
}

func TestGeneratePlusOfCharacterClassWithPrefix(t *testing.T) {
	cc, err := ast.NewCharacterClass(false, ast.CharRange{Start: '0', End: '9', HasEnd: true})
	require.NoError(t, err)
	g := mustGrammar(t, ast.NewRule("number", &ast.Plus{Expression: cc}))

	cfg := astgen.DefaultConfig()
	cfg.NamePrefix = "calc_"
	result, err := astgen.Generate(g, cfg)
	require.NoError(t, err)

	assert.Contains(t, result.Code, "func calc_number(")
	assert.Contains(t, result.Code, "combinator.Plus(combinator.CharacterClass(false, combinator.CharRange{Lo: '0', Hi: '9'}))")
	assert.ElementsMatch(t, []string{"number"}, result.Exports)
	assert.ElementsMatch(t, []string{"Plus", "CharacterClass"}, result.Imports)
}

func TestGenerateChoice(t *testing.T) {
	lit := func(s string) ast.Expr { return &ast.StringLiteral{Value: s, Quote: '"'} }
	choice, err := ast.NewChoice(lit("yes"), lit("no"), lit("maybe"))
	require.NoError(t, err)
	g := mustGrammar(t, ast.NewRule("answer", choice))

	result, err := astgen.Generate(g, astgen.DefaultConfig())
	require.NoError(t, err)
	assert.Contains(t, result.Code, `combinator.Choice(combinator.Literal("yes"), combinator.Literal("no"), combinator.Literal("maybe"))`)
}

func TestGenerateUnresolvedReference(t *testing.T) {
	g := mustGrammar(t, ast.NewRule("top", &ast.Identifier{Name: "numbr"}))
	_, err := astgen.Generate(g, astgen.DefaultConfig())
	require.Error(t, err)
}

func TestGenerateQualifiedReferenceIsNotResolved(t *testing.T) {
	g := mustGrammar(t, ast.NewRule("top", &ast.QualifiedIdentifier{Module: "Other", Name: "rule"}))
	result, err := astgen.Generate(g, astgen.DefaultConfig())
	require.NoError(t, err)
	assert.Contains(t, result.Code, "Other.rule")
}

func TestGenerateMutualRecursion(t *testing.T) {
	// "expr" and "group" reference each other; functions, unlike package
	// vars, tolerate this without an initialization cycle.
	exprRef := &ast.Identifier{Name: "expr"}
	groupRule := ast.NewRule("group", &ast.Sequence{Elements: []ast.Expr{
		&ast.StringLiteral{Value: "(", Quote: '"'},
		exprRef,
		&ast.StringLiteral{Value: ")", Quote: '"'},
	}})
	exprRule := ast.NewRule("expr", &ast.Choice{Alternatives: []ast.Expr{
		&ast.Identifier{Name: "group"},
		&ast.StringLiteral{Value: "x", Quote: '"'},
	}})
	g := mustGrammar(t, exprRule, groupRule)

	result, err := astgen.Generate(g, astgen.DefaultConfig())
	require.NoError(t, err)
	assert.Contains(t, result.Code, "func expr(")
	assert.Contains(t, result.Code, "func group(")
}

func TestConfigFromMapRejectsUnknownKey(t *testing.T) {
	_, err := astgen.ConfigFromMap(map[string]interface{}{"bogus": true})
	require.Error(t, err)
}

func TestConfigFromMapRejectsWrongType(t *testing.T) {
	_, err := astgen.ConfigFromMap(map[string]interface{}{"namePrefix": 42})
	require.Error(t, err)
}

func TestConfigFromMapAppliesOverrides(t *testing.T) {
	cfg, err := astgen.ConfigFromMap(map[string]interface{}{"namePrefix": "x_", "includeImports": false})
	require.NoError(t, err)
	assert.Equal(t, "x_", cfg.NamePrefix)
	assert.False(t, cfg.IncludeImports)
}

func TestGenerateQuantified(t *testing.T) {
	max := 4
	q, err := ast.NewQuantified(&ast.AnyChar{}, 2, &max)
	require.NoError(t, err)
	g := mustGrammar(t, ast.NewRule("r", q))

	result, err := astgen.Generate(g, astgen.DefaultConfig())
	require.NoError(t, err)
	assert.Contains(t, result.Code, "combinator.Quantified(combinator.Any(), 2,")
}

func TestGenerateLabeledExpressionDropsLabel(t *testing.T) {
	g := mustGrammar(t, ast.NewRule("r", &ast.LabeledExpression{Label: "captured", Expression: &ast.AnyChar{}}))
	result, err := astgen.Generate(g, astgen.DefaultConfig())
	require.NoError(t, err)
	assert.Contains(t, result.Code, "combinator.Any()")
	assert.NotContains(t, result.Code, "captured")
}
