package ast_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpeg-lang/tpeg/ast"
)

func TestNewSequenceCollapsesSingleton(t *testing.T) {
	lit := &ast.StringLiteral{Value: "a", Quote: '"'}

	expr, err := ast.NewSequence(lit)
	require.NoError(t, err)
	assert.Same(t, lit, expr)
}

func TestNewSequenceRejectsEmpty(t *testing.T) {
	_, err := ast.NewSequence()
	require.Error(t, err)
}

func TestNewSequenceKeepsMultiple(t *testing.T) {
	a := &ast.StringLiteral{Value: "a", Quote: '"'}
	b := &ast.StringLiteral{Value: "b", Quote: '"'}

	expr, err := ast.NewSequence(a, b)
	require.NoError(t, err)

	seq, ok := expr.(*ast.Sequence)
	require.True(t, ok)
	assert.Len(t, seq.Elements, 2)
}

func TestNewChoiceCollapsesSingleton(t *testing.T) {
	lit := &ast.StringLiteral{Value: "a", Quote: '"'}
	expr, err := ast.NewChoice(lit)
	require.NoError(t, err)
	assert.Same(t, lit, expr)
}

func TestNewCharacterClassRejectsInvertedRange(t *testing.T) {
	_, err := ast.NewCharacterClass(false, ast.CharRange{Start: 'z', End: 'a', HasEnd: true})
	require.Error(t, err)
}

func TestNewQuantifiedRejectsMaxBelowMin(t *testing.T) {
	max := 1
	_, err := ast.NewQuantified(&ast.AnyChar{}, 2, &max)
	require.Error(t, err)
}

func TestNewGrammarRejectsDuplicateRuleNames(t *testing.T) {
	rules := []ast.Rule{
		ast.NewRule("a", &ast.AnyChar{}),
		ast.NewRule("a", &ast.AnyChar{}),
	}
	_, err := ast.NewGrammar("G", nil, rules)
	require.Error(t, err)
}

func TestGrammarPreservesAnnotationOrderAndDuplicateKeys(t *testing.T) {
	anns := []ast.Annotation{
		{Key: "version", Value: "1.0"},
		{Key: "version", Value: "2.0"},
	}
	g, err := ast.NewGrammar("G", anns, nil)
	require.NoError(t, err)
	assert.Equal(t, anns, g.Annotations)
}

func TestExprStructuralEquality(t *testing.T) {
	a := &ast.Plus{Expression: &ast.CharacterClass{
		Ranges:  []ast.CharRange{{Start: '0', End: '9', HasEnd: true}},
		Negated: false,
	}}
	b := &ast.Plus{Expression: &ast.CharacterClass{
		Ranges:  []ast.CharRange{{Start: '0', End: '9', HasEnd: true}},
		Negated: false,
	}}

	assert.True(t, cmp.Equal(a, b))
}
