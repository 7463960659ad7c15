package arith_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpeg-lang/tpeg/samples/arith"
)

func TestEvaluateOperatorPrecedence(t *testing.T) {
	v, err := arith.Evaluate("1 + 2 * 3")
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestEvaluateLeftAssociativity(t *testing.T) {
	v, err := arith.Evaluate("10 - 2 - 3")
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestEvaluateParentheses(t *testing.T) {
	v, err := arith.Evaluate("(1 + 2) * 3")
	require.NoError(t, err)
	assert.Equal(t, 9, v)
}

func TestEvaluateDivision(t *testing.T) {
	v, err := arith.Evaluate("20 / 4 / 5")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestEvaluateRejectsTrailingGarbage(t *testing.T) {
	_, err := arith.Evaluate("1 + 2 )")
	require.Error(t, err)
}

func TestEvaluateRejectsEmptyInput(t *testing.T) {
	_, err := arith.Evaluate("")
	require.Error(t, err)
}
