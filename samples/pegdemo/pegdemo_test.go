package pegdemo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpeg-lang/tpeg/astgen"
	"github.com/tpeg-lang/tpeg/samples/pegdemo"
)

func TestParseProducesExpectedRules(t *testing.T) {
	g, err := pegdemo.Parse()
	require.NoError(t, err)
	assert.Equal(t, "PegDemo", g.Name)
	assert.ElementsMatch(t, []string{"list", "item", "number", "identifier"}, g.RuleNames())
}

func TestGenerateReferencesEveryRule(t *testing.T) {
	result, err := pegdemo.Generate(astgen.DefaultConfig())
	require.NoError(t, err)
	for _, name := range []string{"list", "item", "number", "identifier"} {
		assert.Contains(t, result.Code, "func "+name+"(")
	}
	assert.ElementsMatch(t, []string{"list", "item", "number", "identifier"}, result.Exports)
}

func TestGenerateIsDeterministic(t *testing.T) {
	first, err := pegdemo.Generate(astgen.DefaultConfig())
	require.NoError(t, err)
	second, err := pegdemo.Generate(astgen.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, first.Code, second.Code)
}
