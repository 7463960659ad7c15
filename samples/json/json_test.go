package json_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpeg-lang/tpeg/samples/json"
)

func TestParseScalars(t *testing.T) {
	v, err := json.Parse(`true`)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = json.Parse(`null`)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = json.Parse(`-12.5e2`)
	require.NoError(t, err)
	assert.Equal(t, -1250.0, v)
}

func TestParseString(t *testing.T) {
	v, err := json.Parse(`"a\nb\"c"`)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\"c", v)
}

func TestParseArray(t *testing.T) {
	v, err := json.Parse(`[1, 2, 3]`)
	require.NoError(t, err)
	assert.Equal(t, []any{1.0, 2.0, 3.0}, v)
}

func TestParseObject(t *testing.T) {
	v, err := json.Parse(`{"a": 1, "b": [true, false]}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1.0, "b": []any{true, false}}, v)
}

func TestParseNestedAndWhitespace(t *testing.T) {
	v, err := json.Parse("  { \"x\" : { \"y\" : [ ] } }  ")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": map[string]any{"y": []any{}}}, v)
}

func TestParseRejectsTrailingGarbage(t *testing.T) {
	_, err := json.Parse(`{"a": 1} garbage`)
	require.Error(t, err)
}
