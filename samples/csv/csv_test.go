package csv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpeg-lang/tpeg/samples/csv"
)

func TestParseSimpleRows(t *testing.T) {
	rows, err := csv.Parse("a,b,c\n1,2,3")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b", "c"}, {"1", "2", "3"}}, rows)
}

func TestParseQuotedFieldWithEscapedQuote(t *testing.T) {
	rows, err := csv.Parse(`name,note` + "\n" + `Alice,"she said ""hi"""`)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"name", "note"}, {"Alice", `she said "hi"`}}, rows)
}

func TestParseQuotedFieldWithComma(t *testing.T) {
	rows, err := csv.Parse(`"a,b",c`)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a,b", "c"}}, rows)
}

func TestParseTrailingNewline(t *testing.T) {
	rows, err := csv.Parse("a,b\n")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}}, rows)
}

func TestParseRejectsUnterminatedQuotedField(t *testing.T) {
	_, err := csv.Parse(`"unterminated`)
	require.Error(t, err)
}
