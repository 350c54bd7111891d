package tools

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/clichart/pkg/clichart/internalerr"
)

const priorities = `01:24 Ham  72  The end  6.3
01:24 Ham  12  some words  0.123
12:32 Egg  999   zzz aa   9.99
12:33 Egg  33   more words   3.21
`

func discrete(t *testing.T, cfg DiscreteStatsConfig) []string {
	t.Helper()
	var out strings.Builder
	require.NoError(t, DiscreteStats(strings.NewReader(priorities), &out, cfg))
	return strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
}

func TestDiscreteStatsCSV(t *testing.T) {
	rows := discrete(t, DiscreteStatsConfig{
		Key:   mustExtractor(t, "s:0:5"),
		Value: mustExtractor(t, "f:1"),
		CSV:   true,
	})
	assert.Equal(t, []string{"Key, Egg, Ham", "01:24, 0, 2", "12:32, 1, 0", "12:33, 1, 0"}, rows)
}

func TestDiscreteStatsSortedText(t *testing.T) {
	rows := discrete(t, DiscreteStatsConfig{
		Key:   mustExtractor(t, "s:0:5"),
		Value: mustExtractor(t, "s:6:9"),
		Sort:  true,
	})
	assert.Equal(t, []string{"Key      Egg       Ham", "01:24 0         2", "12:32 1         0", "12:33 1         0"}, rows)
}

func TestDiscreteStatsQuoted(t *testing.T) {
	rows := discrete(t, DiscreteStatsConfig{
		Key:   mustExtractor(t, "s:0:5"),
		Value: mustExtractor(t, "r:([A-Za-z][a-z]+[^a-z][a-z]+)"),
		CSV:   true,
		Quote: true,
		Sort:  true,
	})
	assert.Equal(t, []string{
		`Key, "The end", "more words", "some words", "zzz aa"`,
		"01:24, 1, 0, 1, 0",
		"12:32, 0, 0, 0, 1",
		"12:33, 0, 1, 0, 0",
	}, rows)
}

func TestDiscreteStatsNeedsKeyAndValue(t *testing.T) {
	err := DiscreteStats(strings.NewReader(priorities), &strings.Builder{}, DiscreteStatsConfig{Key: WholeLine()})
	assert.ErrorIs(t, err, internalerr.ErrInvalidOptions)
}
