package tools

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/clichart/pkg/clichart/internalerr"
)

const accessLog = `GET /a 10
GET /b 30
POST /a 5

GET /a 20
`

func mustExtractor(t *testing.T, spec string) *Extractor {
	t.Helper()
	e, err := ParseExtractor(spec)
	require.NoError(t, err, spec)
	return e
}

func TestExtractor(t *testing.T) {
	tests := []struct {
		spec, line, want string
	}{
		{"s:0:3", "abcdef", "abc"},
		{"s:2", "abcdef", "cdef"},
		{"s:-3", "abcdef", "def"},
		{"s:1:-1", "abcdef", "bcde"},
		{"f:1", "one  two three", "two"},
		{"r:id=(\\d+)", "user id=42 ok", "42"},
		{"r:\\d+", "took 125ms", "125"},
	}
	for _, tt := range tests {
		got, err := mustExtractor(t, tt.spec).Extract(tt.line, 1)
		require.NoError(t, err, tt.spec)
		assert.Equal(t, tt.want, got, tt.spec)
	}

	for _, spec := range []string{"x", "s:a", "f:-1", "r:(", "q:1"} {
		_, err := ParseExtractor(spec)
		assert.ErrorIs(t, err, internalerr.ErrInvalidOptions, spec)
	}

	for _, spec := range []string{"s:10", "f:5", "r:zzz"} {
		_, err := mustExtractor(t, spec).Extract("abcdef", 3)
		assert.ErrorIs(t, err, internalerr.ErrInvalidData, spec)
		assert.Contains(t, err.Error(), "Line 3")
	}
}

func TestLineStatsDefaultsToLineCounts(t *testing.T) {
	var out strings.Builder
	err := LineStats(strings.NewReader("b\na\nb\n"), &out, LineStatsConfig{CSV: true})
	require.NoError(t, err)
	assert.Equal(t, "b, 2\na, 1\n", out.String())
}

func TestLineStatsKeyedValues(t *testing.T) {
	columns, err := ParseOutputColumns("k, k:cnt, 0:av, 0:max, 0:min, 0:tot")
	require.NoError(t, err)

	var out strings.Builder
	err = LineStats(strings.NewReader(accessLog), &out, LineStatsConfig{
		Key:        mustExtractor(t, "f:1"),
		Values:     []*Extractor{mustExtractor(t, "f:2")},
		Columns:    columns,
		CSV:        true,
		HeaderLine: "path, hits, avg, max, min, total",
		Sort:       true,
	})
	require.NoError(t, err)
	assert.Equal(t, "path, hits, avg, max, min, total\n/a, 3, 11.6667, 20, 5, 35\n/b, 1, 30, 30, 30, 30\n", out.String())
}

func TestLineStatsTextLayout(t *testing.T) {
	columns, err := ParseOutputColumns("k,k:cnt,0:av,0:max")
	require.NoError(t, err)

	var out strings.Builder
	err = LineStats(strings.NewReader(accessLog), &out, LineStatsConfig{
		Key:     mustExtractor(t, "f:1"),
		Values:  []*Extractor{mustExtractor(t, "f:2")},
		Columns: columns,
		Match:   regexp.MustCompile("^GET"),
	})
	require.NoError(t, err)
	assert.Equal(t, "      /a  2         15        20\n      /b  1         30        30\n", out.String())
}

func TestLineStatsRegexKey(t *testing.T) {
	var out strings.Builder
	err := LineStats(strings.NewReader(accessLog), &out, LineStatsConfig{
		Key:  mustExtractor(t, `r:^(\w+)`),
		CSV:  true,
		Sort: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "GET, 3\nPOST, 1\n", out.String())
}

func TestLineStatsErrors(t *testing.T) {
	_, err := ParseOutputColumns("k,0:median")
	assert.ErrorIs(t, err, internalerr.ErrInvalidOptions)

	columns, err := ParseOutputColumns("k,1:av")
	require.NoError(t, err)
	err = LineStats(strings.NewReader(accessLog), &strings.Builder{}, LineStatsConfig{
		Values:  []*Extractor{mustExtractor(t, "f:2")},
		Columns: columns,
	})
	assert.ErrorIs(t, err, internalerr.ErrInvalidOptions)

	err = LineStats(strings.NewReader(accessLog), &strings.Builder{}, LineStatsConfig{
		Values: []*Extractor{mustExtractor(t, "f:0")},
	})
	assert.ErrorIs(t, err, internalerr.ErrInvalidData)
}
