package data

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/clichart/pkg/clichart/internalerr"
)

type event struct {
	sink    string
	kind    string
	headers []string
	x       X
	values  []Value
	line    int
}

// recorder is a DataSink appending to a log shared between sinks, so tests
// can check the interleaving of primary and secondary events.
type recorder struct {
	name string
	log  *[]event
	err  error
}

func newRecorders(names ...string) ([]*recorder, *[]event) {
	log := &[]event{}
	sinks := make([]*recorder, len(names))
	for i, n := range names {
		sinks[i] = &recorder{name: n, log: log}
	}
	return sinks, log
}

func (r *recorder) HeaderParsed(headers []string) error {
	*r.log = append(*r.log, event{sink: r.name, kind: "header", headers: headers})
	return r.err
}

func (r *recorder) DataParsed(x X, values []Value, lineNumber int) error {
	*r.log = append(*r.log, event{sink: r.name, kind: "data", x: x, values: values, line: lineNumber})
	return r.err
}

func (r *recorder) ParsingFinished() {
	*r.log = append(*r.log, event{sink: r.name, kind: "finished"})
}

func floats(values []Value) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v.Float()
	}
	return out
}

func kinds(values []Value) []Kind {
	out := make([]Kind, len(values))
	for i, v := range values {
		out[i] = v.Kind()
	}
	return out
}

func timeConfig(t *testing.T, columns []int) Config {
	t.Helper()
	xp, err := NewTimeXParser("HH:mm", time.UTC)
	require.NoError(t, err)
	return Config{
		LineParser: WhitespaceLineParser{},
		XParser:    xp,
		XColumn:    0,
		YColumns:   columns,
	}
}

const timeData = "00:17 0.01 17 4.35\n07:32 .33 21 1.125\n23:59 999 7 16.3\n"

func TestParseEndToEnd(t *testing.T) {
	sinks, log := newRecorders("primary")
	p, err := NewParser(timeConfig(t, []int{1, 2, 3}), sinks[0])
	require.NoError(t, err)

	require.NoError(t, p.Parse(strings.NewReader(timeData)))
	require.Len(t, *log, 4)

	wantTimes := []string{"00:17", "07:32", "23:59"}
	wantValues := [][]float64{{0.01, 17, 4.35}, {0.33, 21, 1.125}, {999, 7, 16.3}}
	wantKinds := [][]Kind{{Float, Int, Float}, {Float, Int, Float}, {Int, Int, Float}}

	for i := 0; i < 3; i++ {
		ev := (*log)[i]
		assert.Equal(t, "data", ev.kind)
		assert.Equal(t, i+1, ev.line)
		require.True(t, ev.x.IsTime())
		assert.Equal(t, wantTimes[i], ev.x.Time().Format("15:04"))
		assert.Equal(t, wantValues[i], floats(ev.values))
		assert.Equal(t, wantKinds[i], kinds(ev.values))
	}
	assert.Equal(t, "finished", (*log)[3].kind)
}

func TestParseEmptyInput(t *testing.T) {
	sinks, log := newRecorders("primary")
	p, err := NewParser(timeConfig(t, []int{1}), sinks[0])
	require.NoError(t, err)

	require.NoError(t, p.Parse(strings.NewReader("")))
	require.Len(t, *log, 1)
	assert.Equal(t, "finished", (*log)[0].kind)
}

func TestParseCRLF(t *testing.T) {
	sinks, log := newRecorders("primary")
	p, err := NewParser(timeConfig(t, []int{1, 2, 3}), sinks[0])
	require.NoError(t, err)

	require.NoError(t, p.Parse(strings.NewReader(strings.ReplaceAll(timeData, "\n", "\r\n"))))
	require.Len(t, *log, 4)
	assert.Equal(t, []float64{999, 7, 16.3}, floats((*log)[2].values))
}

func TestParseBlankLinesCountTowardsLineNumbers(t *testing.T) {
	sinks, log := newRecorders("primary")
	cfg := Config{LineParser: WhitespaceLineParser{}, XColumn: NoXColumn, YColumns: []int{0}}
	p, err := NewParser(cfg, sinks[0])
	require.NoError(t, err)

	require.NoError(t, p.Parse(strings.NewReader("5\n\n6\n   \n7\n\n")))
	require.Len(t, *log, 4)

	var lines []int
	for _, ev := range (*log)[:3] {
		lines = append(lines, ev.line)
		// no x column: the line number is the x value
		assert.Equal(t, float64(ev.line), ev.x.Float())
	}
	assert.Equal(t, []int{1, 3, 5}, lines)
}

func TestParseHeaderLine(t *testing.T) {
	sinks, log := newRecorders("primary")
	cfg := timeConfig(t, []int{1, 2, 3})
	cfg.HasHeader = true
	p, err := NewParser(cfg, sinks[0])
	require.NoError(t, err)

	input := "\nTime Header_1 Header_2 Third\n" + timeData
	require.NoError(t, p.Parse(strings.NewReader(input)))

	require.Len(t, *log, 5)
	assert.Equal(t, "header", (*log)[0].kind)
	assert.Equal(t, []string{"Header_1", "Header_2", "Third"}, (*log)[0].headers)
	// blank line 1, header line 2, data from line 3
	assert.Equal(t, 3, (*log)[1].line)
	assert.Equal(t, 5, (*log)[3].line)
}

func TestParseInsufficientHeaders(t *testing.T) {
	sinks, log := newRecorders("primary")
	cfg := timeConfig(t, []int{1, 2, 3, 4})
	cfg.HasHeader = true
	p, err := NewParser(cfg, sinks[0])
	require.NoError(t, err)

	err = p.Parse(strings.NewReader("t h1 h2 h3\n" + timeData))
	var missing *InsufficientHeaderColumnsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, 4, missing.Column)
	assert.Equal(t, 1, missing.Line)
	assert.True(t, strings.HasPrefix(err.Error(), "Not enough header"))
	assert.Empty(t, *log)
}

func TestParseInsufficientHeadersTolerated(t *testing.T) {
	sinks, log := newRecorders("primary")
	cfg := timeConfig(t, []int{1, 2, 3, 4})
	cfg.HasHeader = true
	cfg.IgnoreMissingColumns = true
	p, err := NewParser(cfg, sinks[0])
	require.NoError(t, err)

	require.NoError(t, p.Parse(strings.NewReader("t h1 h2 h3\n07:32 .33 21 1.125\n")))
	require.Len(t, *log, 3)
	assert.Equal(t, []string{"h1", "h2", "h3"}, (*log)[0].headers)
	assert.Equal(t, []float64{0.33, 21, 1.125}, floats((*log)[1].values))
}

func TestParseInteriorMissingHeaderKeepsGap(t *testing.T) {
	sinks, log := newRecorders("primary")
	cfg := Config{
		LineParser:           WhitespaceLineParser{},
		XColumn:              NoXColumn,
		YColumns:             []int{5, 0},
		HasHeader:            true,
		IgnoreMissingColumns: true,
	}
	p, err := NewParser(cfg, sinks[0])
	require.NoError(t, err)

	require.NoError(t, p.Parse(strings.NewReader("a b\n")))
	assert.Equal(t, []string{"", "a"}, (*log)[0].headers)
}

func TestParseInsufficientValues(t *testing.T) {
	sinks, _ := newRecorders("primary")
	p, err := NewParser(timeConfig(t, []int{1, 2, 3, 4}), sinks[0])
	require.NoError(t, err)

	err = p.Parse(strings.NewReader(timeData))
	var missing *InsufficientDataColumnsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, 4, missing.Column)
	assert.Equal(t, 1, missing.Line)
	assert.EqualError(t, err, "Not enough data columns in line 1 - cannot find column 4")
}

func TestParseInsufficientValuesTrimmed(t *testing.T) {
	sinks, log := newRecorders("primary")
	cfg := timeConfig(t, []int{1, 2, 3, 4})
	cfg.IgnoreMissingColumns = true
	p, err := NewParser(cfg, sinks[0])
	require.NoError(t, err)

	require.NoError(t, p.Parse(strings.NewReader(timeData)))
	require.Len(t, *log, 4)
	for _, ev := range (*log)[:3] {
		assert.Len(t, ev.values, 3)
	}
}

func TestParseMissingColumnsAllNull(t *testing.T) {
	sinks, log := newRecorders("primary")
	cfg := Config{
		LineParser:           WhitespaceLineParser{},
		XColumn:              NoXColumn,
		YColumns:             []int{7, 8},
		IgnoreMissingColumns: true,
	}
	p, err := NewParser(cfg, sinks[0])
	require.NoError(t, err)

	require.NoError(t, p.Parse(strings.NewReader("1 2\n")))
	assert.Empty(t, (*log)[0].values)
}

func TestParseEmptyValue(t *testing.T) {
	cfg := timeConfig(t, []int{1, 2, 3})
	cfg.LineParser = CSVLineParser{}
	input := "00:17,0.01,17,4.35\n07:32,.33,,1.125\n23:59,999,7,\n"

	t.Run("error", func(t *testing.T) {
		sinks, _ := newRecorders("primary")
		p, err := NewParser(cfg, sinks[0])
		require.NoError(t, err)

		err = p.Parse(strings.NewReader(input))
		var invalid *InvalidValueError
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, 2, invalid.Line)
		assert.True(t, strings.HasPrefix(err.Error(), "Invalid data value: []"))
	})

	t.Run("tolerated", func(t *testing.T) {
		sinks, log := newRecorders("primary")
		tolerant := cfg
		tolerant.IgnoreEmptyValues = true
		p, err := NewParser(tolerant, sinks[0])
		require.NoError(t, err)

		require.NoError(t, p.Parse(strings.NewReader(input)))
		require.Len(t, *log, 4)
		assert.Equal(t, []Kind{Float, Null, Float}, kinds((*log)[1].values))
		// without missing-column tolerance trailing nulls are kept
		assert.Equal(t, []Kind{Int, Int, Null}, kinds((*log)[2].values))
	})

	t.Run("non-empty garbage still fails", func(t *testing.T) {
		sinks, _ := newRecorders("primary")
		tolerant := cfg
		tolerant.IgnoreEmptyValues = true
		p, err := NewParser(tolerant, sinks[0])
		require.NoError(t, err)

		err = p.Parse(strings.NewReader("00:17,abc,1,2\n"))
		assert.True(t, errors.Is(err, internalerr.ErrInvalidData))
	})
}

func TestParseInvalidX(t *testing.T) {
	sinks, _ := newRecorders("primary")
	p, err := NewParser(timeConfig(t, []int{1, 2, 3}), sinks[0])
	require.NoError(t, err)

	err = p.Parse(strings.NewReader("25:43 0.01 17 4.35\n"))
	var invalid *InvalidXValueError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "25:43", invalid.Token)
	assert.False(t, invalid.Missing)
}

func TestParseMissingXColumn(t *testing.T) {
	sinks, _ := newRecorders("primary")
	cfg := timeConfig(t, []int{0})
	cfg.XColumn = 3
	cfg.IgnoreMissingColumns = true
	p, err := NewParser(cfg, sinks[0])
	require.NoError(t, err)

	err = p.Parse(strings.NewReader("1 2\n"))
	var invalid *InvalidXValueError
	require.True(t, errors.As(err, &invalid))
	assert.True(t, invalid.Missing)
	assert.Equal(t, 3, invalid.Column)
}

func TestParseTwoAxes(t *testing.T) {
	sinks, log := newRecorders("primary", "secondary")
	p, err := NewParser(timeConfig(t, []int{1}), sinks[0])
	require.NoError(t, err)
	require.NoError(t, p.AddSecondAxis([]int{3, 2}, sinks[1]))

	require.NoError(t, p.Parse(strings.NewReader(timeData)))
	require.Len(t, *log, 8)

	for i := 0; i < 3; i++ {
		first, second := (*log)[2*i], (*log)[2*i+1]
		assert.Equal(t, "primary", first.sink)
		assert.Equal(t, "secondary", second.sink)
		assert.Equal(t, i+1, first.line)
		assert.Equal(t, i+1, second.line)
		assert.Len(t, first.values, 1)
		assert.Len(t, second.values, 2)
	}
	assert.Equal(t, []float64{0.01}, floats((*log)[0].values))
	assert.Equal(t, []float64{4.35, 17}, floats((*log)[1].values))

	assert.Equal(t, event{sink: "primary", kind: "finished"}, (*log)[6])
	assert.Equal(t, event{sink: "secondary", kind: "finished"}, (*log)[7])
}

func TestParseTwoAxesHeaders(t *testing.T) {
	sinks, log := newRecorders("primary", "secondary")
	cfg := timeConfig(t, []int{1, 2})
	cfg.HasHeader = true
	p, err := NewParser(cfg, sinks[0])
	require.NoError(t, err)
	require.NoError(t, p.AddSecondAxis([]int{3}, sinks[1]))

	require.NoError(t, p.Parse(strings.NewReader("t a b c\n")))
	require.Len(t, *log, 4)
	assert.Equal(t, event{sink: "primary", kind: "header", headers: []string{"a", "b"}}, (*log)[0])
	assert.Equal(t, event{sink: "secondary", kind: "header", headers: []string{"c"}}, (*log)[1])
}

func TestAddSecondAxisValidation(t *testing.T) {
	sinks, _ := newRecorders("primary", "secondary")
	p, err := NewParser(timeConfig(t, []int{1}), sinks[0])
	require.NoError(t, err)

	assert.ErrorIs(t, p.AddSecondAxis(nil, sinks[1]), internalerr.ErrInvalidConfig)
	assert.ErrorIs(t, p.AddSecondAxis([]int{2}, nil), internalerr.ErrInvalidConfig)

	require.NoError(t, p.Parse(strings.NewReader("")))
	assert.ErrorIs(t, p.AddSecondAxis([]int{2}, sinks[1]), internalerr.ErrParseStarted)
	assert.ErrorIs(t, p.Parse(strings.NewReader("")), internalerr.ErrParseStarted)
}

func TestNewParserValidation(t *testing.T) {
	sinks, _ := newRecorders("primary")
	valid := Config{LineParser: WhitespaceLineParser{}, XColumn: NoXColumn, YColumns: []int{0}}

	bad := []Config{
		{XColumn: NoXColumn, YColumns: []int{0}},
		{LineParser: WhitespaceLineParser{}, XColumn: NoXColumn},
		{LineParser: WhitespaceLineParser{}, XColumn: 0, YColumns: []int{1}},
		{LineParser: WhitespaceLineParser{}, XColumn: -2, YColumns: []int{1}},
		{LineParser: WhitespaceLineParser{}, XColumn: NoXColumn, YColumns: []int{-1}},
	}
	for i, cfg := range bad {
		_, err := NewParser(cfg, sinks[0])
		assert.ErrorIs(t, err, internalerr.ErrInvalidConfig, "config %d", i)
	}

	_, err := NewParser(valid, nil)
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}

func TestParseSinkErrorAborts(t *testing.T) {
	sinks, log := newRecorders("primary")
	sinks[0].err = errors.New("boom")
	p, err := NewParser(timeConfig(t, []int{1}), sinks[0])
	require.NoError(t, err)

	err = p.Parse(strings.NewReader(timeData))
	assert.EqualError(t, err, "boom")
	assert.Len(t, *log, 1)
}

func TestParseMalformedCSVAborts(t *testing.T) {
	sinks, log := newRecorders("primary")
	cfg := timeConfig(t, []int{1})
	cfg.LineParser = CSVLineParser{}
	p, err := NewParser(cfg, sinks[0])
	require.NoError(t, err)

	err = p.Parse(strings.NewReader("00:17,1\n\"07:32,2\n23:59,3\n"))
	var malformed *MalformedLineError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, 2, malformed.Line)
	assert.Len(t, *log, 1)
}

func TestTrimTrailingNulls(t *testing.T) {
	tests := []struct {
		in   []Value
		want int
	}{
		{[]Value{IntValue(1), IntValue(2)}, 2},
		{[]Value{IntValue(1), NullValue}, 1},
		{[]Value{NullValue, IntValue(1), NullValue, NullValue}, 2},
		{[]Value{NullValue}, 0},
		{[]Value{}, 0},
	}
	for _, tt := range tests {
		assert.Len(t, trimTrailingNulls(tt.in), tt.want)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestParseReadError(t *testing.T) {
	sinks, log := newRecorders("primary")
	p, err := NewParser(timeConfig(t, []int{1}), sinks[0])
	require.NoError(t, err)

	err = p.Parse(failingReader{})
	var readErr *ReadError
	require.True(t, errors.As(err, &readErr))
	assert.Equal(t, 1, readErr.Line)
	assert.False(t, errors.Is(err, internalerr.ErrInvalidData))
	assert.Empty(t, *log)
}
