package tools

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/cognicore/clichart/pkg/clichart/data"
	"github.com/cognicore/clichart/pkg/clichart/stats"
)

// AggregateConfig describes one aggregate run.
type AggregateConfig struct {
	Separator  data.Separator
	SkipHeader bool
	// Columns are the output expressions, e.g. "1:max", "0:k", "1:tot / 2:cnt".
	Columns []string
	// Prefix and Suffix values are written around every output row.
	Prefix []string
	Suffix []string
	// Silent outputs nothing, rather than failing, when there is no data.
	Silent bool
}

// Aggregator holds the compiled form of an AggregateConfig.
type Aggregator struct {
	cfg     AggregateConfig
	lp      data.LineParser
	exprs   []*columnExpr
	columns []int
	keys    []int
}

// NewAggregator validates cfg and compiles its column expressions.
func NewAggregator(cfg AggregateConfig) (*Aggregator, error) {
	if len(cfg.Columns) == 0 {
		return nil, invalidf("Output column specification is required")
	}
	lp, err := data.NewLineParser(cfg.Separator)
	if err != nil {
		return nil, invalidf("%s", err)
	}

	a := &Aggregator{cfg: cfg, lp: lp}
	for _, text := range cfg.Columns {
		e, err := parseColumnExpr(text)
		if err != nil {
			return nil, err
		}
		a.exprs = append(a.exprs, e)
		for _, ref := range e.refs {
			if ref.kind == AggKey {
				if !slices.Contains(a.keys, ref.column) {
					a.keys = append(a.keys, ref.column)
				}
			} else if !slices.Contains(a.columns, ref.column) {
				a.columns = append(a.columns, ref.column)
			}
		}
	}
	return a, nil
}

type keyedRow struct {
	key     []string
	columns map[int]*stats.Accumulator
}

// Run aggregates all of r and writes one row per key, sorted by key, or a
// single row when no key column was named.
func (a *Aggregator) Run(r io.Reader, w io.Writer) error {
	rows := make(map[string]*keyedRow)

	sc := newScanner(r)
	lineNumber := 0
	for sc.Scan() {
		lineNumber++
		if a.cfg.SkipHeader && lineNumber == 1 {
			continue
		}
		tokens, err := a.lp.ParseLine(sc.Text(), lineNumber)
		if err != nil {
			return err
		}
		if len(tokens) == 0 {
			continue
		}
		if err := a.accumulate(rows, tokens, lineNumber); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return &data.ReadError{Line: lineNumber + 1, Err: err}
	}

	if len(rows) == 0 {
		if a.cfg.Silent {
			return nil
		}
		return ErrNoData
	}
	return a.write(w, rows)
}

func (a *Aggregator) accumulate(rows map[string]*keyedRow, tokens []string, lineNumber int) error {
	key := make([]string, len(a.keys))
	for i, column := range a.keys {
		v, err := columnValue(tokens, column, lineNumber)
		if err != nil {
			return err
		}
		key[i] = v
	}
	id := strings.Join(key, "\x00")
	row, ok := rows[id]
	if !ok {
		row = &keyedRow{key: key, columns: make(map[int]*stats.Accumulator, len(a.columns))}
		for _, column := range a.columns {
			row.columns[column] = &stats.Accumulator{}
		}
		rows[id] = row
	}

	for _, column := range a.columns {
		text, err := columnValue(tokens, column, lineNumber)
		if err != nil {
			return err
		}
		v, err := data.ParseValue(text, lineNumber)
		if err != nil {
			return &DataError{Line: lineNumber, Msg: fmt.Sprintf("invalid number in column %d: %s", column, text)}
		}
		row.columns[column].AddValue(v.Float())
	}
	return nil
}

func columnValue(tokens []string, column, lineNumber int) (string, error) {
	i := column
	if i < 0 {
		i += len(tokens)
	}
	if i < 0 || i >= len(tokens) {
		return "", &data.InsufficientDataColumnsError{Column: column, Line: lineNumber}
	}
	return tokens[i], nil
}

func (a *Aggregator) write(w io.Writer, rows map[string]*keyedRow) error {
	sorted := make([]*keyedRow, 0, len(rows))
	for _, row := range rows {
		sorted = append(sorted, row)
	}
	slices.SortFunc(sorted, func(x, y *keyedRow) int { return slices.Compare(x.key, y.key) })

	for _, row := range sorted {
		values := append([]string{}, a.cfg.Prefix...)
		values = append(values, row.key...)
		for _, e := range a.exprs {
			if e.isKey() {
				continue
			}
			v, err := e.root.eval(func(ref colRef) float64 { return aggregateValue(row.columns[ref.column], ref.kind) })
			if err != nil {
				return invalidf("Invalid expression: %s", e.text)
			}
			values = append(values, FormatNumber(v))
		}
		values = append(values, a.cfg.Suffix...)

		var line string
		if a.cfg.Separator == data.SeparatorCSV {
			line = strings.Join(values, ", ")
		} else {
			var b strings.Builder
			for _, v := range values {
				fmt.Fprintf(&b, "%10s", v)
			}
			line = b.String()
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func aggregateValue(acc *stats.Accumulator, kind string) float64 {
	s := acc.Snapshot()
	switch kind {
	case AggMin:
		return s.Min
	case AggMax:
		return s.Max
	case AggAvg:
		return s.Mean
	case AggCount:
		return float64(s.Count)
	case AggTotal:
		return s.Total
	case AggFirst:
		return s.First
	case AggLast:
		return s.Last
	case AggSD:
		return s.StdDev
	}
	return 0
}

// Aggregate is NewAggregator followed by Run.
func Aggregate(r io.Reader, w io.Writer, cfg AggregateConfig) error {
	a, err := NewAggregator(cfg)
	if err != nil {
		return err
	}
	return a.Run(r, w)
}
