package tools

import (
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/cognicore/clichart/pkg/clichart/stats"
)

// OutputColumn is one column of linestats output: the key, the key count,
// or a statistic of one value field.
type OutputColumn struct {
	// Field indexes the value extractors; -1 for the key columns.
	Field int
	// Kind is "k", "cnt", "av", "min", "max" or "tot".
	Kind string
}

// DefaultOutputColumns lists each key with its count.
var DefaultOutputColumns = []OutputColumn{{Field: -1, Kind: "k"}, {Field: -1, Kind: "cnt"}}

// ParseOutputColumns parses a list such as "k,k:cnt,0:av,1:max".
func ParseOutputColumns(spec string) ([]OutputColumn, error) {
	var out []OutputColumn
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		switch part {
		case "k":
			out = append(out, OutputColumn{Field: -1, Kind: "k"})
			continue
		case "k:cnt":
			out = append(out, OutputColumn{Field: -1, Kind: "cnt"})
			continue
		}
		field, kind, ok := strings.Cut(part, ":")
		index, err := strconv.Atoi(field)
		if !ok || err != nil || index < 0 || !slices.Contains([]string{"av", "min", "max", "tot"}, kind) {
			return nil, invalidf("Invalid output column specification [%s]", part)
		}
		out = append(out, OutputColumn{Field: index, Kind: kind})
	}
	return out, nil
}

// LineStatsConfig describes how lines are keyed and what is measured.
type LineStatsConfig struct {
	// Key extracts the grouping key; nil groups by the whole line.
	Key    *Extractor
	Values []*Extractor
	// Match, when set, skips lines it does not match.
	Match   *regexp.Regexp
	Columns []OutputColumn
	CSV     bool
	// HeaderLine is written verbatim before the results.
	HeaderLine string
	Sort       bool
}

func (c *LineStatsConfig) validate() error {
	for _, col := range c.Columns {
		if col.Field >= len(c.Values) {
			return invalidf("Invalid output field index [%d] - there are only %d fields available", col.Field, len(c.Values))
		}
	}
	return nil
}

type keyStats struct {
	count  int
	fields []stats.Accumulator
}

// LineStats groups the lines of r by key and writes one row per key.
// Keys appear in order of first sight unless Sort is set.
func LineStats(r io.Reader, w io.Writer, cfg LineStatsConfig) error {
	if cfg.Columns == nil {
		cfg.Columns = DefaultOutputColumns
	}
	if cfg.Key == nil {
		cfg.Key = WholeLine()
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	var order []string
	byKey := make(map[string]*keyStats)

	sc := newScanner(r)
	lineNumber := 0
	for sc.Scan() {
		lineNumber++
		line := strings.TrimSpace(sc.Text())
		if line == "" || cfg.Match != nil && !cfg.Match.MatchString(line) {
			continue
		}
		key, err := cfg.Key.Extract(line, lineNumber)
		if err != nil {
			return err
		}
		ks, ok := byKey[key]
		if !ok {
			ks = &keyStats{fields: make([]stats.Accumulator, len(cfg.Values))}
			byKey[key] = ks
			order = append(order, key)
		}
		ks.count++
		for i, ex := range cfg.Values {
			text, err := ex.Extract(line, lineNumber)
			if err != nil {
				return err
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
			if err != nil {
				return &DataError{Line: lineNumber, Msg: fmt.Sprintf("non-numeric value [%s] for %s", text, ex)}
			}
			ks.fields[i].AddValue(v)
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}

	if cfg.HeaderLine != "" {
		if _, err := fmt.Fprintln(w, cfg.HeaderLine); err != nil {
			return err
		}
	}
	if cfg.Sort {
		slices.Sort(order)
	}
	for _, key := range order {
		row := lineStatsRow(key, byKey[key], cfg.Columns)
		if _, err := fmt.Fprintln(w, joinFields(row, cfg.CSV)); err != nil {
			return err
		}
	}
	return nil
}

func lineStatsRow(key string, ks *keyStats, columns []OutputColumn) []string {
	row := make([]string, 0, len(columns))
	for _, col := range columns {
		if col.Field < 0 {
			if col.Kind == "k" {
				row = append(row, key)
			} else {
				row = append(row, strconv.Itoa(ks.count))
			}
			continue
		}
		s := ks.fields[col.Field].Snapshot()
		var v float64
		switch col.Kind {
		case "av":
			v = s.Mean
		case "min":
			v = s.Min
		case "max":
			v = s.Max
		case "tot":
			v = s.Total
		}
		row = append(row, FormatNumber(v))
	}
	return row
}
