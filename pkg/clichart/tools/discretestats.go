package tools

import (
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// DiscreteStatsConfig describes a discretestats run. Key and Value are
// required.
type DiscreteStatsConfig struct {
	Key   *Extractor
	Value *Extractor
	Match *regexp.Regexp
	CSV   bool
	// Quote wraps keys and value headings containing spaces, commas or
	// quotes in double quotes.
	Quote bool
	Sort  bool
}

// DiscreteStats counts each distinct value per key: a heading row of every
// value seen, sorted, then one row of counts per key.
func DiscreteStats(r io.Reader, w io.Writer, cfg DiscreteStatsConfig) error {
	if cfg.Key == nil || cfg.Value == nil {
		return invalidf("Both a key and a value specification are required")
	}

	var order []string
	counts := make(map[string]map[string]int)
	seen := make(map[string]bool)

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
		value, err := cfg.Value.Extract(line, lineNumber)
		if err != nil {
			return err
		}
		if counts[key] == nil {
			counts[key] = make(map[string]int)
			order = append(order, key)
		}
		counts[key][value]++
		seen[value] = true
	}
	if err := sc.Err(); err != nil {
		return err
	}

	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	slices.Sort(values)
	if cfg.Sort {
		slices.Sort(order)
	}

	headings := make([]string, len(values))
	for i, v := range values {
		headings[i] = quoteField(v, cfg.Quote)
	}
	if err := writeKeyedRow(w, quoteField("Key", cfg.Quote), headings, cfg.CSV); err != nil {
		return err
	}
	for _, key := range order {
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = strconv.Itoa(counts[key][v])
		}
		if err := writeKeyedRow(w, quoteField(key, cfg.Quote), row, cfg.CSV); err != nil {
			return err
		}
	}
	return nil
}

func writeKeyedRow(w io.Writer, key string, values []string, csv bool) error {
	sep := " "
	if csv {
		sep = ", "
	}
	_, err := fmt.Fprintln(w, key+sep+joinFields(values, csv))
	return err
}

func quoteField(s string, quote bool) string {
	if !quote || !strings.ContainsAny(s, ` ,"`) {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
