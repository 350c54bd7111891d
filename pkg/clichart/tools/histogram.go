package tools

import (
	"fmt"
	"io"
	"math"

	"github.com/cognicore/clichart/pkg/clichart/data"
	"github.com/cognicore/clichart/pkg/clichart/stats"
)

// HistogramConfig selects the column to bin and how to bin it. Either
// Intervals (at least 2) or IntervalSize (positive) is required.
type HistogramConfig struct {
	Separator    data.Separator
	SkipHeader   bool
	Column       int
	Intervals    int
	IntervalSize float64
	// Cumulative reports running totals rather than per-interval counts.
	Cumulative bool
	Percent    bool
	// Header writes a title row before the intervals.
	Header bool
}

func (c *HistogramConfig) validate() error {
	if c.Intervals < 2 && c.IntervalSize <= 0 {
		return invalidf("Either number of intervals or interval size is required")
	}
	if c.Column < 0 {
		return invalidf("Column number is required")
	}
	return nil
}

// Interval is one histogram bin, [Start, End).
type Interval struct {
	Start   float64
	End     float64
	Count   int
	Percent float64
}

// Histogram reads the configured column from r and bins its values.
func Histogram(r io.Reader, cfg HistogramConfig) ([]Interval, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	values, summary, err := readColumn(r, cfg)
	if err != nil {
		return nil, err
	}
	if summary.Count == 0 {
		return nil, ErrNoData
	}
	return CalculateHistogram(values, summary.Min, summary.Max, cfg), nil
}

func readColumn(r io.Reader, cfg HistogramConfig) ([]float64, stats.Stats, error) {
	lp, err := data.NewLineParser(cfg.Separator)
	if err != nil {
		return nil, stats.Stats{}, invalidf("%s", err)
	}

	var values []float64
	var acc stats.Accumulator
	sc := newScanner(r)
	lineNumber := 0
	for sc.Scan() {
		lineNumber++
		if cfg.SkipHeader && lineNumber == 1 {
			continue
		}
		tokens, err := lp.ParseLine(sc.Text(), lineNumber)
		if err != nil {
			return nil, stats.Stats{}, err
		}
		if len(tokens) == 0 {
			continue
		}
		if cfg.Column >= len(tokens) {
			return nil, stats.Stats{}, &data.InsufficientDataColumnsError{Column: cfg.Column, Line: lineNumber}
		}
		v, err := data.ParseValue(tokens[cfg.Column], lineNumber)
		if err != nil {
			return nil, stats.Stats{}, err
		}
		values = append(values, v.Float())
		acc.AddValue(v.Float())
	}
	if err := sc.Err(); err != nil {
		return nil, stats.Stats{}, &data.ReadError{Line: lineNumber + 1, Err: err}
	}
	return values, acc.Snapshot(), nil
}

// CalculateHistogram bins values spanning [lo, hi]. The maximum falls in
// the last interval.
func CalculateHistogram(values []float64, lo, hi float64, cfg HistogramConfig) []Interval {
	n, size := cfg.Intervals, cfg.IntervalSize
	if n >= 2 {
		size = (hi - lo) / float64(n)
	} else {
		n = int(math.Ceil((hi - lo) / size))
	}
	n = max(n, 1)

	intervals := make([]Interval, n)
	for i := range intervals {
		intervals[i].Start = lo + float64(i)*size
		intervals[i].End = lo + float64(i+1)*size
	}
	for _, v := range values {
		i := n - 1
		if size > 0 {
			i = min(int((v-lo)/size), n-1)
		}
		intervals[i].Count++
	}

	if cfg.Cumulative {
		running := 0
		for i := range intervals {
			running += intervals[i].Count
			intervals[i].Count = running
		}
	}
	if total := len(values); total > 0 {
		for i := range intervals {
			intervals[i].Percent = 100 * float64(intervals[i].Count) / float64(total)
		}
	}
	return intervals
}

// WriteHistogram prints one row per interval: start, end, count and, when
// asked for, the percentage.
func WriteHistogram(w io.Writer, intervals []Interval, cfg HistogramConfig) error {
	sep := " "
	if cfg.Separator == data.SeparatorCSV {
		sep = ", "
	}
	if cfg.Header {
		header := "Interval_Start" + sep + "Interval_End" + sep + "Count"
		if cfg.Percent {
			header += sep + "Percent"
		}
		if _, err := fmt.Fprintln(w, header); err != nil {
			return err
		}
	}
	for _, iv := range intervals {
		row := FormatNumber(iv.Start) + sep + FormatNumber(iv.End) + sep + fmt.Sprint(iv.Count)
		if cfg.Percent {
			row += sep + fmt.Sprintf("%6.3f", iv.Percent)
		}
		if _, err := fmt.Fprintln(w, row); err != nil {
			return err
		}
	}
	return nil
}
