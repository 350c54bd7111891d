package tools

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"
)

const significantDigits = 6

// maxLineLength bounds a single input line.
const maxLineLength = 1 << 20

// FormatNumber prints v with six significant digits, keeping trailing
// zeros. Whole numbers and anything above a million print as integers.
func FormatNumber(v float64) string {
	q := math.Trunc(v)
	if v == q || math.Abs(q) > math.Pow10(significantDigits) {
		return strconv.FormatInt(int64(q), 10)
	}
	digits := 0
	if q != 0 {
		digits = len(strconv.FormatInt(int64(math.Abs(q)), 10))
	}
	return strconv.FormatFloat(v, 'f', significantDigits-digits, 64)
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// joinFields lays out one output row. CSV rows are comma separated; text
// rows left-align numbers and right-align everything else in 8 columns.
func joinFields(values []string, csv bool) string {
	if csv {
		return strings.Join(values, ", ")
	}
	padded := make([]string, len(values))
	for i, v := range values {
		if isNumeric(v) {
			padded[i] = padRight(v, 8)
		} else {
			padded[i] = padLeft(v, 8)
		}
	}
	return strings.TrimRight(strings.Join(padded, "  "), " ")
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

func padLeft(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return strings.Repeat(" ", n-len(s)) + s
}

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	return sc
}
