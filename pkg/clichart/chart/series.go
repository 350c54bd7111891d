package chart

import (
	"fmt"

	"github.com/cognicore/clichart/pkg/clichart/data"
	"github.com/cognicore/clichart/pkg/clichart/internalerr"
)

// Point is one y value at an x position. A null Y marks a line with no data
// for the series.
type Point struct {
	X data.X
	Y data.Value
}

// Series holds the points of one column, in input order. Time series allow
// one point per second; numeric x series accept repeated x values, as a
// scatter of points does.
type Series struct {
	Title  string
	Points []Point

	seconds map[int64]struct{}
}

func newSeries(title string) *Series {
	return &Series{Title: title, seconds: make(map[int64]struct{})}
}

// Has reports whether a time point in the same second as x already exists.
// It is always false for numeric x.
func (s *Series) Has(x data.X) bool {
	if !x.IsTime() {
		return false
	}
	_, ok := s.seconds[x.Time().Unix()]
	return ok
}

func (s *Series) add(x data.X, y data.Value) bool {
	if x.IsTime() {
		sec := x.Time().Unix()
		if _, ok := s.seconds[sec]; ok {
			return false
		}
		s.seconds[sec] = struct{}{}
	}
	s.Points = append(s.Points, Point{X: x, Y: y})
	return true
}

// DuplicateXError reports a second point in the same second of a time series.
type DuplicateXError struct {
	Series string
	X      data.X
	Line   int
}

func (e *DuplicateXError) Error() string {
	return fmt.Sprintf("Duplicate x value %s for series %s, line %d", e.X, e.Series, e.Line)
}

func (e *DuplicateXError) Is(target error) bool { return target == internalerr.ErrInvalidData }
