package stats

import (
	"math"

	"github.com/cognicore/clichart/pkg/clichart/store"
)

// Accumulator aggregates the y values of one series. Null points are
// counted separately and do not affect the other figures.
type Accumulator struct {
	count int64
	nulls int64
	total float64
	min   float64
	max   float64
	first float64
	last  float64
	// running mean and sum of squared deviations (Welford)
	mean float64
	m2   float64
}

// Add consumes one point.
func (a *Accumulator) Add(p store.Point) {
	if p.Null {
		a.nulls++
		return
	}
	if a.count == 0 {
		a.min, a.max, a.first = p.Y, p.Y, p.Y
	} else {
		a.min = math.Min(a.min, p.Y)
		a.max = math.Max(a.max, p.Y)
	}
	a.count++
	a.total += p.Y
	a.last = p.Y

	delta := p.Y - a.mean
	a.mean += delta / float64(a.count)
	a.m2 += delta * (p.Y - a.mean)
}

// AddValue consumes a bare y value.
func (a *Accumulator) AddValue(y float64) { a.Add(store.Point{Y: y}) }

// Stats are the summary figures of one series.
type Stats struct {
	Axis  int
	Title string
	Count int64
	Nulls int64
	Min   float64
	Max   float64
	Mean  float64
	Total float64
	First float64
	Last  float64
	// StdDev is the population standard deviation.
	StdDev float64
}

// Snapshot returns the figures so far. Everything but Count, Nulls and
// Total is zero until a non-null value has been added.
func (a *Accumulator) Snapshot() Stats {
	s := Stats{Count: a.count, Nulls: a.nulls, Total: a.total}
	if a.count > 0 {
		s.Min, s.Max = a.min, a.max
		s.First, s.Last = a.first, a.last
		s.Mean = a.total / float64(a.count)
		s.StdDev = math.Sqrt(a.m2 / float64(a.count))
	}
	return s
}

// ForChart summarizes every series of c, in chart order.
func ForChart(c *store.Chart) []Stats {
	out := make([]Stats, 0, len(c.Series))
	for _, sr := range c.Series {
		var acc Accumulator
		for _, p := range sr.Points {
			acc.Add(p)
		}
		s := acc.Snapshot()
		s.Axis, s.Title = sr.Axis, sr.Title
		out = append(out, s)
	}
	return out
}
