package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Store persists generated charts.
type Store interface {
	Close() error

	// SaveChart inserts or replaces a chart and returns its ID. An empty ID
	// is assigned a new one.
	SaveChart(ctx context.Context, c Chart) (string, error)
	GetChart(ctx context.Context, id string) (Chart, bool, error)
	// ListCharts returns summaries, newest first.
	ListCharts(ctx context.Context) ([]Summary, error)
	// DeleteChart removes a chart and reports whether it existed.
	DeleteChart(ctx context.Context, id string) (bool, error)
}

// Chart is the dataset behind one chart with its presentation settings.
type Chart struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title,omitempty" yaml:"title,omitempty"`
	XTitle    string    `json:"xTitle,omitempty" yaml:"xtitle,omitempty"`
	XType     string    `json:"xType" yaml:"xtype"`
	Width     int       `json:"width" yaml:"width"`
	Height    int       `json:"height" yaml:"height"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
	Axes      []Axis    `json:"axes" yaml:"axes"`
	// Colours are overrides in "index:rrggbb" form.
	Colours []string `json:"colours,omitempty" yaml:"colours,omitempty"`
	Series  []Series `json:"series" yaml:"series"`
}

// Axis holds the settings of one y axis. Index 0 is the primary axis.
type Axis struct {
	Index      int    `json:"index" yaml:"index"`
	Title      string `json:"title,omitempty" yaml:"title,omitempty"`
	MinY       *int   `json:"minY,omitempty" yaml:"miny,omitempty"`
	MaxY       *int   `json:"maxY,omitempty" yaml:"maxy,omitempty"`
	ForceRange bool   `json:"forceRange,omitempty" yaml:"forcerange,omitempty"`
	Bar        bool   `json:"bar,omitempty" yaml:"bar,omitempty"`
	DataPoints bool   `json:"dataPoints,omitempty" yaml:"datapoints,omitempty"`
	LineWeight int    `json:"lineWeight,omitempty" yaml:"lineweight,omitempty"`
}

// Series is one column of data on an axis.
type Series struct {
	Axis   int     `json:"axis" yaml:"axis"`
	Index  int     `json:"index" yaml:"index"`
	Title  string  `json:"title" yaml:"title"`
	Points []Point `json:"points" yaml:"points"`
}

// Point is one data point. Time x values are Unix milliseconds.
type Point struct {
	X    float64 `json:"x" yaml:"x"`
	Y    float64 `json:"y" yaml:"y"`
	Null bool    `json:"null,omitempty" yaml:"null,omitempty"`
}

// Summary describes a stored chart without its points.
type Summary struct {
	ID          string
	Title       string
	CreatedAt   time.Time
	SeriesCount int
	PointCount  int
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a new lexically sortable chart ID.
func NewID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), entropy).String()
}

// PointCount totals the points of all series.
func (c *Chart) PointCount() int {
	n := 0
	for _, s := range c.Series {
		n += len(s.Points)
	}
	return n
}

// Summarize returns the summary of c.
func (c *Chart) Summarize() Summary {
	return Summary{
		ID:          c.ID,
		Title:       c.Title,
		CreatedAt:   c.CreatedAt,
		SeriesCount: len(c.Series),
		PointCount:  c.PointCount(),
	}
}
