package config

import (
	"fmt"
	"strings"

	"github.com/cognicore/clichart/pkg/clichart/data"
)

// XType says how the first listed column is interpreted.
type XType string

const (
	XTypeDateTime XType = "datetime"
	XTypeValue    XType = "value"
	XTypeNone     XType = "none"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 600

	MinLineWeight = 1
	MaxLineWeight = 5
)

// DefaultColumns is x in column 0 and a single series in column 1.
var DefaultColumns = []int{0, 1}

// Options is everything needed to generate one chart.
type Options struct {
	Separator  data.Separator `yaml:"separator"`
	DateFormat string         `yaml:"dateformat"`
	HasHeader  bool           `yaml:"hasheader"`

	IgnoreMissingColumns  bool `yaml:"ignoremissing"`
	IgnoreEmptyValues     bool `yaml:"ignoreempty"`
	IgnoreDuplicateValues bool `yaml:"ignoredup"`

	// Columns lists 0-based indexes, x first unless XType is none.
	Columns  []int `yaml:"columnlist"`
	Columns2 []int `yaml:"columnlist2,omitempty"`
	XType    XType `yaml:"xtype"`

	InputPath  string `yaml:"inputpath,omitempty"`
	OutputPath string `yaml:"outputpath,omitempty"`

	Title   string `yaml:"title,omitempty"`
	XTitle  string `yaml:"xtitle,omitempty"`
	YTitle  string `yaml:"ytitle,omitempty"`
	YTitle2 string `yaml:"ytitle2,omitempty"`

	MinY         *int `yaml:"miny,omitempty"`
	MaxY         *int `yaml:"maxy,omitempty"`
	MinY2        *int `yaml:"miny2,omitempty"`
	MaxY2        *int `yaml:"maxy2,omitempty"`
	ForceYRange  bool `yaml:"forceyrange"`
	ForceYRange2 bool `yaml:"forceyrange2"`

	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	Bar         bool `yaml:"bar"`
	Bar2        bool `yaml:"bar2"`
	DataPoints  bool `yaml:"datapoints"`
	DataPoints2 bool `yaml:"datapoints2"`

	// Zero means the renderer default.
	LineWeight  int `yaml:"lineweight,omitempty"`
	LineWeight2 int `yaml:"lineweight2,omitempty"`

	SeriesTitles  []string         `yaml:"seriestitles,omitempty"`
	SeriesTitles2 []string         `yaml:"seriestitles2,omitempty"`
	Colours       []ColourOverride `yaml:"colours,omitempty"`

	CliServer bool `yaml:"cliserver"`
	Port      int  `yaml:"port,omitempty"`
}

// Defaults returns the options used when nothing is specified.
func Defaults() Options {
	return Options{
		Separator:  data.SeparatorWhitespace,
		DateFormat: data.DefaultDateFormat,
		Columns:    append([]int(nil), DefaultColumns...),
		XType:      XTypeDateTime,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
	}
}

// Clone returns a deep copy of o. Pointer and slice fields are not shared,
// so the copy can be changed, or decoded into, without affecting o.
func (o *Options) Clone() *Options {
	c := *o
	c.Columns = cloneSlice(o.Columns)
	c.Columns2 = cloneSlice(o.Columns2)
	c.MinY = cloneInt(o.MinY)
	c.MaxY = cloneInt(o.MaxY)
	c.MinY2 = cloneInt(o.MinY2)
	c.MaxY2 = cloneInt(o.MaxY2)
	c.SeriesTitles = cloneSlice(o.SeriesTitles)
	c.SeriesTitles2 = cloneSlice(o.SeriesTitles2)
	c.Colours = cloneSlice(o.Colours)
	return &c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append([]T(nil), s...)
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// XColumn returns the column holding x values, or data.NoXColumn.
func (o *Options) XColumn() int {
	if o.XType == XTypeNone || len(o.Columns) == 0 {
		return data.NoXColumn
	}
	return o.Columns[0]
}

// YColumns returns the primary axis columns.
func (o *Options) YColumns() []int {
	if o.XType == XTypeNone {
		return o.Columns
	}
	if len(o.Columns) == 0 {
		return nil
	}
	return o.Columns[1:]
}

// HasSecondAxis reports whether any columns are routed to a second y axis.
func (o *Options) HasSecondAxis() bool {
	return len(o.Columns2) > 0
}

// Validate checks the options that cannot be checked while they are set.
func (o *Options) Validate() error {
	switch o.Separator {
	case data.SeparatorWhitespace, data.SeparatorCSV, "":
	default:
		return invalid("Invalid separator: %s", o.Separator)
	}
	switch o.XType {
	case XTypeDateTime, XTypeValue, XTypeNone:
	default:
		return invalid("Invalid x type: %s", o.XType)
	}
	if len(o.YColumns()) == 0 {
		return invalid("No columns to chart: %s", FormatColumnList(o.Columns))
	}
	for _, c := range append(append([]int(nil), o.Columns...), o.Columns2...) {
		if c < 0 {
			return invalid("Invalid column index: %d", c)
		}
	}
	if o.Width <= 0 || o.Height <= 0 {
		return invalid("Invalid chart size: %dx%d", o.Width, o.Height)
	}
	if err := checkLineWeight("lineweight", o.LineWeight); err != nil {
		return err
	}
	if err := checkLineWeight("lineweight2", o.LineWeight2); err != nil {
		return err
	}
	if o.Port < 0 || o.Port > 65535 {
		return invalid("Invalid port value: %d", o.Port)
	}
	return nil
}

func checkLineWeight(name string, weight int) error {
	if weight != 0 && (weight < MinLineWeight || weight > MaxLineWeight) {
		return invalid("Invalid %s value (must be %d - %d): %d", name, MinLineWeight, MaxLineWeight, weight)
	}
	return nil
}

// ParseColumnList parses a comma-separated list of 0-based column indexes.
func ParseColumnList(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, invalid("Command requires an argument")
	}
	parts := strings.Split(s, ",")
	columns := make([]int, len(parts))
	for i, p := range parts {
		n, err := parseInt(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return nil, invalid("Invalid column index: %s", p)
		}
		columns[i] = n
	}
	return columns, nil
}

// FormatColumnList is the inverse of ParseColumnList.
func FormatColumnList(columns []int) string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = fmt.Sprint(c)
	}
	return strings.Join(parts, ",")
}

// ParseSeriesTitles splits a comma-separated title list, trimming each title.
func ParseSeriesTitles(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
