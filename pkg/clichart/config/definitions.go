package config

import (
	"strconv"
	"strings"

	"github.com/cognicore/clichart/pkg/clichart/data"
)

// Kind describes the argument an option takes.
type Kind int

const (
	// NoArg options set a fixed value, such as the csv separator.
	NoArg Kind = iota
	// Flag options switch a boolean on.
	Flag
	StringArg
	IntArg
	// OptionalIntArg values stay unset unless given.
	OptionalIntArg
	IntListArg
	StringListArg
	ColourListArg
)

// TakesArg reports whether options of this kind need an argument.
func (k Kind) TakesArg() bool {
	return k != NoArg && k != Flag
}

// Definition describes one option shared by the command line and the
// interactive session.
type Definition struct {
	Short string
	Long  string
	Usage string
	Kind  Kind
	// Set applies arg to o. arg is ignored for NoArg and Flag options.
	Set func(o *Options, arg string) error
}

// Name is the long name, or the short one when there is no long name.
func (d *Definition) Name() string {
	if d.Long != "" {
		return d.Long
	}
	return d.Short
}

// Definitions lists every option in usage order.
var Definitions = []Definition{
	{"d", "dateformat", "Format of date/time, in SimpleDateFormat notation (default 'HH:mm')", StringArg,
		setString(func(o *Options, v string) { o.DateFormat = v })},
	{"l", "columnlist", "List of columns, comma-separated, 0-based. X axis value (if any) must be first (default '0,1')", IntListArg,
		setIntList(func(o *Options, v []int) { o.Columns = v })},
	{"o", "outputpath", "Save the chart to the given path: .json, .yaml/.yml or .db/.sqlite", StringArg,
		setString(func(o *Options, v string) { o.OutputPath = v })},
	{"", "inputpath", "Read data from the given path instead of standard input", StringArg,
		setString(func(o *Options, v string) { o.InputPath = v })},
	{"t", "title", "Title for the chart", StringArg,
		setString(func(o *Options, v string) { o.Title = v })},
	{"x", "xtitle", "Title for the X axis", StringArg,
		setString(func(o *Options, v string) { o.XTitle = v })},
	{"y", "ytitle", "Title for the Y axis", StringArg,
		setString(func(o *Options, v string) { o.YTitle = v })},
	{"m", "maxy", "Maximum value for y axis", OptionalIntArg,
		setOptionalInt(func(o *Options, v *int) { o.MaxY = v })},
	{"", "miny", "Minimum value for y axis", OptionalIntArg,
		setOptionalInt(func(o *Options, v *int) { o.MinY = v })},
	{"w", "width", "Chart width in pixels (default 800)", IntArg,
		setInt(func(o *Options, v int) { o.Width = v })},
	{"g", "height", "Chart height in pixels (default 600)", IntArg,
		setInt(func(o *Options, v int) { o.Height = v })},
	{"", "columnlist2", "List of columns for second y axis (if any), comma-separated, 0-based", IntListArg,
		setIntList(func(o *Options, v []int) { o.Columns2 = v })},
	{"", "ytitle2", "Title for the second Y axis (if any)", StringArg,
		setString(func(o *Options, v string) { o.YTitle2 = v })},
	{"", "maxy2", "Maximum value for second y axis (if any)", OptionalIntArg,
		setOptionalInt(func(o *Options, v *int) { o.MaxY2 = v })},
	{"", "miny2", "Minimum value for second y axis (if any)", OptionalIntArg,
		setOptionalInt(func(o *Options, v *int) { o.MinY2 = v })},
	{"", "lineweight", "Line weight (values are 1 - 5)", IntArg,
		setLineWeight("lineweight", func(o *Options, v int) { o.LineWeight = v })},
	{"", "lineweight2", "Line weight for the second Y axis (values are 1 - 5)", IntArg,
		setLineWeight("lineweight2", func(o *Options, v int) { o.LineWeight2 = v })},
	{"", "seriestitles", "Data series titles, comma-separated, in the same order as the y columns", StringListArg,
		setStringList(func(o *Options, v []string) { o.SeriesTitles = v })},
	{"", "seriestitles2", "Second axis data series titles, comma-separated", StringListArg,
		setStringList(func(o *Options, v []string) { o.SeriesTitles2 = v })},
	{"", "colours", "Override default series colours: comma-separated 'index:colour', colour is a name or 6 hex digits", ColourListArg,
		setColours(func(o *Options, v []ColourOverride) { o.Colours = v })},
	{"", "port", "Port on which the server should listen (TCP server only)", IntArg,
		setInt(func(o *Options, v int) { o.Port = v })},

	{"b", "bar", "Show as a bar chart, not X-Y line", Flag,
		setFlag(func(o *Options) { o.Bar = true })},
	{"c", "csv", "Expect input as CSV (default is whitespace-separated)", NoArg,
		setFlag(func(o *Options) { o.Separator = data.SeparatorCSV })},
	{"f", "hasheader", "First row of data provides column headers for the legend", Flag,
		setFlag(func(o *Options) { o.HasHeader = true })},
	{"i", "ignoremissing", "Ignore missing columns (default is to terminate)", Flag,
		setFlag(func(o *Options) { o.IgnoreMissingColumns = true })},
	{"", "ignoreempty", "Ignore empty column values (default is to terminate)", Flag,
		setFlag(func(o *Options) { o.IgnoreEmptyValues = true })},
	{"p", "ignoredup", "Ignore duplicate X axis values (default is to terminate)", Flag,
		setFlag(func(o *Options) { o.IgnoreDuplicateValues = true })},
	{"n", "noxvalue", "Chart has no X axis values, number the rows instead", NoArg,
		setFlag(func(o *Options) { o.XType = XTypeNone })},
	{"v", "xvalue", "Chart has simple values as the X axis, not dates or times", NoArg,
		setFlag(func(o *Options) { o.XType = XTypeValue })},
	{"", "bar2", "Show second axis as a bar chart, not X-Y line", Flag,
		setFlag(func(o *Options) { o.Bar2 = true })},
	{"", "datapoints", "Indicate each data point", Flag,
		setFlag(func(o *Options) { o.DataPoints = true })},
	{"", "datapoints2", "Indicate each data point for the second Y axis", Flag,
		setFlag(func(o *Options) { o.DataPoints2 = true })},
	{"", "forceyrange", "Force the y axis to use the limits provided, not just when values exceed them", Flag,
		setFlag(func(o *Options) { o.ForceYRange = true })},
	{"", "forceyrange2", "Force the second y axis to use the limits provided", Flag,
		setFlag(func(o *Options) { o.ForceYRange2 = true })},
}

var definitionsByName = func() map[string]*Definition {
	m := make(map[string]*Definition, 2*len(Definitions))
	for i := range Definitions {
		d := &Definitions[i]
		if d.Short != "" {
			m[d.Short] = d
		}
		if d.Long != "" {
			m[d.Long] = d
		}
	}
	return m
}()

// Lookup finds a definition by short or long name.
func Lookup(name string) (*Definition, bool) {
	d, ok := definitionsByName[name]
	return d, ok
}

func requireArg(arg string) error {
	if strings.TrimSpace(arg) == "" {
		return invalid("Command requires an argument")
	}
	return nil
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(s)
}

func setFlag(f func(*Options)) func(*Options, string) error {
	return func(o *Options, _ string) error {
		f(o)
		return nil
	}
}

func setString(f func(*Options, string)) func(*Options, string) error {
	return func(o *Options, arg string) error {
		if err := requireArg(arg); err != nil {
			return err
		}
		f(o, arg)
		return nil
	}
}

func setInt(f func(*Options, int)) func(*Options, string) error {
	return func(o *Options, arg string) error {
		if err := requireArg(arg); err != nil {
			return err
		}
		n, err := parseInt(strings.TrimSpace(arg))
		if err != nil {
			return invalid("Invalid integer argument: %s", arg)
		}
		f(o, n)
		return nil
	}
}

func setOptionalInt(f func(*Options, *int)) func(*Options, string) error {
	return setInt(func(o *Options, n int) { f(o, &n) })
}

func setLineWeight(name string, f func(*Options, int)) func(*Options, string) error {
	return func(o *Options, arg string) error {
		var weight int
		if err := setInt(func(_ *Options, n int) { weight = n })(o, arg); err != nil {
			return err
		}
		if weight == 0 {
			return invalid("Invalid %s value (must be %d - %d): %d", name, MinLineWeight, MaxLineWeight, weight)
		}
		if err := checkLineWeight(name, weight); err != nil {
			return err
		}
		f(o, weight)
		return nil
	}
}

func setIntList(f func(*Options, []int)) func(*Options, string) error {
	return func(o *Options, arg string) error {
		columns, err := ParseColumnList(arg)
		if err != nil {
			return err
		}
		f(o, columns)
		return nil
	}
}

func setStringList(f func(*Options, []string)) func(*Options, string) error {
	return func(o *Options, arg string) error {
		if err := requireArg(arg); err != nil {
			return err
		}
		f(o, ParseSeriesTitles(arg))
		return nil
	}
}

func setColours(f func(*Options, []ColourOverride)) func(*Options, string) error {
	return func(o *Options, arg string) error {
		overrides, err := ParseColourOverrides(arg)
		if err != nil {
			return err
		}
		f(o, overrides)
		return nil
	}
}
