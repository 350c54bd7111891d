package clichart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/clichart/pkg/clichart/chart"
	"github.com/cognicore/clichart/pkg/clichart/config"
	"github.com/cognicore/clichart/pkg/clichart/data"
	"github.com/cognicore/clichart/pkg/clichart/store"
	"github.com/cognicore/clichart/pkg/clichart/store/sqlite"
)

// Format is a chart output format, chosen by output path extension.
type Format string

const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatSQLite Format = "sqlite"
)

// FormatFor picks the output format for path.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".db", ".sqlite":
		return FormatSQLite, nil
	}
	return "", &config.OptionsError{Msg: fmt.Sprintf("Unsupported output file type: %s", path)}
}

// SaveError reports a chart that was built but could not be written.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }
func (e *SaveError) Unwrap() error { return e.Err }

// Generator turns options and input data into saved charts. A Generator may
// be reused, but not concurrently.
type Generator struct {
	stdin     io.Reader
	location  *time.Location
	openStore func(ctx context.Context, path string) (store.Store, error)
	log       *log.Entry

	last *store.Chart
}

// Config holds the Generator dependencies. Zero values select stdin, the
// local time zone, the SQLite chart store and the standard logger.
type Config struct {
	Stdin     io.Reader
	Location  *time.Location
	OpenStore func(ctx context.Context, path string) (store.Store, error)
	Logger    *log.Entry
}

func NewGenerator(cfg Config) *Generator {
	g := &Generator{
		stdin:     cfg.Stdin,
		location:  cfg.Location,
		openStore: cfg.OpenStore,
		log:       cfg.Logger,
	}
	if g.stdin == nil {
		g.stdin = os.Stdin
	}
	if g.location == nil {
		g.location = time.Local
	}
	if g.openStore == nil {
		g.openStore = sqlite.OpenSQLite
	}
	if g.log == nil {
		g.log = log.NewEntry(log.StandardLogger())
	}
	return g
}

// Generate reads the input named by opts, builds the chart and saves it to
// the output path, if any.
func (g *Generator) Generate(ctx context.Context, opts *config.Options) (*store.Chart, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.OutputPath != "" {
		if _, err := FormatFor(opts.OutputPath); err != nil {
			return nil, err
		}
	}

	r, closeInput, err := g.openInput(opts.InputPath)
	if err != nil {
		return nil, err
	}
	defer closeInput()

	c, err := g.Build(opts, r)
	if err != nil {
		return nil, err
	}

	if opts.OutputPath != "" {
		if err := g.Save(ctx, c, opts.OutputPath); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Build parses r and returns the resulting chart without saving it.
func (g *Generator) Build(opts *config.Options, r io.Reader) (*store.Chart, error) {
	g.last = nil

	lineParser, err := data.NewLineParser(opts.Separator)
	if err != nil {
		return nil, &config.OptionsError{Msg: err.Error()}
	}

	var xParser data.XValueParser
	switch opts.XType {
	case config.XTypeDateTime:
		tp, err := data.NewTimeXParser(opts.DateFormat, g.location)
		if err != nil {
			return nil, &config.OptionsError{Msg: fmt.Sprintf("Invalid date format: %s: %v", opts.DateFormat, err)}
		}
		xParser = tp
	case config.XTypeValue:
		xParser = data.NumericXParser{}
	}

	primary := chart.NewBuilder(chart.Config{
		SeriesTitles:          opts.SeriesTitles,
		IgnoreDuplicateValues: opts.IgnoreDuplicateValues,
		Logger:                g.log.WithField("axis", 0),
	})
	parser, err := data.NewParser(data.Config{
		LineParser:           lineParser,
		XParser:              xParser,
		XColumn:              opts.XColumn(),
		YColumns:             opts.YColumns(),
		HasHeader:            opts.HasHeader,
		IgnoreMissingColumns: opts.IgnoreMissingColumns,
		IgnoreEmptyValues:    opts.IgnoreEmptyValues,
		Logger:               g.log,
	}, primary)
	if err != nil {
		return nil, err
	}

	builders := []*chart.Builder{primary}
	if opts.HasSecondAxis() {
		secondary := chart.NewBuilder(chart.Config{
			SeriesTitles:          opts.SeriesTitles2,
			IgnoreDuplicateValues: opts.IgnoreDuplicateValues,
			Logger:                g.log.WithField("axis", 1),
		})
		if err := parser.AddSecondAxis(opts.Columns2, secondary); err != nil {
			return nil, err
		}
		builders = append(builders, secondary)
	}

	if err := parser.Parse(r); err != nil {
		return nil, err
	}

	c := snapshot(opts, builders)
	g.last = c
	g.log.WithFields(log.Fields{"series": len(c.Series), "points": c.PointCount()}).Debug("chart built")
	return c, nil
}

// Save writes c to path in the format its extension selects. A chart saved
// to a SQLite store gets the ID the store assigns.
func (g *Generator) Save(ctx context.Context, c *store.Chart, path string) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	switch format {
	case FormatSQLite:
		err = g.saveToStore(ctx, c, path)
	default:
		if c.ID == "" {
			c.ID = store.NewID()
		}
		err = writeFile(path, c, format)
	}
	if err != nil {
		return &SaveError{Path: path, Err: err}
	}

	g.log.WithFields(log.Fields{"chart": c.ID, "path": path}).Info("chart saved")
	return nil
}

// Clear forgets the last chart built.
func (g *Generator) Clear() {
	g.last = nil
}

// Last returns the last chart built, or nil.
func (g *Generator) Last() *store.Chart {
	return g.last
}

func (g *Generator) saveToStore(ctx context.Context, c *store.Chart, path string) error {
	st, err := g.openStore(ctx, path)
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := st.SaveChart(ctx, *c)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (g *Generator) openInput(path string) (io.Reader, func(), error) {
	if path == "" {
		g.log.Debug("reading chart data from standard input")
		return g.stdin, func() {}, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, &config.OptionsError{Msg: fmt.Sprintf("File not found: %s", path)}
	}
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func writeFile(path string, c *store.Chart, format Format) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteChart(f, c, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteChart encodes c as JSON or YAML.
func WriteChart(w io.Writer, c *store.Chart, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("cannot write %s charts to a stream", format)
}

func snapshot(opts *config.Options, builders []*chart.Builder) *store.Chart {
	c := &store.Chart{
		Title:  opts.Title,
		XTitle: opts.XTitle,
		XType:  string(opts.XType),
		Width:  opts.Width,
		Height: opts.Height,
		Axes: []store.Axis{{
			Index:      0,
			Title:      opts.YTitle,
			MinY:       opts.MinY,
			MaxY:       opts.MaxY,
			ForceRange: opts.ForceYRange,
			Bar:        opts.Bar,
			DataPoints: opts.DataPoints,
			LineWeight: opts.LineWeight,
		}},
	}
	if len(builders) > 1 {
		c.Axes = append(c.Axes, store.Axis{
			Index:      1,
			Title:      opts.YTitle2,
			MinY:       opts.MinY2,
			MaxY:       opts.MaxY2,
			ForceRange: opts.ForceYRange2,
			Bar:        opts.Bar2,
			DataPoints: opts.DataPoints2,
			LineWeight: opts.LineWeight2,
		})
	}
	for _, o := range opts.Colours {
		c.Colours = append(c.Colours, o.String())
	}

	for axis, b := range builders {
		for i, s := range b.Series() {
			points := make([]store.Point, len(s.Points))
			for j, p := range s.Points {
				points[j] = store.Point{X: p.X.Float(), Y: p.Y.Float(), Null: p.Y.IsNull()}
			}
			c.Series = append(c.Series, store.Series{Axis: axis, Index: i, Title: s.Title, Points: points})
		}
	}
	return c
}
