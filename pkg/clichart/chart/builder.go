package chart

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/cognicore/clichart/pkg/clichart/data"
)

// ErrColumnsEstablished is returned for a header arriving after the series
// have been created.
var ErrColumnsEstablished = errors.New("columns already established")

// ColumnState tracks how a sink's series were created.
type ColumnState struct {
	Initialized bool
	// HeaderCount is -1 until the columns are known.
	HeaderCount  int
	ExcessWarned bool
}

// Config controls a Builder.
type Config struct {
	// SeriesTitles override header names by position.
	SeriesTitles          []string
	IgnoreDuplicateValues bool
	Logger                *log.Entry
}

// Builder is a data.DataSink accumulating one series per column for a single
// axis.
type Builder struct {
	cfg      Config
	state    ColumnState
	series   []*Series
	finished bool
	log      *log.Entry
}

var _ data.DataSink = (*Builder)(nil)

func NewBuilder(cfg Config) *Builder {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Builder{
		cfg:   cfg,
		state: ColumnState{HeaderCount: -1},
		log:   logger,
	}
}

func (b *Builder) HeaderParsed(headers []string) error {
	if b.state.Initialized {
		return ErrColumnsEstablished
	}
	b.initColumns(headers)
	return nil
}

func (b *Builder) DataParsed(x data.X, values []data.Value, lineNumber int) error {
	if !b.state.Initialized {
		b.initColumns(make([]string, len(values)))
	}

	for i, v := range values {
		switch {
		case i < b.state.HeaderCount:
			if err := b.addPoint(i, x, v, lineNumber); err != nil {
				return err
			}
		case v.IsNull():
		case !b.state.ExcessWarned:
			b.log.WithField("line", lineNumber).Warn("more columns than headers, ignoring excess columns; no more warnings will be given")
			b.state.ExcessWarned = true
		}
	}
	return nil
}

func (b *Builder) ParsingFinished() {
	b.finished = true
	b.log.WithField("series", len(b.series)).Debug("chart data complete")
}

// State returns the current column state.
func (b *Builder) State() ColumnState { return b.state }

// Series returns the series in column order.
func (b *Builder) Series() []*Series { return b.series }

// Finished reports whether the parser reached the end of its input.
func (b *Builder) Finished() bool { return b.finished }

func (b *Builder) initColumns(headers []string) {
	b.series = make([]*Series, len(headers))
	for i, h := range headers {
		b.series[i] = newSeries(b.title(i, h))
	}
	b.state.Initialized = true
	b.state.HeaderCount = len(headers)
}

func (b *Builder) title(i int, header string) string {
	if i < len(b.cfg.SeriesTitles) && b.cfg.SeriesTitles[i] != "" {
		return b.cfg.SeriesTitles[i]
	}
	if header != "" {
		return header
	}
	return fmt.Sprintf("Series %d", i+1)
}

func (b *Builder) addPoint(i int, x data.X, y data.Value, lineNumber int) error {
	s := b.series[i]
	if s.add(x, y) {
		return nil
	}
	if !b.cfg.IgnoreDuplicateValues {
		return &DuplicateXError{Series: s.Title, X: x, Line: lineNumber}
	}
	b.log.WithFields(log.Fields{"line": lineNumber, "series": s.Title}).Debugf("ignoring duplicate x value %s", x)
	return nil
}
