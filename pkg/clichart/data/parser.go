package data

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/cognicore/clichart/pkg/clichart/internalerr"
)

// NoXColumn means the line number is used as the x value.
const NoXColumn = -1

// maxLineLength bounds a single input line.
const maxLineLength = 1024 * 1024

// Config holds the parse settings fixed for the lifetime of a Parser.
type Config struct {
	LineParser LineParser
	// XParser is required when XColumn is not NoXColumn.
	XParser  XValueParser
	XColumn  int
	YColumns []int

	HasHeader            bool
	IgnoreMissingColumns bool
	IgnoreEmptyValues    bool

	Logger *log.Entry
}

type axis struct {
	columns []int
	sink    DataSink
}

// Parser reads tabular text line by line and feeds typed values to one sink
// per axis. A Parser handles a single input.
type Parser struct {
	cfg              Config
	axes             []axis
	nextLineIsHeader bool
	started          bool
	log              *log.Entry
}

// NewParser creates a parser feeding the primary axis sink.
func NewParser(cfg Config, sink DataSink) (*Parser, error) {
	if cfg.LineParser == nil {
		return nil, fmt.Errorf("%w: no line parser", internalerr.ErrInvalidConfig)
	}
	if cfg.XColumn < NoXColumn {
		return nil, fmt.Errorf("%w: invalid x column %d", internalerr.ErrInvalidConfig, cfg.XColumn)
	}
	if cfg.XColumn != NoXColumn && cfg.XParser == nil {
		return nil, fmt.Errorf("%w: x column %d has no x value parser", internalerr.ErrInvalidConfig, cfg.XColumn)
	}
	if err := checkColumns(cfg.YColumns); err != nil {
		return nil, err
	}
	if sink == nil {
		return nil, fmt.Errorf("%w: no data sink", internalerr.ErrInvalidConfig)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}

	return &Parser{
		cfg:              cfg,
		axes:             []axis{{columns: cfg.YColumns, sink: sink}},
		nextLineIsHeader: cfg.HasHeader,
		log:              logger,
	}, nil
}

// AddSecondAxis routes a second set of columns to another sink. It must be
// called at most once, before Parse.
func (p *Parser) AddSecondAxis(columns []int, sink DataSink) error {
	if p.started {
		return fmt.Errorf("add second axis: %w", internalerr.ErrParseStarted)
	}
	if len(p.axes) > 1 {
		return fmt.Errorf("%w: second axis already configured", internalerr.ErrInvalidConfig)
	}
	if err := checkColumns(columns); err != nil {
		return err
	}
	if sink == nil {
		return fmt.Errorf("%w: no data sink for second axis", internalerr.ErrInvalidConfig)
	}

	p.axes = append(p.axes, axis{columns: columns, sink: sink})
	return nil
}

// Parse reads r to the end, advising the sinks of every header and data
// line. The first error aborts the parse.
func (p *Parser) Parse(r io.Reader) error {
	if p.started {
		return internalerr.ErrParseStarted
	}
	p.started = true

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		if err := p.parseLine(scanner.Text(), lineNumber); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return &ReadError{Line: lineNumber + 1, Err: err}
	}

	for _, a := range p.axes {
		a.sink.ParsingFinished()
	}
	p.log.WithField("lines", lineNumber).Debug("parsing finished")
	return nil
}

func (p *Parser) parseLine(line string, lineNumber int) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}

	tokens, err := p.cfg.LineParser.ParseLine(line, lineNumber)
	if err != nil {
		return err
	}

	if p.nextLineIsHeader {
		p.nextLineIsHeader = false
		return p.parseAllHeaders(tokens, lineNumber)
	}

	x, err := p.parseXValue(tokens, lineNumber)
	if err != nil {
		return err
	}

	for _, a := range p.axes {
		values, err := p.parseYValues(tokens, a.columns, lineNumber)
		if err != nil {
			return err
		}
		if err := a.sink.DataParsed(x, values, lineNumber); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) parseAllHeaders(tokens []string, lineNumber int) error {
	for _, a := range p.axes {
		headers, err := p.parseHeaders(tokens, a.columns, lineNumber)
		if err != nil {
			return err
		}
		p.log.WithField("line", lineNumber).Debugf("headers %q", headers)
		if err := a.sink.HeaderParsed(headers); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) parseHeaders(tokens []string, columns []int, lineNumber int) ([]string, error) {
	headers := make([]string, len(columns))
	size := 0

	for i, col := range columns {
		if col < len(tokens) {
			headers[i] = tokens[col]
			size = i + 1
			continue
		}
		if !p.cfg.IgnoreMissingColumns {
			return nil, &InsufficientHeaderColumnsError{Column: col, Line: lineNumber}
		}
	}

	return headers[:size], nil
}

func (p *Parser) parseXValue(tokens []string, lineNumber int) (X, error) {
	if p.cfg.XColumn == NoXColumn {
		return NumberX(IntValue(int64(lineNumber))), nil
	}

	if p.cfg.XColumn >= len(tokens) {
		return X{}, &InvalidXValueError{Column: p.cfg.XColumn, Line: lineNumber, Missing: true}
	}

	token := tokens[p.cfg.XColumn]
	x, err := p.cfg.XParser.ParseX(token, lineNumber)
	if err != nil {
		return X{}, &InvalidXValueError{Token: token, Column: p.cfg.XColumn, Line: lineNumber, Err: err}
	}
	return x, nil
}

func (p *Parser) parseYValues(tokens []string, columns []int, lineNumber int) ([]Value, error) {
	values := make([]Value, len(columns))

	for i, col := range columns {
		if col >= len(tokens) {
			if !p.cfg.IgnoreMissingColumns {
				return nil, &InsufficientDataColumnsError{Column: col, Line: lineNumber}
			}
			continue
		}

		v, err := ParseValue(tokens[col], lineNumber)
		if err != nil {
			if !p.cfg.IgnoreEmptyValues || strings.TrimSpace(tokens[col]) != "" {
				return nil, err
			}
			continue
		}
		values[i] = v
	}

	if p.cfg.IgnoreMissingColumns {
		values = trimTrailingNulls(values)
	}
	return values, nil
}

// trimTrailingNulls drops the run of nulls at the end of values. Interior
// nulls stay.
func trimTrailingNulls(values []Value) []Value {
	end := len(values)
	for end > 0 && values[end-1].IsNull() {
		end--
	}
	return values[:end]
}

func checkColumns(columns []int) error {
	if len(columns) == 0 {
		return fmt.Errorf("%w: no y columns", internalerr.ErrInvalidConfig)
	}
	for _, c := range columns {
		if c < 0 {
			return fmt.Errorf("%w: invalid column index %d", internalerr.ErrInvalidConfig, c)
		}
	}
	return nil
}
