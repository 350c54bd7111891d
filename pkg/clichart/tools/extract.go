package tools

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cognicore/clichart/pkg/clichart/config"
	"github.com/cognicore/clichart/pkg/clichart/data"
)

// Extractor pulls one value out of a raw line. Specs are
//
//	s:<start>[:<end>]  a substring, 0-based, negative counts from the end
//	f:<index>          a whitespace-separated field, 0-based
//	r:<regex>          the first group of a regex match, or the whole match
type Extractor struct {
	spec  string
	start int
	end   *int
	field *int
	re    *regexp.Regexp
}

// WholeLine extracts the entire line.
func WholeLine() *Extractor { return &Extractor{spec: "s:0:"} }

// ParseExtractor compiles a value spec.
func ParseExtractor(spec string) (*Extractor, error) {
	kind, arg, ok := strings.Cut(spec, ":")
	if !ok {
		return nil, invalidf("Invalid value option: %s", spec)
	}
	e := &Extractor{spec: spec}

	switch kind {
	case "s":
		startText, endText, _ := strings.Cut(arg, ":")
		start, err := strconv.Atoi(startText)
		if err != nil {
			return nil, invalidf("Invalid substring specification [%s]", arg)
		}
		e.start = start
		if endText != "" {
			end, err := strconv.Atoi(endText)
			if err != nil {
				return nil, invalidf("Invalid substring specification [%s]", arg)
			}
			e.end = &end
		}
	case "f":
		field, err := strconv.Atoi(arg)
		if err != nil || field < 0 {
			return nil, invalidf("Invalid field number [%s]", arg)
		}
		e.field = &field
	case "r":
		re, err := regexp.Compile(arg)
		if err != nil {
			return nil, invalidf("Invalid regular expression [%s]", arg)
		}
		e.re = re
	default:
		return nil, invalidf("Invalid field specification [%s]", spec)
	}
	return e, nil
}

func (e *Extractor) String() string { return e.spec }

// Extract returns the value for one line.
func (e *Extractor) Extract(line string, lineNumber int) (string, error) {
	switch {
	case e.field != nil:
		fields, _ := data.WhitespaceLineParser{}.ParseLine(line, lineNumber)
		if *e.field >= len(fields) {
			return "", &DataError{Line: lineNumber, Msg: fmt.Sprintf("cannot extract field number %d", *e.field)}
		}
		return fields[*e.field], nil

	case e.re != nil:
		m := e.re.FindStringSubmatch(line)
		if m == nil {
			return "", &DataError{Line: lineNumber, Msg: fmt.Sprintf("failed to match regular expression [%s]", e.re)}
		}
		if len(m) > 1 {
			return m[1], nil
		}
		return m[0], nil
	}

	start, err := substringIndex(line, e.start, lineNumber)
	if err != nil {
		return "", err
	}
	end := len(line)
	if e.end != nil {
		if end, err = substringIndex(line, *e.end, lineNumber); err != nil {
			return "", err
		}
	}
	if end < start {
		return "", nil
	}
	return line[start:end], nil
}

func substringIndex(line string, index, lineNumber int) (int, error) {
	if index > 0 && len(line) <= index || index < 0 && len(line) < -index {
		return 0, &DataError{Line: lineNumber, Msg: fmt.Sprintf("invalid substring index %d", index)}
	}
	if index < 0 {
		return len(line) + index, nil
	}
	return index, nil
}

func invalidf(format string, args ...any) error {
	return &config.OptionsError{Msg: fmt.Sprintf(format, args...)}
}
