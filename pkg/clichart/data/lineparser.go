package data

import (
	"fmt"
	"strings"
)

// LineParser splits one raw line into field tokens.
type LineParser interface {
	ParseLine(line string, lineNumber int) ([]string, error)
}

// Separator selects one of the supported line parsers.
type Separator string

const (
	SeparatorWhitespace Separator = "whitespace"
	SeparatorCSV        Separator = "csv"
)

// NewLineParser returns the line parser for a separator kind.
func NewLineParser(sep Separator) (LineParser, error) {
	switch sep {
	case SeparatorWhitespace, "":
		return WhitespaceLineParser{}, nil
	case SeparatorCSV:
		return CSVLineParser{}, nil
	}
	return nil, fmt.Errorf("unknown data separator %q", sep)
}

// WhitespaceLineParser splits on runs of whitespace. A blank line has no tokens.
type WhitespaceLineParser struct{}

func (WhitespaceLineParser) ParseLine(line string, lineNumber int) ([]string, error) {
	return strings.Fields(line), nil
}

// CSVLineParser splits on a delimiter (comma unless set), honouring
// double-quoted fields. Inside quotes a doubled quote is a literal quote.
// Unquoted fields are trimmed; empty fields are kept as "".
type CSVLineParser struct {
	Delimiter byte
}

func (p CSVLineParser) ParseLine(line string, lineNumber int) ([]string, error) {
	delim := p.Delimiter
	if delim == 0 {
		delim = ','
	}

	var fields []string
	var quoted strings.Builder
	n := len(line)
	i := 0

	for {
		start := i
		for i < n && line[i] != delim && isBlank(line[i]) {
			i++
		}

		if i < n && line[i] == '"' {
			i++
			quoted.Reset()
			closed := false
			for i < n {
				c := line[i]
				if c == '"' {
					if i+1 < n && line[i+1] == '"' {
						quoted.WriteByte('"')
						i += 2
						continue
					}
					i++
					closed = true
					break
				}
				quoted.WriteByte(c)
				i++
			}
			if !closed {
				return nil, &MalformedLineError{Line: lineNumber, Reason: fmt.Sprintf("unterminated quoted field %d", len(fields)+1)}
			}
			for i < n && line[i] != delim {
				if !isBlank(line[i]) {
					return nil, &MalformedLineError{
						Line:   lineNumber,
						Reason: fmt.Sprintf("unexpected %q after quoted field %d", line[i], len(fields)+1),
					}
				}
				i++
			}
			fields = append(fields, quoted.String())
		} else {
			end := strings.IndexByte(line[i:], delim)
			if end < 0 {
				i = n
			} else {
				i += end
			}
			fields = append(fields, strings.TrimSpace(line[start:i]))
		}

		if i >= n {
			break
		}
		i++ // delimiter
	}

	return fields, nil
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t'
}
