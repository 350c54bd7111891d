package data

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultDateFormat is used when no date/time pattern is configured.
const DefaultDateFormat = "HH:mm"

// XValueParser turns the x column token into an x value.
type XValueParser interface {
	ParseX(token string, lineNumber int) (X, error)
}

// NumericXParser coerces x tokens with ParseValue.
type NumericXParser struct{}

func (NumericXParser) ParseX(token string, lineNumber int) (X, error) {
	v, err := ParseValue(token, lineNumber)
	if err != nil {
		return X{}, err
	}
	return NumberX(v), nil
}

// TimeXParser parses x tokens as dates/times. Patterns use the familiar
// letter notation (yyyy-MM-dd HH:mm:ss) and are translated once into a Go
// layout. Parsing is strict: out-of-range fields and trailing text fail.
// Numeric fields accept one or two digits whatever the pattern width.
//
// A trailing millisecond field (ss.SSS) is read as a count of milliseconds,
// so "01.5" is 1s 5ms. Anywhere else S is a fixed-width decimal fraction.
// Patterns without a year parse in 1970.
type TimeXParser struct {
	pattern string
	layout  string
	hasYear bool
	// millisSep is the separator before a trailing millisecond field, or 0.
	millisSep byte
	loc       *time.Location
}

// NewTimeXParser compiles a date/time pattern. An empty pattern means
// DefaultDateFormat and a nil location means time.Local.
func NewTimeXParser(pattern string, loc *time.Location) (*TimeXParser, error) {
	if pattern == "" {
		pattern = DefaultDateFormat
	}
	if loc == nil {
		loc = time.Local
	}

	tr, err := translatePattern(pattern)
	if err != nil {
		return nil, fmt.Errorf("date format %q: %w", pattern, err)
	}

	return &TimeXParser{
		pattern:   pattern,
		layout:    tr.layout,
		hasYear:   tr.hasYear,
		millisSep: tr.millisSep,
		loc:       loc,
	}, nil
}

// Pattern returns the pattern the parser was built from.
func (p *TimeXParser) Pattern() string { return p.pattern }

// Layout returns the Go layout equivalent of the pattern.
func (p *TimeXParser) Layout() string { return p.layout }

func (p *TimeXParser) ParseX(token string, lineNumber int) (X, error) {
	layout, value := p.layout, token

	var millis int
	if p.millisSep != 0 {
		i := strings.LastIndexByte(value, p.millisSep)
		if i < 0 {
			return X{}, fmt.Errorf("invalid date: %q has no milliseconds", token)
		}
		ms, err := parseMillis(value[i+1:])
		if err != nil {
			return X{}, fmt.Errorf("invalid date: %w", err)
		}
		millis, value = ms, value[:i]
	}
	if !p.hasYear {
		layout, value = "2006 "+layout, "1970 "+value
	}

	t, err := time.ParseInLocation(layout, value, p.loc)
	if err != nil {
		return X{}, fmt.Errorf("invalid date: %w", err)
	}
	return TimeX(t.Add(time.Duration(millis) * time.Millisecond)), nil
}

func parseMillis(digits string) (int, error) {
	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return 0, fmt.Errorf("invalid milliseconds %q", digits)
	}
	ms, err := strconv.Atoi(digits)
	if err != nil || ms > 999 {
		return 0, fmt.Errorf("invalid milliseconds %q", digits)
	}
	return ms, nil
}

type translation struct {
	layout    string
	hasYear   bool
	millisSep byte
}

// translatePattern converts a date pattern into a Go time layout.
func translatePattern(pattern string) (translation, error) {
	var b strings.Builder
	var tr translation
	runes := []rune(pattern)

	for i := 0; i < len(runes); {
		c := runes[i]

		if c == '\'' {
			// '' is a literal quote, otherwise copy up to the closing quote
			if i+1 < len(runes) && runes[i+1] == '\'' {
				b.WriteRune('\'')
				i += 2
				continue
			}
			j := i + 1
			for ; j < len(runes); j++ {
				if runes[j] == '\'' {
					if j+1 < len(runes) && runes[j+1] == '\'' {
						b.WriteRune('\'')
						j++
						continue
					}
					break
				}
				b.WriteRune(runes[j])
			}
			if j >= len(runes) {
				return tr, fmt.Errorf("unterminated quote")
			}
			i = j + 1
			continue
		}

		if !isPatternLetter(c) {
			b.WriteRune(c)
			i++
			continue
		}

		n := 1
		for i+n < len(runes) && runes[i+n] == c {
			n++
		}

		switch c {
		case 'y':
			tr.hasYear = true
			if n == 2 {
				b.WriteString("06")
			} else {
				b.WriteString("2006")
			}
		case 'M':
			switch {
			case n <= 2:
				b.WriteString("1")
			case n == 3:
				b.WriteString("Jan")
			default:
				b.WriteString("January")
			}
		case 'd':
			b.WriteString("2")
		case 'D':
			b.WriteString("__2")
		case 'H':
			b.WriteString("15")
		case 'h':
			b.WriteString("3")
		case 'm':
			b.WriteString("4")
		case 's':
			b.WriteString("5")
		case 'S':
			prev := b.String()
			if !strings.HasSuffix(prev, ".") && !strings.HasSuffix(prev, ",") {
				return tr, fmt.Errorf("fractional seconds must follow '.' or ','")
			}
			if i+n == len(runes) {
				tr.millisSep = prev[len(prev)-1]
				b.Reset()
				b.WriteString(prev[:len(prev)-1])
			} else {
				b.WriteString(strings.Repeat("0", n))
			}
		case 'a':
			b.WriteString("PM")
		case 'E':
			if n >= 4 {
				b.WriteString("Monday")
			} else {
				b.WriteString("Mon")
			}
		case 'z':
			b.WriteString("MST")
		case 'Z':
			b.WriteString("-0700")
		case 'X':
			switch n {
			case 1:
				b.WriteString("Z07")
			case 2:
				b.WriteString("Z0700")
			default:
				b.WriteString("Z07:00")
			}
		default:
			return tr, fmt.Errorf("unsupported pattern letter %q", c)
		}
		i += n
	}

	tr.layout = b.String()
	return tr, nil
}

func isPatternLetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
