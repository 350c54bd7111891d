package data

import (
	"strconv"
	"strings"
	"time"
)

// Kind identifies what a Value holds.
type Kind uint8

const (
	Null Kind = iota
	Int
	Float
)

// Value is one coerced field: an integer, a floating point number, or null
// when a column was missing or empty and that was tolerated.
type Value struct {
	kind Kind
	i    int64
	f    float64
}

// NullValue is the placeholder for a column with no data on a line.
var NullValue = Value{}

// IntValue wraps an integer.
func IntValue(v int64) Value {
	return Value{kind: Int, i: v}
}

// FloatValue wraps a floating point number.
func FloatValue(v float64) Value {
	return Value{kind: Float, f: v}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == Null }

// Int returns the value as an integer, truncating floats. Null is 0.
func (v Value) Int() int64 {
	switch v.kind {
	case Int:
		return v.i
	case Float:
		return int64(v.f)
	}
	return 0
}

// Float returns the value as a float64. Null is 0.
func (v Value) Float() float64 {
	switch v.kind {
	case Int:
		return float64(v.i)
	case Float:
		return v.f
	}
	return 0
}

func (v Value) String() string {
	switch v.kind {
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	}
	return "null"
}

// ParseValue coerces a token to a number. Tokens containing a '.' are parsed
// as floats, anything else as a base-10 integer.
func ParseValue(token string, lineNumber int) (Value, error) {
	if strings.Contains(token, ".") {
		f, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return NullValue, &InvalidValueError{Token: token, Line: lineNumber, Err: err}
		}
		return FloatValue(f), nil
	}

	i, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return NullValue, &InvalidValueError{Token: token, Line: lineNumber, Err: err}
	}
	return IntValue(i), nil
}

// X is the x-axis value of one line: either a number or a point in time.
type X struct {
	value  Value
	t      time.Time
	isTime bool
}

// NumberX wraps a numeric x value.
func NumberX(v Value) X {
	return X{value: v}
}

// TimeX wraps a date/time x value.
func TimeX(t time.Time) X {
	return X{t: t, isTime: true}
}

func (x X) IsTime() bool    { return x.isTime }
func (x X) Time() time.Time { return x.t }
func (x X) Value() Value    { return x.value }

// Float returns a numeric key for the x value. Times map to Unix milliseconds.
func (x X) Float() float64 {
	if x.isTime {
		return float64(x.t.UnixMilli())
	}
	return x.value.Float()
}

func (x X) String() string {
	if x.isTime {
		return x.t.Format(time.RFC3339)
	}
	return x.value.String()
}
