package data

import (
	"fmt"

	"github.com/cognicore/clichart/pkg/clichart/internalerr"
)

// MalformedLineError reports a line the tokenizer could not split.
type MalformedLineError struct {
	Line   int
	Reason string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("Failed to parse line number %d as CSV: %s", e.Line, e.Reason)
}

func (e *MalformedLineError) Is(target error) bool { return target == internalerr.ErrInvalidData }

// InsufficientHeaderColumnsError reports a requested column missing from the header line.
type InsufficientHeaderColumnsError struct {
	Column int
	Line   int
}

func (e *InsufficientHeaderColumnsError) Error() string {
	return fmt.Sprintf("Not enough header columns in line %d - cannot find column %d", e.Line, e.Column)
}

func (e *InsufficientHeaderColumnsError) Is(target error) bool {
	return target == internalerr.ErrInvalidData
}

// InsufficientDataColumnsError reports a requested column missing from a data line.
type InsufficientDataColumnsError struct {
	Column int
	Line   int
}

func (e *InsufficientDataColumnsError) Error() string {
	return fmt.Sprintf("Not enough data columns in line %d - cannot find column %d", e.Line, e.Column)
}

func (e *InsufficientDataColumnsError) Is(target error) bool {
	return target == internalerr.ErrInvalidData
}

// InvalidValueError reports a y token that is not a number.
type InvalidValueError struct {
	Token string
	Line  int
	Err   error
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("Invalid data value: [%s], line %d", e.Token, e.Line)
}

func (e *InvalidValueError) Unwrap() error        { return e.Err }
func (e *InvalidValueError) Is(target error) bool { return target == internalerr.ErrInvalidData }

// InvalidXValueError reports an x column that is absent or cannot be parsed.
// Missing is set when the line has too few tokens to reach the column.
type InvalidXValueError struct {
	Token   string
	Column  int
	Line    int
	Missing bool
	Err     error
}

func (e *InvalidXValueError) Error() string {
	if e.Missing {
		return fmt.Sprintf("Not enough columns in line %d - cannot find x value column %d", e.Line, e.Column)
	}
	if e.Err != nil {
		return fmt.Sprintf("Invalid x value: [%s], line %d: %v", e.Token, e.Line, e.Err)
	}
	return fmt.Sprintf("Invalid x value: [%s], line %d", e.Token, e.Line)
}

func (e *InvalidXValueError) Unwrap() error        { return e.Err }
func (e *InvalidXValueError) Is(target error) bool { return target == internalerr.ErrInvalidData }

// ReadError reports a failure reading the input itself.
type ReadError struct {
	Line int
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read line %d: %v", e.Line, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
