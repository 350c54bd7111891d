package tools

import (
	"fmt"

	"github.com/cognicore/clichart/pkg/clichart/internalerr"
)

// DataError reports input the summary tools could not use.
type DataError struct {
	Line int
	Msg  string
}

func (e *DataError) Error() string {
	if e.Line == 0 {
		return e.Msg
	}
	return fmt.Sprintf("Line %d: %s", e.Line, e.Msg)
}

func (e *DataError) Is(target error) bool { return target == internalerr.ErrInvalidData }

// ErrNoData is returned when the input held no data lines.
var ErrNoData = &DataError{Msg: "No data found"}
