package config

import (
	"fmt"

	"github.com/cognicore/clichart/pkg/clichart/internalerr"
)

// OptionsError is a user-facing problem with an option value. The message is
// shown as is by the CLI and the session.
type OptionsError struct {
	Msg string
}

func (e *OptionsError) Error() string { return e.Msg }

func (e *OptionsError) Is(target error) bool { return target == internalerr.ErrInvalidOptions }

func invalid(format string, args ...any) error {
	return &OptionsError{Msg: fmt.Sprintf(format, args...)}
}
