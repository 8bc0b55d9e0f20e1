package services

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation marks input rejected before any store call.
var ErrValidation = errors.New("validation failed")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// IsValidation reports whether err is an input validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// StepError reports a multi-step mutation that stopped part-way. Completed
// steps are not rolled back, so the store holds their effects.
type StepError struct {
	Op        string
	Completed []string
	Failed    string
	Err       error
}

func (e *StepError) Error() string {
	done := "none"
	if len(e.Completed) > 0 {
		done = strings.Join(e.Completed, ", ")
	}
	return fmt.Sprintf("%s: step %q failed after [%s]: %v", e.Op, e.Failed, done, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// AsStepError extracts a *StepError from err's chain.
func AsStepError(err error) (*StepError, bool) {
	var se *StepError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
