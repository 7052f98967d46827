package invocation

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord is returned when an invocation log message is not
// valid JSON or lacks a field the log format guarantees
var ErrMalformedRecord = errors.New("malformed invocation record")

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedRecord, fmt.Sprintf(format, args...))
}
