package motion

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned when a precondition on shape, sign or range
// is violated. Algorithms check their inputs before computing anything.
var ErrInvalidArgument = errors.New("invalid argument")

// InvalidArgument wraps ErrInvalidArgument with a formatted description.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
