package ring

import "errors"

// ErrInvalidArgument is returned when a caller passes a negative length or,
// at construction, a non-power-of-two capacity.
var ErrInvalidArgument = errors.New("ring: invalid argument")

// ErrCancelled is returned by the blocking Write and Read forms when their
// context is cancelled before all bytes have moved. It always wraps the
// context's own error, so callers may still compare with errors.Is against
// context.Canceled or context.DeadlineExceeded.
var ErrCancelled = errors.New("ring: operation cancelled")
