package consumer

import "errors"

// ErrInvalidArgument is returned when a GeneratorFactory is given a seed of
// the wrong length.
var ErrInvalidArgument = errors.New("consumer: invalid argument")
