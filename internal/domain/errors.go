package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument marks configuration or input that can never be valid.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidState marks a programming error, e.g. creating an instrument before the meter exists.
	ErrInvalidState = errors.New("invalid state")
	// ErrNotRegistered is returned when a value is written to a gauge key that was never ensured.
	ErrNotRegistered = fmt.Errorf("%w: gauge not registered", ErrInvalidState)
)
