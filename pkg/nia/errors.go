package nia

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrConnectionFailure = errors.New("connection failure")
	IsConnectionFailure  = isErrorFunc(ErrConnectionFailure)
	ErrNotConnected      = errors.New("NIA device is not connected")
	IsNotConnected       = isErrorFunc(ErrNotConnected)
	ErrInvalidArgument   = errors.New("invalid argument")
	IsInvalidArgument    = isErrorFunc(ErrInvalidArgument)

	maskAny = errors.WithStack
)

func isErrorFunc(typeOfError error) func(err error) bool {
	return func(err error) bool {
		return errors.Is(err, typeOfError)
	}
}

// connectionError is the ErrConnectionFailure kind carrying the acquisition cause.
type connectionError struct {
	device string
	cause  error
}

func (e *connectionError) Error() string {
	return fmt.Sprintf("connection to %s device failed: %v", e.device, e.cause)
}

func (e *connectionError) Unwrap() error {
	return e.cause
}

func (e *connectionError) Is(target error) bool {
	return target == ErrConnectionFailure
}
