package logbridge

import (
	"errors"
	"fmt"
)

// Errors returned by the entry points
var (
	// ErrRegistrationFailure means another logger owns the facade. It is
	// permanent for the life of the process.
	ErrRegistrationFailure = errors.New("logbridge: could not register as the facade logger")
	// ErrNotSetup means Setup has not completed successfully.
	ErrNotSetup = errors.New("logbridge: backend not set up, call Setup first")
	// ErrAlreadyAttached means a sink is attached; Detach it first.
	ErrAlreadyAttached = errors.New("logbridge: a sink is already attached")
	// ErrInvalidEncoding means a direct message was not valid UTF-8.
	ErrInvalidEncoding = errors.New("logbridge: message is not valid UTF-8")
	// ErrInvalidLevel means a level outside Error..Trace was given for a record or sink.
	ErrInvalidLevel = errors.New("logbridge: invalid level")
)

// Status is the numeric result code handed across the foreign boundary.
// Values are stable.
type Status uint32

const (
	StatusOK Status = iota
	StatusNotSetup
	StatusRegistrationFailure
	StatusAlreadyAttached
	StatusInvalidEncoding
	StatusInvalidLevel
)

// String returns the status name
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusNotSetup:
		return "NotSetup"
	case StatusRegistrationFailure:
		return "RegistrationFailure"
	case StatusAlreadyAttached:
		return "AlreadyAttached"
	case StatusInvalidEncoding:
		return "InvalidEncoding"
	case StatusInvalidLevel:
		return "InvalidLevel"
	default:
		return fmt.Sprintf("Status(%d)", uint32(s))
	}
}

// StatusOf maps an error returned by this package to its Status. Unknown
// non-nil errors map to StatusRegistrationFailure, the only fatal class.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrNotSetup):
		return StatusNotSetup
	case errors.Is(err, ErrAlreadyAttached):
		return StatusAlreadyAttached
	case errors.Is(err, ErrInvalidEncoding):
		return StatusInvalidEncoding
	case errors.Is(err, ErrInvalidLevel):
		return StatusInvalidLevel
	default:
		return StatusRegistrationFailure
	}
}
