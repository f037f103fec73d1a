package negotiation

import (
	"errors"
	"fmt"
)

const (
	CodeValidation   = "validation"
	CodePrecondition = "precondition"
	CodeInFlight     = "in_flight"
	CodeNotFound     = "not_found"
)

// NegotiationError is returned for failures detected before any gateway
// call is made. Gateway failures are returned as *gateway.Error instead.
type NegotiationError struct {
	Code    string
	Message string
}

func (e *NegotiationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches on Code so callers can use errors.Is against the sentinels.
func (e *NegotiationError) Is(target error) bool {
	var t *NegotiationError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrValidation   = &NegotiationError{Code: CodeValidation}
	ErrPrecondition = &NegotiationError{Code: CodePrecondition}
	ErrInFlight     = &NegotiationError{Code: CodeInFlight}
	ErrNotFound     = &NegotiationError{Code: CodeNotFound}
)

func NewValidationError(format string, args ...any) error {
	return &NegotiationError{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func NewPreconditionError(format string, args ...any) error {
	return &NegotiationError{Code: CodePrecondition, Message: fmt.Sprintf(format, args...)}
}

func NewInFlightError(meetingID string) error {
	return &NegotiationError{Code: CodeInFlight, Message: fmt.Sprintf("a decision for meeting %s is already outstanding", meetingID)}
}

func NewNotFoundError(format string, args ...any) error {
	return &NegotiationError{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}
