package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies a failed gateway call.
type Kind string

const (
	// KindNetwork covers timeouts, refused connections and cancelled contexts.
	KindNetwork Kind = "network"
	// KindServerRejected is a non-2xx reply or a body with status "error".
	KindServerRejected Kind = "server_rejected"
	// KindMalformed is a reply that is not JSON or lacks required fields.
	KindMalformed Kind = "malformed"
)

const genericRejection = "the scheduling service could not process the request"

// Error is returned by every Client method on failure.
type Error struct {
	Kind       Kind
	Endpoint   string
	StatusCode int    // zero for network failures
	Message    string // server message for KindServerRejected
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("gateway %s %s: %s: %v", e.Endpoint, e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("gateway %s %s: %s", e.Endpoint, e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("gateway %s %s: %v", e.Endpoint, e.Kind, e.Err)
	}
	return fmt.Sprintf("gateway %s %s", e.Endpoint, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a gateway *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Kind == kind
}

func networkError(endpoint string, err error) *Error {
	return &Error{Kind: KindNetwork, Endpoint: endpoint, Err: err}
}

func malformedError(endpoint string, status int, err error) *Error {
	return &Error{Kind: KindMalformed, Endpoint: endpoint, StatusCode: status, Err: err}
}

func rejectedError(endpoint string, status int, message string) *Error {
	if message == "" {
		message = genericRejection
	}
	return &Error{Kind: KindServerRejected, Endpoint: endpoint, StatusCode: status, Message: message}
}
