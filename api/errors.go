package api

import (
	"errors"
	"fmt"
)

var (
	// ServerUnreachableErr reports that the backend could not be reached at
	// all — the request (or the health probe) failed at the transport level
	// or the probe returned a non-2xx status. Distinct from a rejected
	// request so the UI can say "can't reach server" rather than blaming
	// the user's input.
	ServerUnreachableErr = errors.New("server not responding, please try again later")

	// MalformedResponseErr reports a 2xx response whose body could not be
	// decoded or was missing required fields. A partial result is never
	// returned alongside it.
	MalformedResponseErr = errors.New("unexpected response from server")
)

// StatusError is a rejected request: the server answered with a non-2xx
// status. Message carries the server-supplied error string when the body
// contained one, otherwise a generic fallback including the status code.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return e.Message
}

// newStatusError builds a StatusError, falling back to a generic message
// when the server's payload carried none.
func newStatusError(status int, message string) *StatusError {
	if message == "" {
		message = fmt.Sprintf("request failed (%d)", status)
	}
	return &StatusError{Status: status, Message: message}
}

// IsUnreachable reports whether err classifies as a connectivity failure.
func IsUnreachable(err error) bool {
	return errors.Is(err, ServerUnreachableErr)
}

// AsStatusError unwraps err to a StatusError if it is one.
func AsStatusError(err error) (*StatusError, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr, true
	}
	return nil, false
}

// ErrorMessage maps a client error onto the human-readable message the UI
// renders, keeping the three failure classes distinguishable: can't reach
// server, request rejected, unexpected error.
func ErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case IsUnreachable(err):
		return ServerUnreachableErr.Error()
	case errors.Is(err, MalformedResponseErr):
		return MalformedResponseErr.Error()
	default:
		if statusErr, ok := AsStatusError(err); ok {
			return statusErr.Message
		}
		return "unexpected error occurred"
	}
}
