package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an API failure for presentation purposes.
type Kind string

const (
	// KindValidation is rejected user input, surfaced inline at the
	// offending form field.
	KindValidation Kind = "validation"

	// KindClient is a 4xx from the backend, surfaced next to the action
	// that caused it.
	KindClient Kind = "client"

	// KindServer is a 5xx from the backend.
	KindServer Kind = "server"

	// KindTransport is a network failure or an aborted request. Silent
	// for background refreshes, surfaced for user-initiated actions.
	KindTransport Kind = "transport"

	// KindPartial is a bulk operation that committed with failed > 0.
	KindPartial Kind = "partial"
)

// APIError is the structured failure every client call resolves to.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Kind    Kind   `json:"kind"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%d %s)", e.Message, e.Status, e.Code)
	}
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d)", e.Message, e.Status)
	}
	return e.Message
}

// errorBody is the error payload shape the backend returns on 4xx/5xx.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// classify maps an HTTP status and decoded error body to an APIError.
func classify(status int, body errorBody) *APIError {
	msg := body.Message
	kind := KindClient
	switch {
	case status >= 500:
		kind = KindServer
		if msg == "" {
			msg = "server error"
		}
	case status == http.StatusUnprocessableEntity, status == http.StatusBadRequest && body.Code == "validation_failed":
		kind = KindValidation
		if msg == "" {
			msg = "invalid input"
		}
	default:
		if msg == "" {
			msg = "request failed"
		}
	}
	return &APIError{Status: status, Code: body.Code, Message: msg, Kind: kind}
}

// transportError wraps a network-level or cancellation failure.
func transportError(err error) *APIError {
	msg := "network error"
	if errors.Is(err, context.Canceled) {
		msg = "request cancelled"
	} else if errors.Is(err, context.DeadlineExceeded) {
		msg = "request timed out"
	}
	return &APIError{Message: msg, Kind: KindTransport}
}

// ErrorKind extracts the Kind from any error returned by this package,
// defaulting to transport for unrecognized errors.
func ErrorKind(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindTransport
}
