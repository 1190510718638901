package models

import (
	"errors"
	"fmt"
)

// Common errors used throughout the application. Every failure coming back
// from the backend is mapped onto exactly one of these so handlers can decide
// between "show an alert", "send to login" and "render not found".
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrValidationRejected = errors.New("request rejected by server")
	ErrNetworkFailure     = errors.New("network failure")
	ErrUnknown            = errors.New("unknown error")
)

// APIError carries the backend's human-readable message alongside the
// taxonomy sentinel it maps to. The message is what gets displayed; the
// sentinel is what code branches on via errors.Is.
type APIError struct {
	Kind       error
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

// NewAPIError builds an APIError from an HTTP status code and server message.
func NewAPIError(status int, message string) *APIError {
	var kind error
	switch {
	case status == 404:
		kind = ErrNotFound
	case status == 401 || status == 403:
		kind = ErrUnauthorized
	case status == 400 || status == 409 || status == 422:
		kind = ErrValidationRejected
	default:
		kind = ErrUnknown
	}
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}
	return &APIError{Kind: kind, Message: message, StatusCode: status}
}

// UserMessage returns a message suitable for display. Transport failures get
// a generic line so raw dial errors never reach the page.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if errors.Is(err, ErrNetworkFailure) {
		return "Could not reach the server. Please try again."
	}
	return err.Error()
}
