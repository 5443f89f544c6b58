package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrOrderNotFound is returned when a provider does not know the requested order.
	ErrOrderNotFound = errors.New("order not found")
	// ErrUnknownSource is returned when a source filter names no configured provider.
	ErrUnknownSource = errors.New("unknown order source")
)

// ProviderRequestError reports a failed or malformed provider list/detail call.
type ProviderRequestError struct {
	// Provider is the provider that failed.
	Provider string
	// Operation is the adapter operation, e.g. list, get or create.
	Operation string
	// StatusCode is the HTTP status returned, or 0 when no response was received.
	StatusCode int
	// Body is the raw response body, if any.
	Body string
	// Err is the underlying error, if any.
	Err error
}

func (e *ProviderRequestError) Error() string {
	msg := fmt.Sprintf("%s %s request failed", e.Provider, e.Operation)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" with status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *ProviderRequestError) Unwrap() error {
	return e.Err
}

// ProviderFailure is the diagnostic record kept for a provider that failed during aggregation.
type ProviderFailure struct {
	Provider string `json:"provider"`
	Error    string `json:"error"`
}

// AggregationError is returned when every selected provider failed.
type AggregationError struct {
	Failures []ProviderFailure
}

func (e *AggregationError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Provider+": "+f.Error)
	}
	return "all order providers failed: " + strings.Join(parts, "; ")
}

// ValidationError reports one invalid or missing input field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every invalid field of one request.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, v := range e {
		parts = append(parts, v.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
