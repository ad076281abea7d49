// Package apierror defines the error envelopes returned to API clients.
// Every 4xx/5xx body goes through here so clients see one shape and
// internal detail (driver errors, stack traces) never leaks out.
package apierror

import "fmt"

type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

func Newf(format string, args ...interface{}) *APIError {
	return &APIError{Detail: fmt.Sprintf(format, args...)}
}

// ValidationError carries per-field messages for 422 responses.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
