package github

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v66/github"
)

// ErrorType categorizes GitHub API failures.
type ErrorType string

const (
	ErrorTypeAuth       ErrorType = "authentication"
	ErrorTypePermission ErrorType = "permission"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeRateLimit  ErrorType = "rate_limit"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error is a structured error from a GitHub operation. Failures are handled
// at the call site with no automatic retry; the type exists so callers and
// logs can tell an auth problem from a missing resource.
type Error struct {
	Type     ErrorType `json:"type"`
	Message  string    `json:"message"`
	Resource string    `json:"resource,omitempty"`
	Cause    error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s error for %s: %s", e.Type, e.Resource, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether err is a not-found API error.
func IsNotFound(err error) bool {
	ghErr, ok := err.(*Error)
	return ok && ghErr.Type == ErrorTypeNotFound
}

// WrapAPIError wraps a go-github error into an Error, classifying it by the
// response status code. The resource string names what was being operated on.
func WrapAPIError(err error, resource string) *Error {
	if err == nil {
		return nil
	}

	if ghErr, ok := err.(*Error); ok {
		if ghErr.Resource == "" {
			ghErr.Resource = resource
		}
		return ghErr
	}

	if rateErr, ok := err.(*github.RateLimitError); ok {
		return &Error{
			Type:     ErrorTypeRateLimit,
			Message:  fmt.Sprintf("rate limit exceeded, resets at %v", rateErr.Rate.Reset.Time),
			Resource: resource,
			Cause:    err,
		}
	}

	errResp, ok := err.(*github.ErrorResponse)
	if !ok {
		return &Error{
			Type:     ErrorTypeUnknown,
			Message:  err.Error(),
			Resource: resource,
			Cause:    err,
		}
	}

	wrapped := &Error{Resource: resource, Cause: err}
	switch errResp.Response.StatusCode {
	case http.StatusUnauthorized:
		wrapped.Type = ErrorTypeAuth
		wrapped.Message = "authentication failed, check the GitHub token"
	case http.StatusForbidden:
		if strings.Contains(errResp.Message, "rate limit") {
			wrapped.Type = ErrorTypeRateLimit
			wrapped.Message = "API rate limit exceeded"
		} else {
			wrapped.Type = ErrorTypePermission
			wrapped.Message = "insufficient permissions, the token may be missing required scopes"
		}
	case http.StatusNotFound:
		wrapped.Type = ErrorTypeNotFound
		wrapped.Message = "resource not found"
	case http.StatusConflict:
		wrapped.Type = ErrorTypeConflict
		wrapped.Message = "resource conflict"
	case http.StatusUnprocessableEntity:
		wrapped.Type = ErrorTypeValidation
		wrapped.Message = validationMessage(errResp)
	default:
		wrapped.Type = ErrorTypeUnknown
		wrapped.Message = errResp.Message
	}
	return wrapped
}

func validationMessage(errResp *github.ErrorResponse) string {
	if len(errResp.Errors) == 0 {
		return "validation failed"
	}
	var details []string
	for _, e := range errResp.Errors {
		if e.Field != "" {
			details = append(details, fmt.Sprintf("%s: %s", e.Field, e.Message))
		} else {
			details = append(details, e.Message)
		}
	}
	return "validation failed: " + strings.Join(details, "; ")
}

// ValidationError reports a single manifest validation problem.
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("validation error for field '%s' (value: %s): %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidationErrors aggregates manifest validation problems so a single pass
// reports everything that is wrong.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	switch len(e) {
	case 0:
		return "validation failed"
	case 1:
		return e[0].Error()
	}
	messages := make([]string, len(e))
	for i, err := range e {
		messages[i] = err.Error()
	}
	return fmt.Sprintf("validation failed with %d errors: %s", len(e), strings.Join(messages, "; "))
}

// Add appends a validation error to the collection.
func (e *ValidationErrors) Add(field, value, message string) {
	*e = append(*e, ValidationError{Field: field, Value: value, Message: message})
}

// HasErrors reports whether any validation errors were collected.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}
