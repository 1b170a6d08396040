package session

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidCredentials is returned when the server rejects a login.
	// The message never reveals whether the email is registered.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrMissingCredentials is returned when login is attempted with an
	// empty email or password.
	ErrMissingCredentials = errors.New("email and password are required")

	// ErrNetwork wraps transport failures. The caller surfaces it as a
	// generic retryable message; no automatic retry is performed.
	ErrNetwork = errors.New("network error")
)

// FieldError attributes a validation message to a single form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries per-field messages for display next to the form
// inputs. It is produced client-side before any network call, or from the
// server's errors array on rejection.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// APIError is a non-validation rejection from the auth API, such as a
// duplicate email on signup.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("auth api rejected request (%d): %s", e.StatusCode, e.Message)
}
