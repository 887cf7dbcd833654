// Package apperror defines the error kinds surfaced to users of the CLI.
//
// Every failure that a user can act on is classified into one of four kinds.
// Commands inspect the kind (via errors.As) to print a remediation hint; the
// message itself stays human-readable and wraps the underlying cause.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error by the remediation it requires.
type Kind string

const (
	// KindConfig indicates missing or invalid local configuration.
	// The user must run setup (or info for company and employee ids).
	KindConfig Kind = "config"

	// KindAuth indicates missing, expired or revoked tokens.
	// The user must run auth again.
	KindAuth Kind = "auth"

	// KindAPI indicates a non-authentication HTTP failure from the provider.
	KindAPI Kind = "api"

	// KindPermission indicates the provider denied access because of
	// missing scopes or an insufficient role.
	KindPermission Kind = "permission"
)

// Error is a classified error. Use the kind-specific constructors rather
// than building one directly.
type Error struct {
	Kind Kind

	// StatusCode is the HTTP status returned by the provider, if any.
	StatusCode int

	// Err carries the human-readable message and the wrapped cause.
	Err error
}

// Error returns the underlying message, prefixed with the status code for
// provider failures.
func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Err.Error(), e.StatusCode)
	}
	return e.Err.Error()
}

// Unwrap exposes the wrapped cause to errors.Is and errors.As.
func (e *Error) Unwrap() error { return e.Err }

// Config creates a configuration error.
func Config(format string, args ...any) *Error {
	return &Error{Kind: KindConfig, Err: fmt.Errorf(format, args...)}
}

// Auth creates an authentication error.
func Auth(format string, args ...any) *Error {
	return &Error{Kind: KindAuth, Err: fmt.Errorf(format, args...)}
}

// API creates a provider error with the HTTP status code.
func API(statusCode int, format string, args ...any) *Error {
	return &Error{Kind: KindAPI, StatusCode: statusCode, Err: fmt.Errorf(format, args...)}
}

// Permission creates a permission error with the HTTP status code.
func Permission(statusCode int, format string, args ...any) *Error {
	return &Error{Kind: KindPermission, StatusCode: statusCode, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) (Kind, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return "", false
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
