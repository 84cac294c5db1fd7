// Package apperr defines the closed set of failure kinds a request can end in and
// how each one is presented over HTTP.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	Unknown Kind = iota
	AuthenticationRequired
	Validation
	MissingField
	MalformedBody
	UniquenessViolation
	NotFound
	Forbidden
)

func (k Kind) String() string {
	switch k {
	case AuthenticationRequired:
		return "authentication_required"
	case Validation:
		return "validation"
	case MissingField:
		return "missing_field"
	case MalformedBody:
		return "malformed_body"
	case UniquenessViolation:
		return "uniqueness_violation"
	case NotFound:
		return "not_found"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Error is a failure tagged with its Kind. Message is safe to show to callers;
// Field is only set for MissingField. Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap tags err with kind. A nil err stays nil.
func Wrap(err error, kind Kind, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

const (
	msgAuthRequired   = "Authentication Required"
	msgMalformedBody  = "Malformed JSON body. Please ensure the properties provided are well formatted."
	msgAccountExists  = "An account with these credentials may already exist. Please try logging in or use the 'Forgot Password' option if necessary."
	msgUnknown        = "An unknown error occurred"
	msgInternalDetail = "The server could not complete the request."
)

// AuthRequired is returned when no session is present.
func AuthRequired() *Error { return New(AuthenticationRequired, msgAuthRequired) }

// StaleSession is returned when a session exists but its user does not.
func StaleSession() *Error { return New(AuthenticationRequired, msgAuthRequired+".") }

func Missing(field string) *Error {
	return &Error{Kind: MissingField, Field: field, Message: fmt.Sprintf("Missing required field: %s.", field)}
}

func Malformed(err error) error {
	return &Error{Kind: MalformedBody, Message: msgMalformedBody, Err: err}
}

func Duplicate(err error) error {
	return &Error{Kind: UniquenessViolation, Message: msgAccountExists, Err: err}
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Body is the JSON shape of every error response.
type Body struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Translate maps err to its HTTP status and response body. Errors that carry no
// Kind become a 500 whose body never includes the cause.
func Translate(err error) (int, Body) {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, Body{Error: msgUnknown, Message: msgInternalDetail}
	}
	switch e.Kind {
	case AuthenticationRequired:
		return http.StatusUnauthorized, Body{Error: "Bad Request", Message: e.Message}
	case Validation:
		return http.StatusBadRequest, Body{Error: "Bad Request", Message: e.Message}
	case MissingField:
		return http.StatusBadRequest, Body{Error: "Bad Request", Message: fmt.Sprintf("Missing required field: %s.", e.Field)}
	case MalformedBody:
		return http.StatusBadRequest, Body{Error: "Bad Request", Message: msgMalformedBody}
	case UniquenessViolation:
		return http.StatusBadRequest, Body{Error: "Account creation failed", Message: msgAccountExists}
	case NotFound:
		return http.StatusNotFound, Body{Error: "Not Found", Message: e.Message}
	case Forbidden:
		return http.StatusForbidden, Body{Error: "Forbidden", Message: e.Message}
	default:
		return http.StatusInternalServerError, Body{Error: msgUnknown, Message: msgInternalDetail}
	}
}
