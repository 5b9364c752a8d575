// Package apperr provides standardized domain error types for the application.
// Domain services return these typed errors, and the HTTP layer maps them to
// status codes and a stable machine-readable code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind represents the category of error.
type Kind int

const (
	// KindUnknown is the default error kind when none is specified.
	KindUnknown Kind = iota
	// KindNotFound indicates a resource was not found.
	KindNotFound
	// KindValidation indicates invalid input data.
	KindValidation
	// KindConflict indicates a conflict with existing state (e.g., duplicate).
	KindConflict
	// KindForbidden indicates the action is not allowed for the user.
	KindForbidden
	// KindUnauthorized indicates authentication is required or failed.
	KindUnauthorized
	// KindBadRequest indicates a malformed or invalid request.
	KindBadRequest
	// KindInternal indicates an unexpected internal error.
	KindInternal
)

// Machine-readable codes returned to API clients.
const (
	CodeInvalidTransition     = "INVALID_TRANSITION"
	CodeMissingFields         = "MISSING_FIELDS"
	CodeForbidden             = "FORBIDDEN"
	CodeIneligibleQuotation   = "INELIGIBLE_QUOTATION"
	CodeProjectCreationFailed = "PROJECT_CREATION_FAILED"
	CodeMaterializationFailed = "MATERIALIZATION_FAILED"
	CodeNotFound              = "NOT_FOUND"
	CodeConflict              = "CONFLICT"
	CodeValidation            = "VALIDATION_FAILED"
	CodeInternal              = "INTERNAL"
)

// Error is a domain error with a typed Kind for HTTP mapping.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Op      string      // Operation that failed (optional)
	Err     error       // Underlying error (optional)
	Fields  []string    // Missing field labels (MISSING_FIELDS only)
	Details interface{} // Additional details for response (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the appropriate HTTP status code for this error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// New creates a new domain error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Code: defaultCode(kind), Message: message}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Code: defaultCode(kind), Message: message, Err: err}
}

// WithOp sets the operation on the error.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithCode overrides the machine-readable code.
func (e *Error) WithCode(code string) *Error {
	e.Code = code
	return e
}

// WithDetails attaches additional details for the response.
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

func defaultCode(kind Kind) string {
	switch kind {
	case KindNotFound:
		return CodeNotFound
	case KindConflict:
		return CodeConflict
	case KindForbidden:
		return CodeForbidden
	case KindValidation, KindBadRequest:
		return CodeValidation
	case KindInternal:
		return CodeInternal
	default:
		return ""
	}
}

// Convenience constructors for common error types.

// NotFound creates a not found error.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Validation creates a validation error.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// Conflict creates a conflict error (e.g., duplicate resource).
func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// Forbidden creates a forbidden error.
func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

// Unauthorized creates an unauthorized error.
func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message)
}

// BadRequest creates a bad request error.
func BadRequest(message string) *Error {
	return New(KindBadRequest, message)
}

// Internal creates an internal server error.
func Internal(message string) *Error {
	return New(KindInternal, message)
}

// InvalidTransition reports a stage change that is not an edge of the stage graph.
func InvalidTransition(from, to string) *Error {
	return New(KindBadRequest, fmt.Sprintf("cannot move lead from %s to %s", from, to)).
		WithCode(CodeInvalidTransition).
		WithDetails(map[string]string{"from": from, "to": to})
}

// MissingFields reports every unmet required field by label.
func MissingFields(labels []string) *Error {
	e := New(KindValidation, "required fields are missing").WithCode(CodeMissingFields)
	e.Fields = labels
	return e
}

// IneligibleQuotation reports a quotation that cannot be used to win a lead.
func IneligibleQuotation(message string) *Error {
	return New(KindBadRequest, message).WithCode(CodeIneligibleQuotation)
}

// GetKind extracts the error kind from an error.
// Returns KindUnknown if the error chain holds no *Error.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// GetCode extracts the machine-readable code from an error chain.
func GetCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is checks if err is an *Error with the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}

// HasCode checks if err carries the given machine-readable code.
func HasCode(err error, code string) bool {
	return GetCode(err) == code
}
