package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized = "UNAUTHORIZED"

	// Resource errors
	ErrCodeNotFound = "NOT_FOUND"

	// Validation errors
	ErrCodeInvalidArgument = "INVALID_ARGUMENT"

	// Business logic errors
	ErrCodeConflict = "CONFLICT"

	// Service errors
	ErrCodeStoreUnavailable = "STORE_UNAVAILABLE"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// Error is a classified error returned by services. Code selects the HTTP
// status; Err carries the underlying cause when one exists.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports that the addressed resource does not exist within the
// caller's household.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgument reports a malformed or out-of-range request.
func InvalidArgument(format string, args ...interface{}) *Error {
	return &Error{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a request that contradicts current state.
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Code: ErrCodeConflict, Message: fmt.Sprintf(format, args...)}
}

// StoreUnavailable wraps a storage failure so callers can tell infrastructure
// trouble apart from bad requests.
func StoreUnavailable(err error) *Error {
	return &Error{Code: ErrCodeStoreUnavailable, Message: "storage unavailable", Err: err}
}

// Internal wraps an unexpected failure.
func Internal(err error) *Error {
	return &Error{Code: ErrCodeInternalError, Message: "internal error", Err: err}
}

// CodeOf returns the classification code of err, or ErrCodeInternalError for
// unclassified errors.
func CodeOf(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternalError
}

// IsNotFound reports whether err is classified NOT_FOUND
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

// IsInvalidArgument reports whether err is classified INVALID_ARGUMENT
func IsInvalidArgument(err error) bool {
	return CodeOf(err) == ErrCodeInvalidArgument
}

// IsConflict reports whether err is classified CONFLICT
func IsConflict(err error) bool {
	return CodeOf(err) == ErrCodeConflict
}

// IsStoreUnavailable reports whether err is classified STORE_UNAVAILABLE
func IsStoreUnavailable(err error) bool {
	return CodeOf(err) == ErrCodeStoreUnavailable
}

// HTTPStatus maps a classified error to its response status code.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeInvalidArgument:
		return http.StatusBadRequest
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Respond sends err as a JSON error response with the mapped status.
func Respond(c *gin.Context, err error) {
	var e *Error
	if !stderrors.As(err, &e) {
		e = Internal(err)
	}
	c.JSON(HTTPStatus(e), e)
}

// BadRequest sends a 400 response for request decoding failures.
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	Respond(c, InvalidArgument("%s", message))
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	c.JSON(http.StatusUnauthorized, &Error{Code: ErrCodeUnauthorized, Message: message})
}
