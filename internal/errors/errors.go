package errors

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	NetworkError       ErrorCode = "network_error"
	AuthError          ErrorCode = "auth_error"
	SerializationError ErrorCode = "serialization_error"
	InvalidInput       ErrorCode = "invalid_input"
	RouteNotFound      ErrorCode = "route_not_found"
	InternalError      ErrorCode = "internal_error"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	cause   error
}

func (e AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any AppError carrying the same code, so callers can write
// errors.Is(err, ErrAuth) regardless of message or details.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func (e *AppError) Unwrap() error {
	return e.cause
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// Wrap records err as the cause and copies its text into Details.
func (e *AppError) Wrap(err error) *AppError {
	e.cause = err
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

// HTTPStatus maps the error code to the status the portal answers with.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case InvalidInput:
		return http.StatusBadRequest
	case AuthError:
		return http.StatusUnauthorized
	case RouteNotFound:
		return http.StatusNotFound
	case NetworkError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Sentinels for errors.Is; never mutate them, build fresh errors with NewAppError.
var (
	ErrNetwork       = NewAppError(NetworkError, "login endpoint unreachable")
	ErrAuth          = NewAppError(AuthError, "authentication failed")
	ErrSerialization = NewAppError(SerializationError, "payload could not be serialized")
	ErrRouteNotFound = NewAppError(RouteNotFound, "route not found")
)
