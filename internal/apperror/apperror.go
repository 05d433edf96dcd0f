package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a terminal application error carrying the HTTP status it maps to.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code, so errors.Is(err, ErrNotFound)
// holds for every not-found error regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

var (
	ErrBadRequest   = New(http.StatusBadRequest, "Bad request", nil)
	ErrUnauthorized = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrForbidden    = New(http.StatusForbidden, "Forbidden", nil)
	ErrNotFound     = New(http.StatusNotFound, "Not found", nil)
	ErrConflict     = New(http.StatusConflict, "Conflict", nil)
)

func NotFound(format string, args ...any) *Error {
	return New(http.StatusNotFound, fmt.Sprintf(format, args...), nil)
}

func Conflict(format string, args ...any) *Error {
	return New(http.StatusConflict, fmt.Sprintf(format, args...), nil)
}

func Unauthorized(format string, args ...any) *Error {
	return New(http.StatusUnauthorized, fmt.Sprintf(format, args...), nil)
}

func Forbidden(format string, args ...any) *Error {
	return New(http.StatusForbidden, fmt.Sprintf(format, args...), nil)
}

func BadRequest(format string, args ...any) *Error {
	return New(http.StatusBadRequest, fmt.Sprintf(format, args...), nil)
}

// GatewayError is returned when the payment processor could not create a
// session. Retryable is set for timeouts, transport failures and 5xx answers.
type GatewayError struct {
	StatusCode int
	Message    string
	Retryable  bool
	Err        error
}

func (e *GatewayError) Error() string {
	msg := "payment gateway: " + e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps any error to the status code it should be answered with.
func HTTPStatus(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}

	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		if gwErr.Retryable {
			return http.StatusServiceUnavailable
		}
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

// PublicMessage is the message safe to show to the caller.
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}

	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Message
	}

	return http.StatusText(http.StatusInternalServerError)
}
