// Package errorx defines the business error type shared by every layer.
// Repositories, services and gateways return *CodeError; handlers turn the code
// into an HTTP status and a JSON envelope.
package errorx

import (
	"errors"
	"fmt"
	"net/http"
)

// CodeError is an error carrying a business code.
// It wraps an optional cause so errors.Is / errors.As keep working through it.
type CodeError struct {
	Code  int    // business code
	Msg   string // message safe to show to the caller
	cause error  // wrapped underlying error
}

// Error implements error. With a cause the format is "msg: cause".
func (e *CodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

// Unwrap exposes the cause to errors.Is / errors.As.
func (e *CodeError) Unwrap() error {
	return e.cause
}

// New creates a CodeError.
func New(code int, msg string) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  msg,
	}
}

// Newf creates a CodeError with a formatted message.
func Newf(code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Wrap attaches a code and message to err.
// Usage: errorx.Wrap(err, CodeNotFound, "contact not found")
func Wrap(err error, code int, msg string) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   msg,
		cause: err,
	}
}

// Wrapf is Wrap with a formatted message.
// Usage: errorx.Wrapf(err, CodeNotFound, "contact %d not found", id)
func Wrapf(err error, code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   fmt.Sprintf(format, args...),
		cause: err,
	}
}

// GetCode extracts the business code, CodeServerBusy for foreign errors.
func GetCode(err error) int {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code
	}
	return CodeServerBusy
}

// Business codes.
const (
	CodeSuccess       = 1000 // ok
	CodeInvalidParam  = 1001 // validation error
	CodeServerBusy    = 1005 // unexpected failure
	CodeUnauthorized  = 1006 // missing or bad credentials
	CodeNotFound      = 1008 // referenced entity absent
	CodeDeliveryError = 1009 // provider rejected or unreachable
	CodeDBError       = 1010 // storage error
	CodeCacheError    = 1011 // cache error
)

// Predefined instances, usable directly or as errors.Is targets.
var (
	ErrInvalidParam = New(CodeInvalidParam, "invalid request parameters")
	ErrServerBusy   = New(CodeServerBusy, "server busy")
	ErrUnauthorized = New(CodeUnauthorized, "unauthorized")
)

// HTTPStatus maps a business code to the HTTP status the API answers with.
func HTTPStatus(code int) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeDeliveryError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// IsNotFound reports whether err is a not-found error, gorm's included.
func IsNotFound(err error) bool {
	var codeErr *CodeError
	if errors.As(err, &codeErr) && codeErr.Code == CodeNotFound {
		return true
	}
	return err != nil && err.Error() == "record not found"
}

// IsCode reports whether any CodeError in err's chain carries code.
func IsCode(err error, code int) bool {
	var codeErr *CodeError
	return errors.As(err, &codeErr) && codeErr.Code == code
}
