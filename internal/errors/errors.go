package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new AppError with a formatted message
func Newf(code, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context. Errors that already carry a
// taxonomy code keep that code in the wrapper.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapAs wraps an error under the given code, leaving errors that already
// carry that code untouched. This is the single place the
// "wrap unless already classified" rule lives.
func WrapAs(code string, err error, message string) error {
	if err == nil {
		return nil
	}
	if HasCode(err, code) {
		return err
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// HasCode reports whether err, or any error in its chain, is an AppError
// carrying the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid = "CONFIG_INVALID"
	CodeDataLoader    = "DATA_LOADER_ERROR"
	CodeInternal      = "INTERNAL_ERROR"
)

// Common error constructors
func ConfigValidation(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DataLoader(message string) *AppError {
	return New(CodeDataLoader, message)
}

func DataLoaderWrap(err error, message string) error {
	return WrapAs(CodeDataLoader, err, message)
}

func Internal(message string) *AppError {
	return New(CodeInternal, message)
}

// IsConfigValidation reports whether err is a configuration validation error.
func IsConfigValidation(err error) bool {
	return HasCode(err, CodeConfigInvalid)
}

// IsDataLoader reports whether err is a data loading error.
func IsDataLoader(err error) bool {
	return HasCode(err, CodeDataLoader)
}
