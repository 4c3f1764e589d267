package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeInvalidTemplate ErrorType = "invalid_template"
	ErrorTypeCommandTooLong  ErrorType = "command_too_long"
	ErrorTypeSpawn           ErrorType = "spawn"
	ErrorTypeFileNotFound    ErrorType = "file_not_found"
	ErrorTypeTransport       ErrorType = "transport"
	ErrorTypeUnsupported     ErrorType = "unsupported"
	ErrorTypeValidation      ErrorType = "validation"
	ErrorTypeConfig          ErrorType = "config"
	ErrorTypeInternal        ErrorType = "internal"
)

// Sentinels for errors.Is checks. Matching is done on the error type only.
var (
	ErrInvalidTemplate = &Error{Type: ErrorTypeInvalidTemplate, Message: "invalid HTTP command template"}
	ErrCommandTooLong  = &Error{Type: ErrorTypeCommandTooLong, Message: "HTTP command too long"}
	ErrSpawn           = &Error{Type: ErrorTypeSpawn, Message: "failed to start HTTP command"}
	ErrFileNotFound    = &Error{Type: ErrorTypeFileNotFound, Message: "upload file not found"}
	ErrTransport       = &Error{Type: ErrorTypeTransport, Message: "HTTP transport failed"}
	ErrUnsupported     = &Error{Type: ErrorTypeUnsupported, Message: "operation not supported by backend"}
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Message string
	Context map[string]interface{}
	Cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Cause.Error())
	}
	return e.Message
}

// Unwrap returns the underlying error for error unwrapping
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches a specific type
func (e *Error) Is(target error) bool {
	if targetErr, ok := target.(*Error); ok {
		return e.Type == targetErr.Type
	}
	return false
}

// WithContext adds context information to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new Error
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Context: make(map[string]interface{}),
		Cause:   err,
	}
}

// Wrapf wraps an existing error with formatted message
func Wrapf(err error, errType ErrorType, format string, args ...interface{}) *Error {
	return Wrap(err, errType, fmt.Sprintf(format, args...))
}

// Newf creates a new Error with formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return New(errType, fmt.Sprintf(format, args...))
}

// IsType checks if an error, or any error it wraps, is of a specific type
func IsType(err error, errType ErrorType) bool {
	var e *Error
	for err != nil {
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Type == errType {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetType returns the outermost error type, or ErrorTypeInternal if err is not an *Error
func GetType(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeInternal
}

// GetContext returns context information from the error
func GetContext(err error) map[string]interface{} {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Context
	}
	return nil
}
