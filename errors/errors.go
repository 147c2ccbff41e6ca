package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Naming errors: a logger name failed normalization or validation.
	ErrorTypeNaming ErrorType = "naming"

	// Configuration errors: a configure call carried semantically invalid input.
	ErrorTypeConfiguration ErrorType = "configuration"

	// Dispatch errors: a handler failed or panicked while emitting a record.
	ErrorTypeDispatch ErrorType = "dispatch"

	// Handler I/O errors: a sink could not reach its destination.
	ErrorTypeHandlerIO ErrorType = "handler_io"

	// System errors
	ErrorTypeInternal ErrorType = "internal"
	ErrorTypeUnknown  ErrorType = "unknown"
)

// Error represents a structured library error
type Error struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	InnerError error                  `json:"-"`
	Stack      []string               `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.InnerError != nil {
		return e.InnerError.Error()
	}
	return string(e.Type)
}

// Unwrap returns the inner error
func (e *Error) Unwrap() error {
	return e.InnerError
}

// WithMessage adds a message to the error
func (e *Error) WithMessage(msg string) *Error {
	e.Message = msg
	return e
}

// WithCode adds a code to the error
func (e *Error) WithCode(code string) *Error {
	e.Code = code
	return e
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithInnerError sets the inner error
func (e *Error) WithInnerError(err error) *Error {
	e.InnerError = err
	return e
}

// WithStack captures the call stack
func (e *Error) WithStack() *Error {
	e.Stack = captureStack(3) // Skip this method and the caller
	return e
}

// Is checks if this error is of a specific type
func (e *Error) Is(target error) bool {
	if targetErr, ok := target.(*Error); ok {
		return e.Type == targetErr.Type
	}
	return false
}

// New creates a new Error
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Code:    string(errType),
	}
}

// FromError converts a standard error to Error
func FromError(err error) *Error {
	if err == nil {
		return nil
	}

	if libErr, ok := err.(*Error); ok {
		return libErr
	}

	return &Error{
		Type:       ErrorTypeUnknown,
		Message:    err.Error(),
		InnerError: err,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) *Error {
	return FromError(err).WithMessage(message)
}

// WrapWithType wraps an error with a specific type
func WrapWithType(err error, errType ErrorType, message string) *Error {
	return &Error{
		Type:       errType,
		Message:    message,
		InnerError: err,
		Code:       string(errType),
	}
}

// NewNaming reports a malformed logger name.
func NewNaming(name string, reason string) *Error {
	return New(ErrorTypeNaming, fmt.Sprintf("invalid logger name %q: %s", name, reason)).
		WithDetail("name", name).
		WithDetail("reason", reason)
}

// NewConfiguration reports semantically invalid configure input. The
// offending field is recorded in the details.
func NewConfiguration(field string, reason string) *Error {
	return New(ErrorTypeConfiguration, fmt.Sprintf("invalid configuration for %s: %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

// NewDispatch reports a handler failure during record delivery.
func NewDispatch(handler string, err error) *Error {
	return WrapWithType(err, ErrorTypeDispatch, fmt.Sprintf("handler %s failed", handler)).
		WithDetail("handler", handler)
}

// NewHandlerIO reports a sink transport failure.
func NewHandlerIO(message string) *Error {
	return New(ErrorTypeHandlerIO, message)
}

// NewInternal creates an internal error
func NewInternal(message string) *Error {
	return New(ErrorTypeInternal, message)
}

// IsNaming reports whether err is a naming error.
func IsNaming(err error) bool {
	return isType(err, ErrorTypeNaming)
}

// IsConfiguration reports whether err is a configuration error.
func IsConfiguration(err error) bool {
	return isType(err, ErrorTypeConfiguration)
}

// IsDispatch reports whether err is a dispatch error.
func IsDispatch(err error) bool {
	return isType(err, ErrorTypeDispatch)
}

func isType(err error, errType ErrorType) bool {
	var libErr *Error
	if errors.As(err, &libErr) {
		return libErr.Type == errType
	}
	return false
}

// captureStack captures the call stack
func captureStack(skip int) []string {
	var stack []string
	for i := skip; i < 10; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		funcName := fn.Name()
		// Shorten function name
		if idx := strings.LastIndex(funcName, "/"); idx >= 0 {
			funcName = funcName[idx+1:]
		}

		stack = append(stack, fmt.Sprintf("%s:%d %s", file, line, funcName))
	}
	return stack
}
