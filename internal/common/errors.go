package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnsupportedInput = errors.New("unsupported input")
	ErrEmptyInput       = errors.New("empty input")
	ErrUpstream         = errors.New("upstream failure")
	ErrDatabase         = errors.New("database error")
)

// Caller-facing error codes.
const (
	CodeUnsupportedInput = "unsupported_input"
	CodeEmptyInput       = "empty_input"
	CodeUpstream         = "upstream"
	CodeConfig           = "CONFIG_ERROR"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func NewUnsupportedInputError(message string) *AppError {
	return NewAppError(CodeUnsupportedInput, message, ErrUnsupportedInput)
}

func NewEmptyInputError(message string) *AppError {
	return NewAppError(CodeEmptyInput, message, ErrEmptyInput)
}

// NewUpstreamError wraps a backend failure that is not recovered locally.
func NewUpstreamError(message string, cause error) *AppError {
	return NewAppError(CodeUpstream, message, errors.Join(ErrUpstream, cause))
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// ErrorCode returns the caller-facing category of err, or "" for nil.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedInput):
		return CodeUnsupportedInput
	case errors.Is(err, ErrEmptyInput):
		return CodeEmptyInput
	default:
		return CodeUpstream
	}
}
