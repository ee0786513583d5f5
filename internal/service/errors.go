package service

import (
	"errors"
	"fmt"
)

// Code categorizes a callable error. The code and message are the observable
// contract for callers.
type Code string

const (
	CodeUnauthenticated  Code = "unauthenticated"
	CodeInvalidArgument  Code = "invalid-argument"
	CodeNotFound         Code = "not-found"
	CodePermissionDenied Code = "permission-denied"
	CodeInternal         Code = "internal"
)

// CodedError is an error carrying a callable error code.
type CodedError struct {
	Code    Code
	Message string
	Err     error
}

func (e *CodedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Err
}

// Errf creates a CodedError with a formatted message.
func Errf(code Code, format string, args ...any) *CodedError {
	return &CodedError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapInternal wraps an error as an internal CodedError.
func WrapInternal(msg string, err error) *CodedError {
	return &CodedError{Code: CodeInternal, Message: msg, Err: err}
}

// ErrCode extracts the code from an error, defaulting to internal.
func ErrCode(err error) Code {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return CodeInternal
}
