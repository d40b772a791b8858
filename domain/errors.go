package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeUnavailable  ErrorCode = "UNAVAILABLE"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is a domain error with the same code and message,
// so a wrapped instance still matches its sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrInvalidCredentials   = NewError(ErrCodeUnauthorized, "invalid email or password")
	ErrDuplicateEmail       = NewError(ErrCodeConflict, "email already in use")
	ErrStorageUnavailable   = NewError(ErrCodeUnavailable, "storage unavailable")
	ErrSessionNotFound      = NewError(ErrCodeNotFound, "session not found")
	ErrUserNotFound         = NewError(ErrCodeNotFound, "user not found")
	ErrAppointmentNotFound  = NewError(ErrCodeNotFound, "appointment not found")
	ErrInvalidTransition    = NewError(ErrCodeConflict, "appointment is no longer pending")
	ErrDirectoryNotRestored = NewError(ErrCodeInternal, "identity directory used before restore")
	ErrUnauthorized         = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrForbidden            = NewError(ErrCodeForbidden, "forbidden")
	ErrInvalidPayload       = NewError(ErrCodeInvalid, "invalid payload")
	ErrRegisteredSignIn     = NewError(ErrCodeUnavailable, "account created, sign in to continue")
)

// StorageUnavailable classifies a failed storage read or write.
func StorageUnavailable(err error) *Error {
	return WrapError(ErrCodeUnavailable, ErrStorageUnavailable.Message, err)
}

// Invalid builds an ErrCodeInvalid error with a field-specific message.
func Invalid(message string) *Error {
	return NewError(ErrCodeInvalid, message)
}

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
