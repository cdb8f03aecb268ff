package service

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a business rejection or internal failure so callers
// can distinguish retriable conditions from final ones.
type ErrorCode string

const (
	// ErrCodeNotFound means the requested resource does not exist
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeForbidden means the actor is not allowed to perform the operation
	ErrCodeForbidden ErrorCode = "FORBIDDEN"
	// ErrCodeInvalidState means the operation is not valid for the resource's
	// current lifecycle state
	ErrCodeInvalidState ErrorCode = "INVALID_STATE"
	// ErrCodePaymentFailed means the external payment capture was not confirmed
	ErrCodePaymentFailed ErrorCode = "PAYMENT_FAILED"
	// ErrCodeInvariantViolation means internal consistency was broken. It is
	// never a normal business rejection: it indicates a bug and is not
	// retriable.
	ErrCodeInvariantViolation ErrorCode = "INVARIANT_VIOLATION"
)

// DomainError is a classified business error surfaced to callers
type DomainError struct {
	Code    ErrorCode
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewNotFound creates a NOT_FOUND error
func NewNotFound(format string, args ...any) *DomainError {
	return &DomainError{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewForbidden creates a FORBIDDEN error
func NewForbidden(format string, args ...any) *DomainError {
	return &DomainError{Code: ErrCodeForbidden, Message: fmt.Sprintf(format, args...)}
}

// NewInvalidState creates an INVALID_STATE error
func NewInvalidState(format string, args ...any) *DomainError {
	return &DomainError{Code: ErrCodeInvalidState, Message: fmt.Sprintf(format, args...)}
}

// NewPaymentFailed creates a PAYMENT_FAILED error
func NewPaymentFailed(format string, args ...any) *DomainError {
	return &DomainError{Code: ErrCodePaymentFailed, Message: fmt.Sprintf(format, args...)}
}

// NewInvariantViolation creates an INVARIANT_VIOLATION error
func NewInvariantViolation(format string, args ...any) *DomainError {
	return &DomainError{Code: ErrCodeInvariantViolation, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the error code carried by err, or "" for unclassified errors
func CodeOf(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsCode reports whether err carries the given error code
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
