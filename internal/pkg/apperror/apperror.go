package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for HTTP mapping and recovery decisions.
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindUnauthorized    Kind = "unauthorized"
	KindAccessDenied    Kind = "access_denied"
	KindPayloadTooLarge Kind = "payload_too_large"
	KindInvalidFormat   Kind = "invalid_format"
	KindStorageFailure  Kind = "storage_failure"
	KindInternal        Kind = "internal"
)

type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *AppError {
	return New(KindNotFound, message)
}

func Unauthorized(message string) *AppError {
	return New(KindUnauthorized, message)
}

func AccessDenied(message string) *AppError {
	return New(KindAccessDenied, message)
}

func PayloadTooLarge(message string) *AppError {
	return New(KindPayloadTooLarge, message)
}

func InvalidFormat(message string) *AppError {
	return New(KindInvalidFormat, message)
}

func StorageFailure(message string, err error) *AppError {
	return Wrap(KindStorageFailure, message, err)
}

// KindOf extracts the Kind from any error in the chain; unknown errors
// are classified as internal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
