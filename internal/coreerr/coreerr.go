// Package coreerr defines the error taxonomy shared by every accounting-core
// component (money, storage, tenancy, audit, ledger).
//
// Non-retryable kinds (Validation, NotFound, TenantViolation, StorageFatal,
// IntegrityError) are surfaced to the caller as-is. StorageTransient and
// ConcurrencyConflict are retryable: callers may retry the whole Atomic
// block that produced them.
package coreerr

import (
	"errors"
	"fmt"
)

// Kind identifies the error taxonomy bucket. Compare with Is(err, KindX), or
// errors.Is against New(KindX, ""), never by matching Error() strings.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindNotFound           Kind = "not_found"
	KindTenantViolation    Kind = "tenant_violation"
	KindStorageTransient   Kind = "storage_transient"
	KindStorageFatal       Kind = "storage_fatal"
	KindIntegrityError     Kind = "integrity_error"
	KindConcurrencyConflict Kind = "concurrency_conflict"
)

// CoreError wraps a taxonomy Kind, a human message and an optional cause.
type CoreError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *CoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the cause for errors.Is/As.
func (e *CoreError) Unwrap() error { return e.Cause }

// Is implements errors.Is support for comparing against a bare Kind value
// wrapped in a zero-message CoreError, e.g. errors.Is(err, coreerr.New(coreerr.KindNotFound, "")).
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func New(kind Kind, message string) *CoreError {
	return &CoreError{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *CoreError {
	return &CoreError{Kind: kind, Message: message, Cause: cause}
}

// KindOf returns the Kind of err if it is (or wraps) a *CoreError, and ok=false
// otherwise.
func KindOf(err error) (Kind, bool) {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return "", false
}

// Is reports whether err is a CoreError of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

func Validation(format string, args ...any) *CoreError {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) *CoreError {
	return New(KindNotFound, fmt.Sprintf(format, args...))
}

func TenantViolation(format string, args ...any) *CoreError {
	return New(KindTenantViolation, fmt.Sprintf(format, args...))
}

func StorageTransient(cause error, format string, args ...any) *CoreError {
	return Wrap(KindStorageTransient, fmt.Sprintf(format, args...), cause)
}

func StorageFatal(cause error, format string, args ...any) *CoreError {
	return Wrap(KindStorageFatal, fmt.Sprintf(format, args...), cause)
}

func ConcurrencyConflict(cause error, format string, args ...any) *CoreError {
	return Wrap(KindConcurrencyConflict, fmt.Sprintf(format, args...), cause)
}
