package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain error with a structured error code.
//
// Codes follow the format PL-<AREA>-<NNNN>; the numeric part mirrors HTTP
// status semantics (4xxx caller side, 5xxx system side, 1xxx arguments).
type DomainError struct {
	Code    string // Error code (e.g., "PL-STOR-5001")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsInvalidArgument reports whether err is a caller contract violation
// (missing or malformed argument).
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrMissingArgument)
}

// Argument errors. These are programmer errors and are returned before any
// hashing or backend I/O takes place.
var (
	// ErrInvalidArgument indicates an argument has an unusable value.
	ErrInvalidArgument = NewDomainError("PL-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is empty.
	ErrMissingArgument = NewDomainError("PL-ARG-1002", "missing required argument")
)

// Record errors.
var (
	// ErrRecordNotFound is the backend signal for an absent record.
	// The token store never surfaces it from Authenticate.
	ErrRecordNotFound = NewDomainError("PL-REC-4040", "token record not found")

	// ErrRecordInvalid indicates a record failed validation before a write.
	ErrRecordInvalid = NewDomainError("PL-REC-4001", "token record validation failed")

	// ErrRecordCorrupted indicates a persisted record could not be decoded.
	ErrRecordCorrupted = NewDomainError("PL-REC-5002", "token record corrupted")
)

// Storage errors.
var (
	// ErrBackend indicates a connectivity or storage-layer failure.
	ErrBackend = NewDomainError("PL-STOR-5001", "backend error")

	// ErrBackendClosed indicates the backend session was already released.
	ErrBackendClosed = NewDomainError("PL-STOR-5031", "backend closed")
)

// Hash errors.
var (
	// ErrHash indicates a digest could not be computed or verified.
	ErrHash = NewDomainError("PL-HASH-5001", "hash error")
)

// System errors.
var (
	// ErrInternal indicates an unexpected internal failure.
	ErrInternal = NewDomainError("PL-SYS-5000", "internal error")
)
