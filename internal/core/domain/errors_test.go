package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "error without details",
			err:      NewDomainError("PL-TEST-1000", "test message"),
			expected: "[PL-TEST-1000] test message",
		},
		{
			name:     "error with details",
			err:      NewDomainError("PL-TEST-1001", "test message").WithDetails("extra info"),
			expected: "[PL-TEST-1001] test message: extra info",
		},
		{
			name:     "error with details and cause",
			err:      NewDomainError("PL-TEST-1002", "test message").WithDetails("put").WithCause(fmt.Errorf("disk full")),
			expected: "[PL-TEST-1002] test message: put: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	err1 := NewDomainError("PL-TEST-1000", "message 1")
	err2 := NewDomainError("PL-TEST-1000", "message 2")
	err3 := NewDomainError("PL-TEST-1001", "message 1")

	if !errors.Is(err1, err2) {
		t.Error("errors.Is should return true for same error code")
	}
	if errors.Is(err1, err3) {
		t.Error("errors.Is should return false for different error code")
	}
	if errors.Is(err1, fmt.Errorf("some error")) {
		t.Error("errors.Is should return false for non-DomainError")
	}
}

func TestDomainError_WrappedSentinels(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := fmt.Errorf("store: %w", ErrBackend.WithCause(cause))

	if !errors.Is(err, ErrBackend) {
		t.Error("wrapped backend error should match ErrBackend")
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped backend error should match its cause")
	}
	if got := GetErrorCode(err); got != "PL-STOR-5001" {
		t.Errorf("GetErrorCode() = %q, want PL-STOR-5001", got)
	}
	if !IsDomainError(err, "") {
		t.Error("IsDomainError(err, \"\") should be true")
	}
	if IsDomainError(cause, "") {
		t.Error("plain error should not be a DomainError")
	}
}

func TestIsInvalidArgument(t *testing.T) {
	if !IsInvalidArgument(ErrMissingArgument.WithDetails("token")) {
		t.Error("missing argument should count as invalid argument")
	}
	if !IsInvalidArgument(ErrInvalidArgument.WithDetails("ttl")) {
		t.Error("invalid argument should count as invalid argument")
	}
	if IsInvalidArgument(ErrBackend) {
		t.Error("backend error is not an argument error")
	}
}
