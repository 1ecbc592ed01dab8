package errors

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestNewAndWrap(t *testing.T) {
	err := New(ErrCodeInvalidIdentifier, "identifier %q has 5 parts", "a:b:c:d:e")
	if err.Code != ErrCodeInvalidIdentifier {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidIdentifier)
	}
	if want := `INVALID_IDENTIFIER: identifier "a:b:c:d:e" has 5 parts`; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	cause := fmt.Errorf("open result.yml: %w", os.ErrNotExist)
	wrapped := Wrap(ErrCodeFileNotFound, cause, "result file %s", "result.yml")
	if wrapped.Cause != cause || errors.Unwrap(wrapped) != cause {
		t.Errorf("Cause = %v, want %v", wrapped.Cause, cause)
	}
	if !errors.Is(wrapped, os.ErrNotExist) {
		t.Error("errors.Is(wrapped, os.ErrNotExist) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"matching code", New(ErrCodeConfigMismatch, "x"), ErrCodeConfigMismatch, true},
		{"other code", New(ErrCodeConfigMismatch, "x"), ErrCodeInvariant, false},
		{"outer code wins", Wrap(ErrCodeInvalidFormat, New(ErrCodeInvalidProvenance, "inner"), "outer"), ErrCodeInvalidFormat, true},
		{"through fmt wrapping", fmt.Errorf("merge b.yml: %w", New(ErrCodeConfigMismatch, "x")), ErrCodeConfigMismatch, true},
		{"plain error", errors.New("plain"), ErrCodeInvalidInput, false},
		{"nil", nil, ErrCodeInvalidInput, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCodeAndUserMessage(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    Code
		message string
	}{
		{"coded", New(ErrCodeNotFound, "no project %s", "Maven:a:b:1"), ErrCodeNotFound, "no project Maven:a:b:1"},
		{"wrapped", fmt.Errorf("config: %w", New(ErrCodeInvalidPattern, "bad glob")), ErrCodeInvalidPattern, "bad glob"},
		{"plain", errors.New("plain error"), "", "plain error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %v, want %v", got, tt.code)
			}
			if got := UserMessage(tt.err); got != tt.message {
				t.Errorf("UserMessage() = %q, want %q", got, tt.message)
			}
		})
	}
	if got := GetCode(nil); got != "" {
		t.Errorf("GetCode(nil) = %v, want empty", got)
	}
}

func TestIsPrecondition(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"invariant", Invariant("duplicate key %s", "a"), true},
		{"identifier", New(ErrCodeInvalidIdentifier, "bad"), true},
		{"inconsistent graph", Wrap(ErrCodeInconsistentGraph, errors.New("x"), "paths"), true},
		{"input error", New(ErrCodeInvalidInput, "bad flag"), false},
		{"plain", errors.New("plain"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPrecondition(tt.err); got != tt.want {
				t.Errorf("IsPrecondition() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInvariantMessage(t *testing.T) {
	err := Invariant("duplicate provenance for %s", "npm::a:1")
	want := "INVARIANT_VIOLATION: duplicate provenance for npm::a:1"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
