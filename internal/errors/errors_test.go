package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppErrorTypes(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("outer: %w", NewGenerationError("render failed", cause))

	if !IsGenerationError(err) {
		t.Fatalf("expected generation error through wrapping")
	}
	if IsValidationError(err) || IsConflictError(err) || IsNotFoundError(err) {
		t.Fatalf("unexpected type match for %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable via errors.Is")
	}
	if got := MessageOf(err); got != "render failed" {
		t.Fatalf("expected user message %q, got %q", "render failed", got)
	}
}

func TestMessageOfPlainError(t *testing.T) {
	if got := MessageOf(errors.New("network")); got != "network" {
		t.Fatalf("expected network, got %q", got)
	}
	if got := MessageOf(nil); got != "" {
		t.Fatalf("expected empty message, got %q", got)
	}
}

func TestWrapErrorKeepsType(t *testing.T) {
	base := NewConflictError("already generating", nil)
	wrapped := WrapError(base, "generate", ErrorTypeError)

	if !IsConflictError(wrapped) {
		t.Fatalf("expected conflict type to be kept, got %v", wrapped)
	}
	if WrapError(nil, "x", ErrorTypeError) != nil {
		t.Fatalf("expected nil for nil input")
	}

	plain := WrapError(errors.New("io"), "read", ErrorTypeError)
	var appErr *AppError
	if !errors.As(plain, &appErr) || appErr.Code != "PROCESSING_ERROR" {
		t.Fatalf("expected processing app error, got %#v", plain)
	}
}
