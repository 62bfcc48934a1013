package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindHelpers(t *testing.T) {
	if !IsValidation(Validation("bad_field", errors.New("field missing"))) {
		t.Fatalf("Validation errors should report as validation")
	}
	if !IsTransient(Transient("storage", errors.New("timeout"))) {
		t.Fatalf("Transient errors should report as transient")
	}
	if !IsAuth(Auth("expired", errors.New("token expired"))) {
		t.Fatalf("Auth errors should report as auth")
	}
	if IsTransient(Validation("x", errors.New("y"))) {
		t.Fatalf("kinds must not cross-match")
	}
	if IsValidation(errors.New("plain")) {
		t.Fatalf("plain errors carry no kind")
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("save page: %w", Transient("storage", errors.New("timeout")))
	if !IsTransient(err) {
		t.Fatalf("wrapping should not hide the kind")
	}
}

func TestSentinels(t *testing.T) {
	err := fmt.Errorf("block abc: %w", ErrNotFound)
	if !IsNotFound(err) {
		t.Fatalf("wrapped ErrNotFound should report as not found")
	}
	if !IsAuth(fmt.Errorf("wrapped: %w", ErrUnauthorized)) {
		t.Fatalf("wrapped ErrUnauthorized should report as auth")
	}
}

func TestErrorString(t *testing.T) {
	if got := Validation("code_only", nil).Error(); got != "code_only" {
		t.Fatalf("code fallback broken: %q", got)
	}
	if got := Validation("c", errors.New("inner")).Error(); got != "inner" {
		t.Fatalf("inner error should win: %q", got)
	}
}
