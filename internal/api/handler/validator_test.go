package handler

import (
	"errors"
	"strings"
	"testing"
)

type sampleRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Source string `json:"source,omitempty" validate:"max=5"`
	Hidden string `json:"-" validate:"max=1"`
}

func TestValidator_UsesJSONNames(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&sampleRequest{Email: "nope", Source: "toolong"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	var violations ruleViolations
	if !errors.As(err, &violations) || len(violations) != 2 {
		t.Fatalf("expected 2 violations, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "email must be a valid email") || !strings.Contains(msg, "source must be at most 5 characters") {
		t.Fatalf("unexpected message: %s", msg)
	}
}

func TestValidator_Valid(t *testing.T) {
	if err := NewValidator().Validate(&sampleRequest{Email: "a@b.co"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidator_Required(t *testing.T) {
	err := NewValidator().Validate(&sampleRequest{})
	if err == nil || err.Error() != "email is required" {
		t.Fatalf("expected required message, got %v", err)
	}
}
