package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestStoreErrorUnwraps(t *testing.T) {
	err := fmt.Errorf("load: %w", &StoreError{Op: "fetch entries", Err: ErrNotFound})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected wrapped ErrNotFound, got %v", err)
	}
	var se *StoreError
	if !errors.As(err, &se) || se.Op != "fetch entries" {
		t.Fatalf("expected StoreError, got %v", err)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Field: "text", Reason: "empty"}
	if err.Error() != "validation: text: empty" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !IsValidation(fmt.Errorf("submit: %w", err)) {
		t.Fatal("expected IsValidation to see through wrapping")
	}
	if IsValidation(ErrConflict) {
		t.Fatal("ErrConflict is not a validation error")
	}
}
