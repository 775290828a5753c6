package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"validation", Validation("amount must be positive"), ErrValidation},
		{"not found", NotFound("group not found: %s", "g1"), ErrNotFound},
		{"forbidden", Forbidden("not a member"), ErrForbidden},
		{"consistency", Consistency("drift"), ErrConsistency},
		{"wrapped", fmt.Errorf("failed to delete expense: %w", NotFound("expense not found")), ErrNotFound},
		{"external", fmt.Errorf("%w: timeout", ErrExternalService), ErrExternalService},
		{"plain", errors.New("boom"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := NotFound("group not found: %s", "abc")
	if err.Error() != "group not found: abc" {
		t.Errorf("Error() = %q", err.Error())
	}
}
