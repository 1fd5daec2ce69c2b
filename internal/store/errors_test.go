package store

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "generic error",
			err:      errors.New("some error"),
			expected: false,
		},
		{
			name:     "ErrNotFound",
			err:      ErrNotFound,
			expected: true,
		},
		{
			name:     "wrapped ErrTaskNotFound",
			err:      fmt.Errorf("failed to get task: %w", ErrTaskNotFound),
			expected: true,
		},
		{
			name:     "ErrDuplicateTask",
			err:      ErrDuplicateTask,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFoundError(tt.err); got != tt.expected {
				t.Errorf("IsNotFoundError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	if !IsDuplicateError(fmt.Errorf("create: %w", ErrDuplicateTask)) {
		t.Error("Expected wrapped ErrDuplicateTask to be a duplicate error")
	}
	if IsDuplicateError(ErrTaskNotFound) {
		t.Error("Expected ErrTaskNotFound not to be a duplicate error")
	}
}

func TestStoreError(t *testing.T) {
	err := NewStoreError("analysis task", "create", "validation failed", ErrInvalidEntity)

	want := "create operation on analysis task failed: validation failed: invalid entity"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrInvalidEntity) {
		t.Error("Expected StoreError to unwrap to ErrInvalidEntity")
	}

	bare := NewStoreError("analysis task", "delete", "context canceled", nil)
	if bare.Error() != "delete operation on analysis task failed: context canceled" {
		t.Errorf("Unexpected message: %q", bare.Error())
	}
}
