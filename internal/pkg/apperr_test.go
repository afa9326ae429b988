package pkg

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppErrorError(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewError(20201, "not found"),
			want: "[20201] not found",
		},
		{
			name: "with cause",
			err:  NewError(50001, "storage error").Wrap(errors.New("connection refused")),
			want: "[50001] storage error: connection refused",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapKeepsCodeAndCause(t *testing.T) {
	cause := errors.New("duplicate entry")
	wrapped := ErrStore.Wrap(cause)

	if wrapped.Code != CodeStore {
		t.Errorf("Code = %d, want %d", wrapped.Code, CodeStore)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("wrapped error should match its cause via errors.Is")
	}
	// Wrap 不改动原始预定义错误
	if ErrStore.Err != nil {
		t.Error("Wrap must not mutate the sentinel")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target *AppError
		want   bool
	}{
		{"same sentinel", ErrLastAdmin, ErrLastAdmin, true},
		{"wrapped sentinel", ErrStore.Wrap(errors.New("boom")), ErrStore, true},
		{"different code", ErrNotFound, ErrLastAdmin, false},
		{"plain error", errors.New("boom"), ErrStore, false},
		{"nested wrap", fmt.Errorf("ctx: %w", ErrPartialCascade.Wrap(errors.New("x"))), ErrPartialCascade, true},
		{"nil", nil, ErrStore, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.target); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCodeAndMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"app error", ErrNotAdmin, CodeNotAdmin, "admin role required"},
		{"wrapped", fmt.Errorf("ctx: %w", ErrNotFound), CodeNotFound, "not found"},
		{"plain error falls back", errors.New("boom"), CodeStore, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.wantCode {
				t.Errorf("GetCode() = %d, want %d", got, tt.wantCode)
			}
			if got := GetMessage(tt.err); got != tt.wantMsg {
				t.Errorf("GetMessage() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestValidationf(t *testing.T) {
	err := Validationf("score must be between %d and %d", 1, 5)
	if err.Code != CodeValidation {
		t.Errorf("Code = %d, want %d", err.Code, CodeValidation)
	}
	if err.Message != "score must be between 1 and 5" {
		t.Errorf("Message = %q", err.Message)
	}
}
