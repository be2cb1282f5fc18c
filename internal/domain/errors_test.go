package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "with wrapped error",
			err:  &AppError{Code: CodeNotFound, Message: "member not found", Err: errors.New("record not found")},
			want: "member not found: record not found",
		},
		{
			name: "without wrapped error",
			err:  &AppError{Code: CodeNotFound, Message: "member not found"},
			want: "member not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("inner error")
	appErr := &AppError{Code: CodeInternal, Message: "something failed", Err: inner}

	if !errors.Is(appErr, inner) {
		t.Error("Unwrap() should allow errors.Is to find wrapped error")
	}

	appErr2 := &AppError{Code: CodeInternal, Message: "no wrap"}
	if appErr2.Unwrap() != nil {
		t.Error("Unwrap() should return nil when Err is nil")
	}
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		checkFn func(error) bool
		code    string
	}{
		{"ErrNotFound", ErrNotFound, IsNotFound, CodeNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists, IsAlreadyExists, CodeAlreadyExists},
		{"ErrValidation", ErrValidation, IsValidation, CodeValidation},
		{"ErrUnauthorized", ErrUnauthorized, IsUnauthorized, CodeUnauthorized},
		{"ErrBusinessRule", ErrBusinessRule, IsBusinessRule, CodeBusinessRule},
		{"ErrInternal", ErrInternal, IsInternal, CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var appErr *AppError
			if !errors.As(tt.err, &appErr) {
				t.Fatal("should be *AppError")
			}
			if appErr.Code != tt.code {
				t.Errorf("Code = %q; want %q", appErr.Code, tt.code)
			}
			if !tt.checkFn(tt.err) {
				t.Errorf("check function should return true for %s", tt.name)
			}
		})
	}
}

func TestIsCheckers_WithWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("load account: %w", NewAppError(CodeNotFound, "account not found", nil))
	if !IsNotFound(wrapped) {
		t.Error("IsNotFound should detect wrapped not found error")
	}
	if IsAlreadyExists(wrapped) {
		t.Error("IsAlreadyExists should return false for not found error")
	}
}

func TestIsCheckers_NonAppError(t *testing.T) {
	plainErr := errors.New("some error")
	for name, fn := range map[string]func(error) bool{
		"IsNotFound":      IsNotFound,
		"IsAlreadyExists": IsAlreadyExists,
		"IsValidation":    IsValidation,
		"IsUnauthorized":  IsUnauthorized,
		"IsBusinessRule":  IsBusinessRule,
		"IsInternal":      IsInternal,
	} {
		if fn(plainErr) {
			t.Errorf("%s should return false for non-AppError", name)
		}
	}
}

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ErrNotFound, http.StatusNotFound},
		{"already exists", ErrAlreadyExists, http.StatusConflict},
		{"validation", ErrValidation, http.StatusBadRequest},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"business rule", ErrBusinessRule, http.StatusUnprocessableEntity},
		{"internal", ErrInternal, http.StatusInternalServerError},
		{"custom not found", NewAppError(CodeNotFound, "custom", nil), http.StatusNotFound},
		{"unknown code", NewAppError("77", "unknown", nil), http.StatusInternalServerError},
		{"non-AppError", errors.New("plain"), http.StatusInternalServerError},
		{"nil error", nil, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusCode(tt.err); got != tt.want {
				t.Errorf("HTTPStatusCode() = %d; want %d", got, tt.want)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("post transaction: %w", NewAppError(CodeBusinessRule, "insufficient balance", nil))
	if code, ok := CodeOf(wrapped); !ok || code != CodeBusinessRule {
		t.Errorf("CodeOf(wrapped) = %q, %v; want %q, true", code, ok, CodeBusinessRule)
	}
	if code, ok := CodeOf(errors.New("plain")); ok || code != "" {
		t.Errorf("CodeOf(plain) = %q, %v; want empty, false", code, ok)
	}
	if _, ok := CodeOf(nil); ok {
		t.Error("CodeOf(nil) should report false")
	}
}
