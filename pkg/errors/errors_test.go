package errors

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("mongo connection refused")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if !errors.Is(wrapped, originalErr) {
		t.Errorf("expected errors.Is to unwrap to original error")
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "order not found",
			},
			expected: "NOT_FOUND: order not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("mongo connection refused"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: mongo connection refused)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestSessionInvalid(t *testing.T) {
	reason := errors.New("payment session already redeemed")
	err := SessionInvalid(reason)

	if err.Code != CodeSessionInvalid {
		t.Errorf("expected code %s, got %s", CodeSessionInvalid, err.Code)
	}
	if err.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", err.HTTPStatus)
	}
	if err.Message != SessionInvalidMessage {
		t.Errorf("expected generic session message, got %q", err.Message)
	}
	if !errors.Is(err, reason) {
		t.Errorf("expected the underlying reason to be preserved for logging")
	}

	// The serialized form must not leak the reason.
	payload := string(err.ToJSON())
	if !strings.Contains(payload, SessionInvalidMessage) {
		t.Errorf("expected serialized error to carry the generic message, got %s", payload)
	}
	if strings.Contains(payload, "already redeemed") {
		t.Errorf("serialized error leaked the internal reason: %s", payload)
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("Order")
	if got := AsAppError(appErr); got != appErr {
		t.Errorf("expected AsAppError to pass through AppError unchanged")
	}

	plain := errors.New("boom")
	got := AsAppError(plain)
	if got.Code != CodeInternal {
		t.Errorf("expected plain errors to map to %s, got %s", CodeInternal, got.Code)
	}
	if got.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", got.HTTPStatus)
	}
}
