package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	sessionerrors "visadocs/internal/sessions/errors"
	"visadocs/internal/sessions/validator"
	"visadocs/pkg/config"
	apperrors "visadocs/pkg/errors"
	"visadocs/pkg/logger"
	"visadocs/pkg/model"
)

type mockBroker struct {
	issueFunc   func(payload json.RawMessage) (string, error)
	inspectFunc func(token string) (json.RawMessage, error)
}

func (m *mockBroker) Issue(payload json.RawMessage) (string, error) {
	if m.issueFunc != nil {
		return m.issueFunc(payload)
	}
	return "test-token", nil
}

func (m *mockBroker) Inspect(token string) (json.RawMessage, error) {
	if m.inspectFunc != nil {
		return m.inspectFunc(token)
	}
	return nil, sessionerrors.ErrSessionNotFound
}

type mockValidator struct {
	validateFunc func(req *model.CreateSessionRequest) error
}

func (m *mockValidator) Validate(req *model.CreateSessionRequest) error {
	if m.validateFunc != nil {
		return m.validateFunc(req)
	}
	return nil
}

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:   "info",
		Format:  logger.JSON,
		Service: "test",
	})

	return &config.Config{
		Log:             log,
		CheckoutBaseURL: "https://checkout.example.com",
	}
}

func TestCreate_Success(t *testing.T) {
	var issued json.RawMessage
	broker := &mockBroker{
		issueFunc: func(payload json.RawMessage) (string, error) {
			issued = payload
			return "tok-abc123", nil
		},
	}

	svc := NewSessionService(broker, &mockValidator{}, testConfig())

	req := &model.CreateSessionRequest{
		Service:        model.ServiceFlightReservation,
		Travelers:      2,
		TotalAmount:    49.98,
		BookingDetails: json.RawMessage(`{"customer":{}}`),
	}

	resp, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if !resp.Success {
		t.Error("expected success=true")
	}
	if resp.Token != "tok-abc123" {
		t.Errorf("unexpected token: %s", resp.Token)
	}
	if resp.RedirectURL != "https://checkout.example.com/payment?token=tok-abc123" {
		t.Errorf("unexpected redirect URL: %s", resp.RedirectURL)
	}

	var payload model.SessionPayload
	if err := json.Unmarshal(issued, &payload); err != nil {
		t.Fatalf("issued payload is not valid JSON: %v", err)
	}
	if payload.SessionID == "" {
		t.Error("expected generated session ID")
	}
	if payload.Service != model.ServiceFlightReservation {
		t.Errorf("unexpected service in payload: %s", payload.Service)
	}
	if payload.TotalAmount != 49.98 {
		t.Errorf("unexpected total in payload: %v", payload.TotalAmount)
	}
	if payload.IssuedAt.IsZero() {
		t.Error("expected issuedAt to be set")
	}
}

func TestCreate_ValidationFailure(t *testing.T) {
	v := &mockValidator{
		validateFunc: func(req *model.CreateSessionRequest) error {
			return validator.ValidationErrors{
				{Field: "Service", Message: "Service must be one of: flight-reservation hotel-booking travel-insurance"},
			}
		},
	}

	svc := NewSessionService(&mockBroker{}, v, testConfig())

	_, err := svc.Create(context.Background(), &model.CreateSessionRequest{Service: "cruise"})
	if err == nil {
		t.Fatal("expected error")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}
	if appErr.StatusCode() != 400 {
		t.Errorf("expected 400, got %d", appErr.StatusCode())
	}
}

func TestValidate_Success(t *testing.T) {
	payload := model.SessionPayload{
		SessionID:      "sid-1",
		Service:        model.ServiceHotelBooking,
		Travelers:      1,
		TotalAmount:    24.99,
		BookingDetails: json.RawMessage(`{"customer":{"email":"a@b.com"}}`),
	}
	raw, _ := json.Marshal(payload)

	broker := &mockBroker{
		inspectFunc: func(token string) (json.RawMessage, error) {
			if token != "tok-1" {
				t.Errorf("unexpected token: %s", token)
			}
			return raw, nil
		},
	}

	svc := NewSessionService(broker, &mockValidator{}, testConfig())

	got, err := svc.Validate(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if got.SessionID != "sid-1" || got.TotalAmount != 24.99 {
		t.Errorf("unexpected payload: %+v", got)
	}
}

func TestValidate_LifecycleErrorsCollapse(t *testing.T) {
	// Every broker rejection maps to the same client-facing message so the
	// endpoint cannot be used to probe token state.
	cases := []struct {
		name string
		err  error
	}{
		{"not found", sessionerrors.ErrSessionNotFound},
		{"used", sessionerrors.ErrSessionUsed},
		{"expired", sessionerrors.ErrSessionExpired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			broker := &mockBroker{
				inspectFunc: func(token string) (json.RawMessage, error) {
					return nil, tc.err
				},
			}

			svc := NewSessionService(broker, &mockValidator{}, testConfig())

			_, err := svc.Validate(context.Background(), "tok-x")
			if err == nil {
				t.Fatal("expected error")
			}

			appErr := apperrors.AsAppError(err)
			if appErr.Code != apperrors.CodeSessionInvalid {
				t.Errorf("expected SESSION_INVALID, got %s", appErr.Code)
			}
			if appErr.StatusCode() != 400 {
				t.Errorf("expected 400, got %d", appErr.StatusCode())
			}
			if appErr.Message != apperrors.SessionInvalidMessage {
				t.Errorf("expected generic message, got %q", appErr.Message)
			}
			if strings.Contains(appErr.Message, "redeemed") {
				t.Error("client message must not leak the rejection reason")
			}
		})
	}
}

func TestValidate_EmptyToken(t *testing.T) {
	svc := NewSessionService(&mockBroker{}, &mockValidator{}, testConfig())

	_, err := svc.Validate(context.Background(), "")
	if err == nil {
		t.Fatal("expected error")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}
}
