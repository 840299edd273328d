package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "visadocs/pkg/errors"
	"visadocs/pkg/logger"
	"visadocs/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockSessionService struct {
	createFunc   func(ctx context.Context, req *model.CreateSessionRequest) (*model.CreateSessionResponse, error)
	validateFunc func(ctx context.Context, token string) (*model.SessionPayload, error)
}

func (m *mockSessionService) Create(ctx context.Context, req *model.CreateSessionRequest) (*model.CreateSessionResponse, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return &model.CreateSessionResponse{Success: true, Token: "tok"}, nil
}

func (m *mockSessionService) Validate(ctx context.Context, token string) (*model.SessionPayload, error) {
	if m.validateFunc != nil {
		return m.validateFunc(ctx, token)
	}
	return &model.SessionPayload{}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
}

func newRouter(svc *mockSessionService) *httprouter.Router {
	router := httprouter.New()
	NewSessionHandler(svc, testLogger()).RegisterRoutes(router)
	return router
}

func TestCreate_Success(t *testing.T) {
	svc := &mockSessionService{
		createFunc: func(ctx context.Context, req *model.CreateSessionRequest) (*model.CreateSessionResponse, error) {
			return &model.CreateSessionResponse{
				Success:     true,
				Token:       "tok-1",
				RedirectURL: "http://localhost:3000/payment?token=tok-1",
			}, nil
		},
	}
	router := newRouter(svc)

	body := `{"service":"flight-reservation","travelers":1,"totalAmount":24.99,"bookingDetails":{}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payment-sessions", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp model.CreateSessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !resp.Success || resp.Token != "tok-1" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.RedirectURL == "" {
		t.Error("expected redirectUrl in response")
	}
}

func TestCreate_InvalidBody(t *testing.T) {
	router := newRouter(&mockSessionService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payment-sessions", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if _, ok := resp["error"]; !ok {
		t.Error("expected error field in response")
	}
}

func TestCreate_ServiceError(t *testing.T) {
	svc := &mockSessionService{
		createFunc: func(ctx context.Context, req *model.CreateSessionRequest) (*model.CreateSessionResponse, error) {
			return nil, apperrors.InvalidInput("Travelers must be at least 1")
		},
	}
	router := newRouter(svc)

	body := `{"service":"flight-reservation","travelers":0,"totalAmount":24.99,"bookingDetails":{}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payment-sessions", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestValidate_Success(t *testing.T) {
	svc := &mockSessionService{
		validateFunc: func(ctx context.Context, token string) (*model.SessionPayload, error) {
			return &model.SessionPayload{
				SessionID:   "sid-1",
				Service:     model.ServiceTravelInsurance,
				Travelers:   1,
				TotalAmount: 19.99,
			}, nil
		},
	}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payment-sessions/validate", bytes.NewBufferString(`{"token":"tok-1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp model.ValidateSessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !resp.Valid {
		t.Error("expected valid=true")
	}
	if resp.Data == nil || resp.Data.SessionID != "sid-1" {
		t.Errorf("unexpected data: %+v", resp.Data)
	}
}

func TestValidate_InvalidSession(t *testing.T) {
	svc := &mockSessionService{
		validateFunc: func(ctx context.Context, token string) (*model.SessionPayload, error) {
			return nil, apperrors.SessionInvalid(nil)
		},
	}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payment-sessions/validate", bytes.NewBufferString(`{"token":"bad"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp model.ValidateSessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Valid {
		t.Error("expected valid=false")
	}
	if resp.Error != apperrors.SessionInvalidMessage {
		t.Errorf("unexpected error message: %q", resp.Error)
	}
}
