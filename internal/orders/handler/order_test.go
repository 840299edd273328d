package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "visadocs/pkg/errors"
	"visadocs/pkg/logger"
	"visadocs/pkg/middleware"
	"visadocs/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const testAdminKey = "test-admin-key"

type mockOrderService struct {
	finalizeFunc  func(ctx context.Context, req *model.FinalizeOrderRequest) (*model.FinalizeOrderResponse, error)
	getByIDFunc   func(ctx context.Context, id string) (*model.Order, error)
	getAllFunc    func(ctx context.Context, filter *model.OrderFilter, limit int, offset int64) ([]*model.Order, int64, error)
	exportCSVFunc func(ctx context.Context, filter *model.OrderFilter, w io.Writer) error
}

func (m *mockOrderService) Finalize(ctx context.Context, req *model.FinalizeOrderRequest) (*model.FinalizeOrderResponse, error) {
	if m.finalizeFunc != nil {
		return m.finalizeFunc(ctx, req)
	}
	return &model.FinalizeOrderResponse{Success: true, OrderID: "order-1"}, nil
}

func (m *mockOrderService) GetByID(ctx context.Context, id string) (*model.Order, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &model.Order{}, nil
}

func (m *mockOrderService) GetAll(ctx context.Context, filter *model.OrderFilter, limit int, offset int64) ([]*model.Order, int64, error) {
	if m.getAllFunc != nil {
		return m.getAllFunc(ctx, filter, limit, offset)
	}
	return []*model.Order{}, 0, nil
}

func (m *mockOrderService) ExportCSV(ctx context.Context, filter *model.OrderFilter, w io.Writer) error {
	if m.exportCSVFunc != nil {
		return m.exportCSVFunc(ctx, filter, w)
	}
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
}

func newRouter(svc *mockOrderService) *httprouter.Router {
	router := httprouter.New()
	NewOrderHandler(svc, testAdminKey, testLogger()).RegisterRoutes(router)
	return router
}

func TestFinalize_Success(t *testing.T) {
	svc := &mockOrderService{
		finalizeFunc: func(ctx context.Context, req *model.FinalizeOrderRequest) (*model.FinalizeOrderResponse, error) {
			if req.Token != "tok-1" || req.PaymentMethod != "card" {
				t.Errorf("unexpected request: %+v", req)
			}
			return &model.FinalizeOrderResponse{Success: true, OrderID: "order-1"}, nil
		},
	}
	router := newRouter(svc)

	body := `{"token":"tok-1","paymentMethod":"card"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp model.FinalizeOrderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !resp.Success || resp.OrderID != "order-1" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestFinalize_InvalidSession(t *testing.T) {
	svc := &mockOrderService{
		finalizeFunc: func(ctx context.Context, req *model.FinalizeOrderRequest) (*model.FinalizeOrderResponse, error) {
			return nil, apperrors.SessionInvalid(nil)
		},
	}
	router := newRouter(svc)

	body := `{"token":"used-token","paymentMethod":"card"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), apperrors.SessionInvalidMessage) {
		t.Errorf("expected generic session message, got: %s", rec.Body.String())
	}
}

func TestAdminRoutes_RequireKey(t *testing.T) {
	router := newRouter(&mockOrderService{})

	paths := []string{
		"/api/v1/admin/orders",
		"/api/v1/admin/orders/id/507f1f77bcf86cd799439011",
		"/api/v1/admin/orders/export",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401 without key, got %d", rec.Code)
			}

			req = httptest.NewRequest(http.MethodGet, path, nil)
			req.Header.Set(middleware.AdminKeyHeader, "wrong-key")
			rec = httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401 with wrong key, got %d", rec.Code)
			}
		})
	}
}

func TestAdminGetAll_WithFilters(t *testing.T) {
	var gotFilter *model.OrderFilter
	svc := &mockOrderService{
		getAllFunc: func(ctx context.Context, filter *model.OrderFilter, limit int, offset int64) ([]*model.Order, int64, error) {
			gotFilter = filter
			return []*model.Order{{OrderNumber: "HTL-000042"}}, 1, nil
		},
	}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/admin/orders?service=hotel-booking&status=paid&email=ana@example.com&from=2026-01-01&to=2026-01-31", nil)
	req.Header.Set(middleware.AdminKeyHeader, testAdminKey)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if gotFilter == nil {
		t.Fatal("expected filter to be extracted")
	}
	if gotFilter.Service != model.ServiceHotelBooking || gotFilter.Status != model.OrderStatusPaid {
		t.Errorf("unexpected filter: %+v", gotFilter)
	}
	if gotFilter.From == nil || gotFilter.To == nil {
		t.Error("expected date range in filter")
	}
}

func TestAdminGetAll_InvalidDate(t *testing.T) {
	router := newRouter(&mockOrderService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders?from=31-01-2026", nil)
	req.Header.Set(middleware.AdminKeyHeader, testAdminKey)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAdminGetByID_NotFound(t *testing.T) {
	svc := &mockOrderService{
		getByIDFunc: func(ctx context.Context, id string) (*model.Order, error) {
			return nil, apperrors.NotFoundWithID("Order", id)
		},
	}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders/id/507f1f77bcf86cd799439011", nil)
	req.Header.Set(middleware.AdminKeyHeader, testAdminKey)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAdminExport_SetsCSVHeaders(t *testing.T) {
	svc := &mockOrderService{
		exportCSVFunc: func(ctx context.Context, filter *model.OrderFilter, w io.Writer) error {
			_, err := w.Write([]byte("order_number,service\nFLT-000001,flight-reservation\n"))
			return err
		},
	}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders/export", nil)
	req.Header.Set(middleware.AdminKeyHeader, testAdminKey)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("expected text/csv, got %s", ct)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "orders.csv") {
		t.Errorf("expected attachment disposition, got %s", rec.Header().Get("Content-Disposition"))
	}
	if !strings.Contains(rec.Body.String(), "FLT-000001") {
		t.Errorf("expected CSV body, got %s", rec.Body.String())
	}
}
