package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"visadocs/internal/orders/service"
	apperrors "visadocs/pkg/errors"
	httputil "visadocs/pkg/http"
	"visadocs/pkg/logger"
	"visadocs/pkg/middleware"
	"visadocs/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type OrderHandler struct {
	service  service.OrderService
	adminKey string
	log      *logger.Logger
}

func NewOrderHandler(service service.OrderService, adminKey string, log *logger.Logger) *OrderHandler {
	return &OrderHandler{
		service:  service,
		adminKey: adminKey,
		log:      log,
	}
}

// Finalize completes checkout for a redeemed payment session.
func (h *OrderHandler) Finalize(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.FinalizeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Finalize", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	resp, err := h.service.Finalize(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Finalize", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Finalize", "operation", "WriteJSON", "error", err)
	}
}

func (h *OrderHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	filter, err := extractOrderFilter(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	orders, total, err := h.service.GetAll(r.Context(), filter, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, orders, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	order, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, order); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *OrderHandler) Export(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter, err := extractOrderFilter(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Export", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="orders.csv"`)

	if err := h.service.ExportCSV(r.Context(), filter, w); err != nil {
		// Headers are already sent; all that remains is logging.
		h.log.Error("CSV export failed", "handler", "Export", "error", err)
	}
}

func extractOrderFilter(r *http.Request) (*model.OrderFilter, error) {
	query := r.URL.Query()

	filter := &model.OrderFilter{
		Service: query.Get("service"),
		Status:  query.Get("status"),
		Email:   query.Get("email"),
	}

	if s := query.Get("from"); s != "" {
		from, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, invalidDateParam("from", s)
		}
		filter.From = &from
	}

	if s := query.Get("to"); s != "" {
		to, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, invalidDateParam("to", s)
		}
		// Inclusive upper bound covering the whole day.
		to = to.Add(24*time.Hour - time.Nanosecond)
		filter.To = &to
	}

	return filter, nil
}

func invalidDateParam(name, value string) error {
	return apperrors.InvalidInput(fmt.Sprintf("invalid %s parameter (expected YYYY-MM-DD): %s", name, value))
}

func (h *OrderHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/orders", h.Finalize)

	admin := middleware.AdminKeyAuth(h.adminKey, h.log)
	router.GET("/api/v1/admin/orders", admin(h.GetAll))
	router.GET("/api/v1/admin/orders/id/:id", admin(h.GetByID))
	router.GET("/api/v1/admin/orders/export", admin(h.Export))
}
