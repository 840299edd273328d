package handler

import (
	"encoding/json"
	"net/http"

	"visadocs/internal/sessions/service"
	apperrors "visadocs/pkg/errors"
	httputil "visadocs/pkg/http"
	"visadocs/pkg/logger"
	"visadocs/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type SessionHandler struct {
	service service.SessionService
	log     *logger.Logger
}

func NewSessionHandler(service service.SessionService, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		log:     log,
	}
}

// Create issues a payment session token for a priced booking request.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	resp, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", err)
	}
}

// Validate inspects a token for the payment page. The response shape is
// {valid, data} on success and {valid:false, error} with a 400 otherwise.
func (h *SessionHandler) Validate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.ValidateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, model.ValidateSessionResponse{
			Valid: false,
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Validate", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	payload, err := h.service.Validate(r.Context(), req.Token)
	if err != nil {
		appErr := apperrors.AsAppError(err)
		if writeErr := httputil.WriteJSON(w, appErr.StatusCode(), model.ValidateSessionResponse{
			Valid: false,
			Error: appErr.Message,
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Validate", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, model.ValidateSessionResponse{
		Valid: true,
		Data:  payload,
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Validate", "operation", "WriteJSON", "error", err)
	}
}

func (h *SessionHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/payment-sessions", h.Create)
	router.POST("/api/v1/payment-sessions/validate", h.Validate)
}
