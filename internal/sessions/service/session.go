package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	apperrors "visadocs/pkg/errors"

	"visadocs/internal/sessions/validator"
	"visadocs/pkg/config"
	"visadocs/pkg/model"

	"github.com/google/uuid"
)

// TokenBroker is the slice of the broker the session service needs.
type TokenBroker interface {
	Issue(payload json.RawMessage) (string, error)
	Inspect(token string) (json.RawMessage, error)
}

type SessionService interface {
	Create(ctx context.Context, req *model.CreateSessionRequest) (*model.CreateSessionResponse, error)
	Validate(ctx context.Context, token string) (*model.SessionPayload, error)
}

type RequestValidator interface {
	Validate(req *model.CreateSessionRequest) error
}

type sessionService struct {
	broker    TokenBroker
	validator RequestValidator
	cfg       *config.Config
}

func NewSessionService(broker TokenBroker, v RequestValidator, cfg *config.Config) SessionService {
	return &sessionService{
		broker:    broker,
		validator: v,
		cfg:       cfg,
	}
}

// Create validates the request, freezes it into a server-built payload, and
// issues a single-use token pointing at it.
func (s *sessionService) Create(ctx context.Context, req *model.CreateSessionRequest) (*model.CreateSessionResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		var validationErrs validator.ValidationErrors
		if ok := asValidationErrors(err, &validationErrs); ok {
			return nil, apperrors.InvalidInput(validationErrs.Error()).WithDetails(map[string]any{
				"errors": validationErrs,
			})
		}
		return nil, apperrors.InvalidInput(err.Error())
	}

	payload := model.SessionPayload{
		SessionID:      uuid.New().String(),
		Service:        req.Service,
		Travelers:      req.Travelers,
		TotalAmount:    req.TotalAmount,
		BookingDetails: req.BookingDetails,
		IssuedAt:       time.Now().UTC(),
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.Internal("Failed to build session payload", err)
	}

	token, err := s.broker.Issue(raw)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue session token", err)
	}

	s.cfg.Log.Info("Payment session issued",
		"session_id", payload.SessionID,
		"service", payload.Service,
		"travelers", payload.Travelers,
	)

	return &model.CreateSessionResponse{
		Success:     true,
		Token:       token,
		RedirectURL: fmt.Sprintf("%s/payment?token=%s", s.cfg.CheckoutBaseURL, url.QueryEscape(token)),
	}, nil
}

// Validate inspects the token without consuming it, so the payment page can
// be reloaded any number of times before checkout completes.
func (s *sessionService) Validate(ctx context.Context, token string) (*model.SessionPayload, error) {
	if token == "" {
		return nil, apperrors.InvalidInput("token is required")
	}

	raw, err := s.broker.Inspect(token)
	if err != nil {
		s.cfg.Log.Warn("Payment session inspection rejected", "reason", err)
		return nil, apperrors.SessionInvalid(err)
	}

	var payload model.SessionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, apperrors.Internal("Failed to decode session payload", err)
	}

	return &payload, nil
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	ve, ok := err.(validator.ValidationErrors)
	if ok {
		*target = ve
	}
	return ok
}
