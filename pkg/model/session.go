package model

import (
	"encoding/json"
	"time"
)

// CreateSessionRequest is posted by the booking form once the price has been
// computed. Field names follow the public checkout API, not the storage schema.
type CreateSessionRequest struct {
	Service        string          `json:"service" validate:"required,oneof=flight-reservation hotel-booking travel-insurance"`
	Travelers      int             `json:"travelers" validate:"required,min=1,max=20"`
	TotalAmount    float64         `json:"totalAmount" validate:"min=0"`
	BookingDetails json.RawMessage `json:"bookingDetails" validate:"required"`
}

// SessionPayload is what the broker holds for one checkout session. It is
// built server-side at issuance and is the only authority on the order total;
// nothing the client sends later can change it. BookingDetails stays raw so
// the broker layer never needs to know booking-domain shapes.
type SessionPayload struct {
	SessionID      string          `json:"sessionId"`
	Service        string          `json:"service"`
	Travelers      int             `json:"travelers"`
	TotalAmount    float64         `json:"totalAmount"`
	BookingDetails json.RawMessage `json:"bookingDetails"`
	IssuedAt       time.Time       `json:"issuedAt"`
}

type CreateSessionResponse struct {
	Success     bool   `json:"success"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirectUrl"`
}

type ValidateSessionRequest struct {
	Token string `json:"token" validate:"required"`
}

type ValidateSessionResponse struct {
	Valid bool            `json:"valid"`
	Data  *SessionPayload `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}
