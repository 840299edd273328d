package errors

import "errors"

var (
	// ErrSessionNotFound is returned when no payment session exists for a token.
	ErrSessionNotFound = errors.New("payment session not found")

	// ErrSessionUsed is returned when a session has already been redeemed.
	ErrSessionUsed = errors.New("payment session already redeemed")

	// ErrSessionExpired is returned when a session is past its TTL.
	ErrSessionExpired = errors.New("payment session expired")
)
