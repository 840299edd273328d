package broker

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"sync"
	"time"

	sessionerrors "visadocs/internal/sessions/errors"
	"visadocs/pkg/logger"
)

const tokenBytes = 32

type entry struct {
	payload   json.RawMessage
	expiresAt time.Time
	used      bool
}

// Broker issues single-use payment session tokens and holds the booking
// payload server-side until the token is redeemed or expires.
type Broker struct {
	mu         sync.Mutex
	sessions   map[string]*entry
	ttl        time.Duration
	sweepEvery time.Duration
	now        func() time.Time
	stopCh     chan struct{}
	log        *logger.Logger
}

type Option func(*Broker)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(b *Broker) {
		b.now = now
	}
}

func New(ttl, sweepEvery time.Duration, log *logger.Logger, opts ...Option) *Broker {
	b := &Broker{
		sessions:   make(map[string]*entry),
		ttl:        ttl,
		sweepEvery: sweepEvery,
		now:        time.Now,
		stopCh:     make(chan struct{}),
		log:        log,
	}

	for _, opt := range opts {
		opt(b)
	}

	go b.sweep()

	return b
}

// Issue stores a copy of the payload under a fresh token and returns the token.
// The stored bytes are returned verbatim on Inspect and Redeem.
func (b *Broker) Issue(payload json.RawMessage) (string, error) {
	stored := make(json.RawMessage, len(payload))
	copy(stored, payload)

	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	for token, e := range b.sessions {
		if now.After(e.expiresAt) {
			delete(b.sessions, token)
		}
	}

	for {
		token, err := generateToken()
		if err != nil {
			return "", err
		}
		if _, exists := b.sessions[token]; exists {
			continue
		}

		b.sessions[token] = &entry{
			payload:   stored,
			expiresAt: now.Add(b.ttl),
		}
		return token, nil
	}
}

// Inspect returns the payload without consuming the session.
func (b *Broker) Inspect(token string) (json.RawMessage, error) {
	return b.lookup(token, false)
}

// Redeem returns the payload and marks the session as used. Exactly one
// caller succeeds per token.
func (b *Broker) Redeem(token string) (json.RawMessage, error) {
	return b.lookup(token, true)
}

func (b *Broker) lookup(token string, consume bool) (json.RawMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, exists := b.sessions[token]
	if !exists {
		return nil, sessionerrors.ErrSessionNotFound
	}

	if b.now().After(e.expiresAt) {
		delete(b.sessions, token)
		return nil, sessionerrors.ErrSessionExpired
	}

	if e.used {
		return nil, sessionerrors.ErrSessionUsed
	}

	if consume {
		e.used = true
	}

	return e.payload, nil
}

func (b *Broker) sweep() {
	ticker := time.NewTicker(b.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.mu.Lock()
			now := b.now()
			removed := 0
			for token, e := range b.sessions {
				if now.After(e.expiresAt) {
					delete(b.sessions, token)
					removed++
				}
			}
			remaining := len(b.sessions)
			b.mu.Unlock()

			if removed > 0 && b.log != nil {
				b.log.Debug("Swept expired payment sessions", "removed", removed, "remaining", remaining)
			}
		case <-b.stopCh:
			return
		}
	}
}

// Stop terminates the sweep goroutine.
func (b *Broker) Stop() {
	close(b.stopCh)
}

// Len reports the number of stored sessions, including used and expired
// entries not yet swept.
func (b *Broker) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
