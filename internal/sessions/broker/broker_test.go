package broker

import (
	"bytes"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	sessionerrors "visadocs/internal/sessions/errors"
)

func newTestBroker(t *testing.T, now *time.Time) *Broker {
	t.Helper()

	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return *now
	}

	b := New(30*time.Minute, time.Hour, nil, WithClock(clock))
	t.Cleanup(b.Stop)
	return b
}

func advance(now *time.Time, d time.Duration) {
	*now = now.Add(d)
}

func TestBroker_IssueAndRedeem(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := newTestBroker(t, &now)

	payload := json.RawMessage(`{"sessionId":"abc","totalAmount":49.99}`)

	token, err := b.Issue(payload)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	got, err := b.Redeem(token)
	if err != nil {
		t.Fatalf("Redeem failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload mismatch: got %s, want %s", got, payload)
	}

	_, err = b.Redeem(token)
	if !errors.Is(err, sessionerrors.ErrSessionUsed) {
		t.Errorf("second redeem: expected ErrSessionUsed, got %v", err)
	}
}

func TestBroker_PayloadFidelity(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := newTestBroker(t, &now)

	// Key order and formatting must survive round-tripping untouched.
	payload := json.RawMessage(`{"z":1,"a":"  spaced  ","nested":{"list":[3,1,2]}}`)
	original := make([]byte, len(payload))
	copy(original, payload)

	token, err := b.Issue(payload)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Mutating the caller's slice must not affect the stored copy.
	payload[0] = 'X'

	got, err := b.Inspect(token)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if !bytes.Equal(got, original) {
		t.Errorf("stored payload mutated: got %s, want %s", got, original)
	}
}

func TestBroker_InspectDoesNotConsume(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := newTestBroker(t, &now)

	token, err := b.Issue(json.RawMessage(`{"ok":true}`))
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := b.Inspect(token); err != nil {
			t.Fatalf("Inspect %d failed: %v", i, err)
		}
	}

	if _, err := b.Redeem(token); err != nil {
		t.Fatalf("Redeem after inspects failed: %v", err)
	}
}

func TestBroker_UnknownToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := newTestBroker(t, &now)

	_, err := b.Inspect("no-such-token")
	if !errors.Is(err, sessionerrors.ErrSessionNotFound) {
		t.Errorf("Inspect: expected ErrSessionNotFound, got %v", err)
	}

	_, err = b.Redeem("no-such-token")
	if !errors.Is(err, sessionerrors.ErrSessionNotFound) {
		t.Errorf("Redeem: expected ErrSessionNotFound, got %v", err)
	}
}

func TestBroker_Expiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := newTestBroker(t, &now)

	token, err := b.Issue(json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	advance(&now, 31*time.Minute)

	_, err = b.Inspect(token)
	if !errors.Is(err, sessionerrors.ErrSessionExpired) {
		t.Errorf("Inspect: expected ErrSessionExpired, got %v", err)
	}

	// Expired entry is evicted on access.
	if b.Len() != 0 {
		t.Errorf("expected expired entry to be evicted, have %d sessions", b.Len())
	}

	_, err = b.Redeem(token)
	if !errors.Is(err, sessionerrors.ErrSessionNotFound) {
		t.Errorf("Redeem after eviction: expected ErrSessionNotFound, got %v", err)
	}
}

func TestBroker_ExpiryBeatsUsed(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := newTestBroker(t, &now)

	token, err := b.Issue(json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := b.Redeem(token); err != nil {
		t.Fatalf("Redeem failed: %v", err)
	}

	advance(&now, 31*time.Minute)

	_, err = b.Redeem(token)
	if !errors.Is(err, sessionerrors.ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired for expired used session, got %v", err)
	}
}

func TestBroker_ConcurrentRedeem(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := newTestBroker(t, &now)

	token, err := b.Issue(json.RawMessage(`{"seat":"12A"}`))
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	const workers = 50
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.Redeem(token)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, sessionerrors.ErrSessionUsed) {
			t.Errorf("unexpected error: %v", err)
		}
	}

	if succeeded != 1 {
		t.Errorf("expected exactly 1 successful redeem, got %d", succeeded)
	}
}

func TestBroker_IssueEvictsExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := newTestBroker(t, &now)

	for i := 0; i < 5; i++ {
		if _, err := b.Issue(json.RawMessage(`{}`)); err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
	}

	advance(&now, time.Hour)

	if _, err := b.Issue(json.RawMessage(`{}`)); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if b.Len() != 1 {
		t.Errorf("expected 1 live session after eviction, got %d", b.Len())
	}
}

func TestBroker_SweepEvictsExpired(t *testing.T) {
	var (
		mu  sync.Mutex
		now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	b := New(30*time.Minute, 10*time.Millisecond, nil, WithClock(clock))
	t.Cleanup(b.Stop)

	for i := 0; i < 3; i++ {
		if _, err := b.Issue(json.RawMessage(`{}`)); err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
	}

	mu.Lock()
	now = now.Add(31 * time.Minute)
	mu.Unlock()

	// No Issue or Inspect after this point: only the background sweep
	// can remove the entries.
	deadline := time.Now().Add(2 * time.Second)
	for b.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("sweep did not evict expired sessions, %d remaining", b.Len())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBroker_StopHaltsSweep(t *testing.T) {
	var (
		mu  sync.Mutex
		now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	b := New(30*time.Minute, 10*time.Millisecond, nil, WithClock(clock))

	b.Stop()
	time.Sleep(50 * time.Millisecond)

	if _, err := b.Issue(json.RawMessage(`{}`)); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	mu.Lock()
	now = now.Add(31 * time.Minute)
	mu.Unlock()

	time.Sleep(100 * time.Millisecond)

	if b.Len() != 1 {
		t.Errorf("expected the stopped broker to keep the expired entry, got %d sessions", b.Len())
	}
}

func TestBroker_TokensAreUnique(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := newTestBroker(t, &now)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := b.Issue(json.RawMessage(`{}`))
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token issued: %s", token)
		}
		seen[token] = true
	}
}
