package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSessionStore_CreateLookup(t *testing.T) {
	store := NewSessionStore()

	token := store.Create("Zoe")
	if _, err := uuid.Parse(token); err != nil {
		t.Fatalf("expected uuid token, got %q", token)
	}

	got, ok := store.Lookup(token)
	if !ok || got != "Zoe" {
		t.Errorf("expected Zoe, got %q (ok=%v)", got, ok)
	}
}

func TestSessionStore_SameParticipantManyTokens(t *testing.T) {
	store := NewSessionStore()

	a := store.Create("Zoe")
	b := store.Create("Zoe")
	if a == b {
		t.Fatal("expected distinct tokens")
	}
	if store.Count() != 2 {
		t.Errorf("expected 2 sessions, got %d", store.Count())
	}
}

func TestSessionStore_LookupRejectsUnknown(t *testing.T) {
	store := NewSessionStore()

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not a uuid", "hello"},
		{"unknown uuid", uuid.NewString()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := store.Lookup(tt.token); ok {
				t.Errorf("expected lookup of %q to fail", tt.token)
			}
		})
	}
}

func TestSessionStore_Delete(t *testing.T) {
	store := NewSessionStore()
	token := store.Create("Zoe")

	store.Delete(token)

	if _, ok := store.Lookup(token); ok {
		t.Error("expected token to be gone")
	}
}

func TestSessionStore_Concurrent(t *testing.T) {
	store := NewSessionStore()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token := store.Create("Zoe")
			store.Lookup(token)
		}()
	}
	wg.Wait()

	if store.Count() != 50 {
		t.Errorf("expected 50 sessions, got %d", store.Count())
	}
}

func TestSessionStore_ExpiredTokenRejected(t *testing.T) {
	store := NewSessionStore()
	start := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return start }

	token := store.Create("Zoe")

	store.now = func() time.Time { return start.Add(SessionExpiry + time.Minute) }
	if _, ok := store.Lookup(token); ok {
		t.Error("expected expired token to be rejected")
	}
}

func TestSessionStore_CreatePurgesExpiredSessions(t *testing.T) {
	store := NewSessionStore()
	start := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return start }

	for i := 0; i < 100; i++ {
		store.Create("Zoe")
	}

	store.now = func() time.Time { return start.Add(SessionExpiry + time.Minute) }
	fresh := store.Create("Zoe")

	if store.Count() != 1 {
		t.Errorf("expected expired sessions to be purged, have %d sessions", store.Count())
	}
	if got, ok := store.Lookup(fresh); !ok || got != "Zoe" {
		t.Error("expected fresh session to be valid")
	}
}

func TestSessionStore_CapEvictsOldest(t *testing.T) {
	store := NewSessionStore()
	store.limit = 5
	start := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

	var tokens []string
	for i := 0; i < 20; i++ {
		at := start.Add(time.Duration(i) * time.Second)
		store.now = func() time.Time { return at }
		tokens = append(tokens, store.Create(fmt.Sprintf("student-%02d", i)))
	}

	if store.Count() != 5 {
		t.Fatalf("expected store to stay at its cap of 5, have %d", store.Count())
	}
	if _, ok := store.Lookup(tokens[0]); ok {
		t.Error("expected the oldest token to be evicted")
	}
	if got, ok := store.Lookup(tokens[19]); !ok || got != "student-19" {
		t.Error("expected the newest token to survive")
	}
}
