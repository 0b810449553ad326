package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// SessionExpiry is how long a portal token stays valid
	SessionExpiry = 12 * time.Hour
	// MaxSessions caps live portal tokens; the oldest is evicted past it
	MaxSessions = 10000
)

type portalSession struct {
	participant string
	expiry      time.Time
}

// SessionStore maps opaque portal tokens to participant names. Several
// tokens may resolve to the same participant.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]portalSession
	newToken func() string
	now      func() time.Time
	limit    int
}

// NewSessionStore creates an empty session store
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]portalSession),
		newToken: uuid.NewString,
		now:      time.Now,
		limit:    MaxSessions,
	}
}

// Create issues a new token for participant. Expired tokens are purged
// first, and the oldest token is evicted when the store is full.
func (s *SessionStore) Create(participant string) string {
	token := s.newToken()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked()
	if len(s.sessions) >= s.limit {
		s.evictOldestLocked()
	}
	s.sessions[token] = portalSession{participant: participant, expiry: s.now().Add(SessionExpiry)}
	return token
}

// Lookup returns the participant for token
func (s *SessionStore) Lookup(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	if _, err := uuid.Parse(token); err != nil {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	if !ok || s.now().After(sess.expiry) {
		return "", false
	}
	return sess.participant, true
}

// Delete forgets token
func (s *SessionStore) Delete(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Count returns the number of stored tokens
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) purgeExpiredLocked() {
	now := s.now()
	for token, sess := range s.sessions {
		if now.After(sess.expiry) {
			delete(s.sessions, token)
		}
	}
}

func (s *SessionStore) evictOldestLocked() {
	var oldest string
	var oldestExpiry time.Time
	for token, sess := range s.sessions {
		if oldest == "" || sess.expiry.Before(oldestExpiry) {
			oldest, oldestExpiry = token, sess.expiry
		}
	}
	delete(s.sessions, oldest)
}
