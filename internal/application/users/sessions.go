package users

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type session struct {
	ownerID   int64
	expiresAt time.Time
}

// SessionStore keeps opaque bearer tokens in memory with a TTL. Expired
// entries are dropped lazily on lookup and swept on a timer.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]session
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	s := &SessionStore{
		ttl:      ttl,
		sessions: make(map[string]session),
	}
	go s.sweep()
	return s
}

// Issue creates a fresh token for the owner.
func (s *SessionStore) Issue(ownerID int64) string {
	token := uuid.New().String()
	s.mu.Lock()
	s.sessions[token] = session{ownerID: ownerID, expiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()
	return token
}

// Resolve maps a token back to its owner id. Expired or unknown tokens
// resolve to false.
func (s *SessionStore) Resolve(token string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return 0, false
	}
	if time.Now().After(sess.expiresAt) {
		delete(s.sessions, token)
		return 0, false
	}
	return sess.ownerID, true
}

// Revoke drops a token, ending the session.
func (s *SessionStore) Revoke(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

func (s *SessionStore) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		s.mu.Lock()
		for token, sess := range s.sessions {
			if now.After(sess.expiresAt) {
				delete(s.sessions, token)
			}
		}
		s.mu.Unlock()
	}
}
