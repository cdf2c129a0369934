package auth

import (
	"sync"
	"time"
)

const sessionTTL = 12 * time.Hour

// Sessions tracks logged-in session tokens in memory.
type Sessions struct {
	mu     sync.Mutex
	tokens map[string]time.Time // token -> expiry
}

func NewSessions() *Sessions {
	return &Sessions{tokens: make(map[string]time.Time)}
}

// Create registers and returns a new session token.
func (s *Sessions) Create() string {
	token := newToken()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = time.Now().Add(sessionTTL)
	return token
}

// Valid reports whether token is a live session, pruning it when expired.
func (s *Sessions) Valid(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.tokens[token]
	if !ok {
		return false
	}
	if time.Now().After(expiry) {
		delete(s.tokens, token)
		return false
	}
	return true
}

// Revoke forgets a token.
func (s *Sessions) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}
