package auth

import "sync"

// Session holds the authenticated account for the lifetime of one login. It
// is created once at startup and passed by reference to every consumer;
// there is no package-level session state. Clear empties it at logout and
// the container is reused for the next login.
type Session struct {
	mu     sync.RWMutex
	token  string
	claims Claims
	active bool
}

// NewSession returns an empty, unauthenticated session container.
func NewSession() *Session {
	return &Session{}
}

// Establish parses the access token and stores it together with its claims.
func (s *Session) Establish(token string) error {
	claims, err := ParseClaims(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.claims = claims
	s.active = true
	s.mu.Unlock()
	return nil
}

// Token returns the raw access token, or the empty string when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Claims returns the parsed identity claims and whether a login is active.
func (s *Session) Claims() (Claims, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.claims, s.active
}

// Authenticated reports whether a login is active.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Clear empties the session. Safe to call repeatedly.
func (s *Session) Clear() {
	s.mu.Lock()
	s.token = ""
	s.claims = Claims{}
	s.active = false
	s.mu.Unlock()
}
