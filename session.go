package main

import (
	"sync"
)

// SessionStore holds the authentication cookie captured by a successful
// login. Single writer (login), single reader (post_tweet). The cookie
// lives in process memory only and must never be logged or persisted.
type SessionStore struct {
	mu     sync.RWMutex
	cookie string
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// Set stores the login cookie, replacing any previous one.
func (s *SessionStore) Set(cookie string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookie = cookie
}

// Get returns the stored cookie, or the empty string when no login happened.
func (s *SessionStore) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cookie
}

// Active reports whether a login cookie is available.
func (s *SessionStore) Active() bool {
	return s.Get() != ""
}
