package admin

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"
)

// Session is an ephemeral admin login. Sessions live only in process
// memory: a restart invalidates every outstanding cookie.
type Session struct {
	Username  string
	CreatedAt time.Time
}

type Sessions struct {
	mu sync.RWMutex
	m  map[string]Session
}

func NewSessions() *Sessions {
	return &Sessions{m: make(map[string]Session)}
}

// Create mints an opaque token bound to username.
func (s *Sessions) Create(username string) string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	token := base64.RawURLEncoding.EncodeToString(buf)

	s.mu.Lock()
	s.m[token] = Session{Username: username, CreatedAt: time.Now()}
	s.mu.Unlock()

	return token
}

func (s *Sessions) Lookup(token string) (string, bool) {
	s.mu.RLock()
	sess, ok := s.m[token]
	s.mu.RUnlock()
	return sess.Username, ok
}

func (s *Sessions) Delete(token string) {
	s.mu.Lock()
	delete(s.m, token)
	s.mu.Unlock()
}
