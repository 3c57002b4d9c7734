package gateway

import "sync"

// TokenHolder supplies the bearer token attached to authenticated requests.
// An empty token means no Authorization header is sent.
type TokenHolder interface {
	Token() string
}

// StaticToken is a fixed token, handy for scripts and tests
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// MemoryToken holds a token in memory; set it after login, clear it on logout
type MemoryToken struct {
	mu    sync.RWMutex
	token string
}

func (t *MemoryToken) Token() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.token
}

func (t *MemoryToken) Set(token string) {
	t.mu.Lock()
	t.token = token
	t.mu.Unlock()
}

func (t *MemoryToken) Clear() {
	t.Set("")
}
