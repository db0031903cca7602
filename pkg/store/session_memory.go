package store

import "sync"

// MemorySessionStore keeps sessions in-process. Used by tests and local
// development without Redis. Tokens never expire.
type MemorySessionStore struct {
	mu     sync.RWMutex
	tokens map[string]string // token -> user ID
}

// NewMemorySessionStore initializes an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{tokens: make(map[string]string)}
}

// NewSession issues an opaque token for the user.
func (m *MemorySessionStore) NewSession(userID string) (string, error) {
	token := newToken()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = userID
	return token, nil
}

// GetUserIDByToken resolves a token.
func (m *MemorySessionStore) GetUserIDByToken(token string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	userID, ok := m.tokens[token]
	return userID, ok, nil
}

// DeleteSession drops a token.
func (m *MemorySessionStore) DeleteSession(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
	return nil
}
