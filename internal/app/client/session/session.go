// Package session holds the authenticated identity of the running
// client: user id, username, bearer token and the secret key that
// decrypts record fields. The slot is replaced wholesale on
// login/logout; observers see either the old or the new session, never
// a mix of fields.
package session

import "sync"

// UnauthenticatedUserID marks the empty session.
const UnauthenticatedUserID int64 = -1

// Session is the immutable value held by Manager. SecretKey is the only
// material capable of decrypting record fields; it never leaves the
// process.
type Session struct {
	UserID    int64
	Username  string
	Token     string
	SecretKey []byte
}

// Manager owns the single session slot. The epoch counter increments on
// every Set and Clear; in-flight operations capture it before a network
// call and drop their completion if it has moved since.
type Manager struct {
	mu      sync.RWMutex
	current Session
	epoch   uint64
}

// NewManager returns a Manager in the unauthenticated state.
func NewManager() *Manager {
	return &Manager{current: empty()}
}

func empty() Session {
	return Session{UserID: UnauthenticatedUserID}
}

// Set replaces the session atomically.
func (m *Manager) Set(s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s
	m.epoch++
}

// Clear resets the slot to unauthenticated. Callers are expected to wipe
// the record cache in the same logical transaction so decrypted data of
// the previous user does not stay resident.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.current.SecretKey {
		m.current.SecretKey[i] = 0
	}
	m.current = empty()
	m.epoch++
}

// Current returns a copy of the session and whether it is authenticated.
func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, m.current.UserID != UnauthenticatedUserID
}

// Epoch returns the current session epoch.
func (m *Manager) Epoch() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.epoch
}

// Key returns the active secret key, or false when unauthenticated.
func (m *Manager) Key() ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current.UserID == UnauthenticatedUserID || len(m.current.SecretKey) == 0 {
		return nil, false
	}
	return m.current.SecretKey, true
}
