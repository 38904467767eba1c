package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FreePeak/openapi-mcp-server/internal/domain"
	"github.com/FreePeak/openapi-mcp-server/internal/domain/shared"
	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/logging"
)

// DefaultSessionTimeout is the inactivity period after which a session expires.
const DefaultSessionTimeout = time.Hour

// SessionManager owns the live sessions. Expiry is checked lazily on lookup.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	timeout   time.Duration
	maxQueued int
	now       func() time.Time
	logger    *logging.Logger
}

// SessionManagerOption configures a SessionManager.
type SessionManagerOption func(*SessionManager)

// WithSessionTimeout sets the inactivity timeout.
func WithSessionTimeout(timeout time.Duration) SessionManagerOption {
	return func(m *SessionManager) {
		if timeout > 0 {
			m.timeout = timeout
		}
	}
}

// WithMaxQueuedMessages bounds each session queue; 0 leaves it unbounded.
func WithMaxQueuedMessages(n int) SessionManagerOption {
	return func(m *SessionManager) {
		if n >= 0 {
			m.maxQueued = n
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) SessionManagerOption {
	return func(m *SessionManager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithSessionLogger sets the logger used for lifecycle events.
func WithSessionLogger(logger *logging.Logger) SessionManagerOption {
	return func(m *SessionManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewSessionManager creates an empty session manager.
func NewSessionManager(opts ...SessionManagerOption) *SessionManager {
	m := &SessionManager{
		sessions: make(map[string]*Session),
		timeout:  DefaultSessionTimeout,
		now:      time.Now,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Timeout returns the configured inactivity timeout.
func (m *SessionManager) Timeout() time.Duration {
	return m.timeout
}

// Create stores and returns a new uninitialized session with a random id.
func (m *SessionManager) Create() *Session {
	session := newSession(uuid.New().String(), m.now(), m.maxQueued)

	m.mu.Lock()
	m.sessions[session.id] = session
	m.mu.Unlock()

	m.logger.Debug("Session created", logging.Fields{"session_id": session.id})
	return session
}

// Get returns the live session with the given id and refreshes its activity
// time. An expired session is removed and reported as not found.
func (m *SessionManager) Get(id string) (*Session, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, domain.NewSessionNotFoundError(id)
	}
	if session.expired(now, m.timeout) {
		delete(m.sessions, id)
		m.logger.Debug("Session expired", logging.Fields{"session_id": id})
		return nil, domain.NewSessionNotFoundError(id)
	}

	session.touch(now)
	return session, nil
}

// Peek is Get without refreshing the activity time. Server-side producers use
// it so that pushing a message does not keep an idle session alive.
func (m *SessionManager) Peek(id string) (*Session, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok || session.expired(now, m.timeout) {
		if ok {
			delete(m.sessions, id)
		}
		return nil, domain.NewSessionNotFoundError(id)
	}
	return session, nil
}

// GetOrCreateDefault returns the reserved default session, creating it when
// it is missing or expired.
func (m *SessionManager) GetOrCreateDefault() *Session {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if session, ok := m.sessions[shared.DefaultSessionID]; ok && !session.expired(now, m.timeout) {
		session.touch(now)
		return session
	}

	session := newSession(shared.DefaultSessionID, now, m.maxQueued)
	m.sessions[shared.DefaultSessionID] = session
	m.logger.Debug("Default session created")
	return session
}

// Delete removes a session and reports whether it existed.
func (m *SessionManager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	m.logger.Debug("Session deleted", logging.Fields{"session_id": id})
	return true
}

// CleanupExpired removes every expired session and returns how many were removed.
func (m *SessionManager) CleanupExpired() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, session := range m.sessions {
		if session.expired(now, m.timeout) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("Expired sessions removed", logging.Fields{"count": removed})
	}
	return removed
}

// Count returns the number of stored sessions, expired ones included until
// they are looked up or swept.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sessions returns a snapshot of the live sessions.
func (m *SessionManager) Sessions() []*Session {
	now := m.now()

	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]*Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		if !session.expired(now, m.timeout) {
			sessions = append(sessions, session)
		}
	}
	return sessions
}
