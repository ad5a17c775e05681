package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/snake-game-server/game/engine"
	"github.com/wricardo/snake-game-server/game/service"
)

// ErrSessionNotFound matches service.ErrGameNotFound under errors.Is
var ErrSessionNotFound = fmt.Errorf("session: %w", service.ErrGameNotFound)

// Manager is the in-memory game registry
type Manager struct {
	sessions map[string]*service.Session
	mu       sync.RWMutex
}

// NewManager creates a new session manager
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
	}
}

// Create starts a game under a fresh UUID and registers it
func (m *Manager) Create(config *engine.GameConfig) (*service.Session, error) {
	id := uuid.NewString()

	// Engine construction validates the ruleset and places the first apple
	// before the game becomes visible to Get.
	eng, err := engine.NewEngine(id, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	session := service.NewSession(id, eng, eng.GetConfig())

	m.mu.Lock()
	m.sessions[id] = session
	m.mu.Unlock()

	return session, nil
}

// Get retrieves a session by ID
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	session, exists := m.sessions[id]
	m.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return session, nil
}

// Exists reports whether a session is registered
func (m *Manager) Exists(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.sessions[id]
	return exists
}

// List returns all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}

	return result
}

// Delete removes a session
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[id]; !exists {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(m.sessions, id)
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the given duration
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, session := range m.sessions {
		if session.LastAccessedAt().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}

	return removed
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
