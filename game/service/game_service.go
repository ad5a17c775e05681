package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/snake-game-server/game/engine"
)

// ErrGameNotFound is returned when no game is registered under an identifier
var ErrGameNotFound = errors.New("game not found")

// GameService defines all game-related operations
type GameService interface {
	// Game lifecycle
	StartGame(ctx context.Context, configID string) (*GameInfo, error)
	GetGame(ctx context.Context, gameID string) (*GameInfo, error)
	ListGames(ctx context.Context) ([]*GameInfo, error)
	DeleteGame(ctx context.Context, gameID string) error

	// Game operations
	Move(ctx context.Context, req MoveRequest) (*MoveResult, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
}

// SessionManager is the game registry
type SessionManager interface {
	Create(config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
}

// ConfigManager handles ruleset loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
}

// Session is one registered game. All engine access goes through Do,
// which serializes moves on the same game.
type Session struct {
	ID        string
	Engine    engine.Engine
	Config    *engine.GameConfig
	CreatedAt time.Time

	mu             sync.Mutex
	lastAccessedAt time.Time
}

// NewSession wraps an engine for registration
func NewSession(id string, eng engine.Engine, config *engine.GameConfig) *Session {
	now := time.Now()
	return &Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      now,
		lastAccessedAt: now,
	}
}

// Do runs fn with exclusive access to the engine and marks the session as accessed
func (s *Session) Do(fn func(eng engine.Engine)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccessedAt = time.Now()
	fn(s.Engine)
}

// Snapshot copies the current state under the session lock without touching the access time
func (s *Session) Snapshot() engine.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Engine.Snapshot()
}

// LastAccessedAt returns the time of the last Do call
func (s *Session) LastAccessedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccessedAt
}

// SetLastAccessedAt overrides the access time
func (s *Session) SetLastAccessedAt(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccessedAt = t
}
