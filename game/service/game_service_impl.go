package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/wricardo/snake-game-server/game/engine"
)

// ErrConfigUnavailable is returned when a requested ruleset cannot be loaded
var ErrConfigUnavailable = errors.New("config unavailable")

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// StartGame registers a new game using the named ruleset, or the default one
func (s *gameServiceImpl) StartGame(ctx context.Context, configID string) (*GameInfo, error) {
	var config *engine.GameConfig
	if configID != "" {
		loaded, err := s.configs.LoadConfig(configID)
		if err != nil {
			return nil, s.configError(configID, err)
		}
		config = loaded
	} else {
		config = s.configs.GetDefault()
	}

	sess, err := s.sessions.Create(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	return s.info(sess), nil
}

// configError lists the available rulesets so the client can correct the request
func (s *gameServiceImpl) configError(configID string, err error) error {
	available, listErr := s.configs.ListConfigs()
	if listErr != nil || len(available) == 0 {
		return fmt.Errorf("%w: %s: %v", ErrConfigUnavailable, configID, err)
	}
	ids := make([]string, 0, len(available))
	for _, cfg := range available {
		ids = append(ids, cfg.ConfigID)
	}
	return fmt.Errorf("%w: '%s' (available: %v): %v", ErrConfigUnavailable, configID, ids, err)
}

// GetGame returns the game's current snapshot
func (s *gameServiceImpl) GetGame(ctx context.Context, gameID string) (*GameInfo, error) {
	sess, err := s.sessions.Get(gameID)
	if err != nil {
		return nil, err
	}
	return s.info(sess), nil
}

// ListGames returns all registered games
func (s *gameServiceImpl) ListGames(ctx context.Context) ([]*GameInfo, error) {
	sessions := s.sessions.List()
	result := make([]*GameInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.info(sess))
	}
	return result, nil
}

// DeleteGame removes a game from the registry
func (s *gameServiceImpl) DeleteGame(ctx context.Context, gameID string) error {
	return s.sessions.Delete(gameID)
}

// Move applies one move under the game's lock
func (s *gameServiceImpl) Move(ctx context.Context, req MoveRequest) (*MoveResult, error) {
	sess, err := s.sessions.Get(req.GameID)
	if err != nil {
		return nil, err
	}

	var (
		outcome engine.MoveOutcome
		moveErr error
	)
	sess.Do(func(eng engine.Engine) {
		outcome, moveErr = eng.Move(req.Direction)
	})
	if moveErr != nil {
		return nil, moveErr
	}

	result := &MoveResult{
		Snapshot: outcome.Snapshot,
		Ate:      outcome.Ate,
		Won:      outcome.Won,
		NoOp:     outcome.NoOp,
	}
	if outcome.Won {
		result.Key = req.SessionKey
		if result.Key == "" {
			result.Key = engine.NoKeyAvailable
		}
	}
	return result, nil
}

// ListConfigs returns the available rulesets
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

func (s *gameServiceImpl) info(sess *Session) *GameInfo {
	return &GameInfo{
		ID:             sess.ID,
		ConfigName:     sess.Config.Name,
		GridSize:       sess.Config.GridSize,
		WinThreshold:   sess.Config.WinThreshold,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt(),
		State:          sess.Snapshot(),
	}
}
