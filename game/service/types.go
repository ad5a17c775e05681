package service

import (
	"time"

	"github.com/wricardo/snake-game-server/game/engine"
)

// GameInfo provides information about a game and its current state
type GameInfo struct {
	ID             string          `json:"game_id"`
	ConfigName     string          `json:"config_name"`
	GridSize       int             `json:"grid_size"`
	WinThreshold   int             `json:"win_threshold"`
	CreatedAt      time.Time       `json:"created_at"`
	LastAccessedAt time.Time       `json:"last_accessed_at"`
	State          engine.Snapshot `json:"state"`
}

// MoveRequest is one move command from a client
type MoveRequest struct {
	GameID    string
	Direction string
	// SessionKey is the caller's stored generated_key; empty when none was stored
	SessionKey string
}

// MoveResult is the snapshot after a move, with the key attached on the winning tick
type MoveResult struct {
	engine.Snapshot
	Key string `json:"key,omitempty"`

	Ate  bool `json:"-"`
	Won  bool `json:"-"`
	NoOp bool `json:"-"`
}

// ConfigInfo provides information about a ruleset
type ConfigInfo struct {
	Filename     string `json:"filename"`
	ConfigID     string `json:"config_id"` // The identifier to use when starting a game
	Name         string `json:"name"`      // Display name
	Description  string `json:"description"`
	GridSize     int    `json:"grid_size"`
	WinThreshold int    `json:"win_threshold"`
}
