package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig wraps every ruleset validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// GameConfig is a named ruleset
type GameConfig struct {
	Name           string    `json:"name" yaml:"name"`
	Description    string    `json:"description" yaml:"description"`
	GridSize       int       `json:"grid_size" yaml:"grid_size"`
	WinThreshold   int       `json:"win_threshold" yaml:"win_threshold"`
	Start          Coord     `json:"start" yaml:"-"`
	StartRow       int       `json:"-" yaml:"start_row"`
	StartCol       int       `json:"-" yaml:"start_col"`
	StartDirection Direction `json:"start_direction" yaml:"start_direction"`
}

// DefaultConfig is the classic 20×20 board, win at 10 apples, starting at (5,5) heading up
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:           "classic",
		Description:    "20x20 board, key disclosed at 10 apples",
		GridSize:       DefaultGridSize,
		WinThreshold:   DefaultWinThreshold,
		Start:          Coord{Row: 5, Col: 5},
		StartRow:       5,
		StartCol:       5,
		StartDirection: Up,
	}
}

// Normalize fills the start cell from the YAML row/col fields and defaults an empty heading
func (c *GameConfig) Normalize() {
	if c.Start == (Coord{}) && (c.StartRow != 0 || c.StartCol != 0) {
		c.Start = Coord{Row: c.StartRow, Col: c.StartCol}
	}
	c.StartRow, c.StartCol = c.Start.Row, c.Start.Col
	if c.StartDirection == "" {
		c.StartDirection = Up
	}
}

// ValidateGameConfig checks a ruleset for playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	if config.GridSize < MinGridSize || config.GridSize > MaxGridSize {
		return fmt.Errorf("%w: grid_size must be between %d and %d, got %d",
			ErrInvalidConfig, MinGridSize, MaxGridSize, config.GridSize)
	}
	// The snake needs room for the winning length plus at least one free cell for the apple
	maxThreshold := config.GridSize*config.GridSize - 2
	if config.WinThreshold < MinWinThreshold || config.WinThreshold > maxThreshold {
		return fmt.Errorf("%w: win_threshold must be between %d and %d, got %d",
			ErrInvalidConfig, MinWinThreshold, maxThreshold, config.WinThreshold)
	}
	if !InBounds(config.Start, config.GridSize) {
		return fmt.Errorf("%w: start %s is outside the %dx%d grid",
			ErrInvalidConfig, config.Start, config.GridSize, config.GridSize)
	}
	if _, err := ParseDirection(string(config.StartDirection)); err != nil {
		return fmt.Errorf("%w: start_direction: %v", ErrInvalidConfig, err)
	}
	return nil
}
