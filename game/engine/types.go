package engine

import (
	"encoding/json"
	"fmt"
)

// Direction is the snake's heading
type Direction string

const (
	Up    Direction = "UP"
	Down  Direction = "DOWN"
	Left  Direction = "LEFT"
	Right Direction = "RIGHT"
)

// Status is the game's position in the ongoing → success → game_over machine
type Status string

const (
	StatusOngoing  Status = "ongoing"
	StatusSuccess  Status = "success"
	StatusGameOver Status = "game_over"
)

const (
	// Validation constants
	MinGridSize     = 5
	MaxGridSize     = 100
	MinWinThreshold = 1

	DefaultGridSize     = 20
	DefaultWinThreshold = 10

	// NoKeyAvailable is disclosed when the session never stored a key
	NoKeyAvailable = "No key available"
)

// Coord is a (row, col) grid cell. It encodes as a two element JSON array.
type Coord struct {
	Row int
	Col int
}

// MarshalJSON encodes the coordinate as [row, col]
func (c Coord) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{c.Row, c.Col})
}

// UnmarshalJSON decodes a [row, col] pair
func (c *Coord) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("coord: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("coord: expected [row, col], got %d values", len(pair))
	}
	c.Row, c.Col = pair[0], pair[1]
	return nil
}

// NoApple is reported once the body covers the whole board. It lies off
// the grid, so it never overlaps the snake.
var NoApple = Coord{Row: -1, Col: -1}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// GameState is the live state of a single game
type GameState struct {
	GameID    string    `json:"game_id"`
	Snake     []Coord   `json:"snake"` // head first
	Direction Direction `json:"direction"`
	Apple     Coord     `json:"apple"`
	Score     int       `json:"score"`
	Status    Status    `json:"status"`
}

// Snapshot is a detached copy of a GameState, safe to hand to other goroutines
type Snapshot struct {
	GameID    string    `json:"game_id"`
	Snake     []Coord   `json:"snake"`
	Direction Direction `json:"direction"`
	Apple     Coord     `json:"apple"`
	Score     int       `json:"score"`
	Status    Status    `json:"status"`
}

// Head returns the first body cell
func (s *GameState) Head() Coord {
	return s.Snake[0]
}

// Snapshot copies the state, including the snake body
func (s *GameState) Snapshot() Snapshot {
	body := make([]Coord, len(s.Snake))
	copy(body, s.Snake)
	return Snapshot{
		GameID:    s.GameID,
		Snake:     body,
		Direction: s.Direction,
		Apple:     s.Apple,
		Score:     s.Score,
		Status:    s.Status,
	}
}

// MoveOutcome describes the result of one applied move
type MoveOutcome struct {
	Snapshot Snapshot
	Ate      bool // apple consumed on this tick
	Won      bool // win threshold crossed on this tick
	Collided bool // this tick ended the game
	NoOp     bool // game was already over, nothing changed
}
