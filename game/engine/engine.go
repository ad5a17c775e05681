package engine

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	GetState() *GameState
	Snapshot() Snapshot
	Move(direction string) (MoveOutcome, error)
	IsGameOver() bool
	GetConfig() *GameConfig
}

var _ Engine = (*GameEngine)(nil)

// GameEngine implements Engine for a single game. It is not safe for
// concurrent use; callers serialize access per game.
type GameEngine struct {
	state  *GameState
	config *GameConfig
	rng    *rand.Rand
}

// NewEngine creates a game with a single-cell snake at the ruleset's start and a fresh apple
func NewEngine(gameID string, config *GameConfig) (*GameEngine, error) {
	seed := uint64(time.Now().UnixNano())
	return NewEngineWithRand(gameID, config, rand.New(rand.NewPCG(seed, seed>>1|1)))
}

// NewEngineWithRand is NewEngine with an explicit random source
func NewEngineWithRand(gameID string, config *GameConfig, rng *rand.Rand) (*GameEngine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	snake := []Coord{config.Start}
	apple, ok := PlaceApple(rng, snake, config.GridSize)
	if !ok {
		return nil, fmt.Errorf("%w: no room for an apple", ErrInvalidConfig)
	}

	return &GameEngine{
		config: config,
		rng:    rng,
		state: &GameState{
			GameID:    gameID,
			Snake:     snake,
			Direction: config.StartDirection,
			Apple:     apple,
			Score:     0,
			Status:    StatusOngoing,
		},
	}, nil
}

// GetState returns the live state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// Snapshot returns a detached copy of the state
func (e *GameEngine) Snapshot() Snapshot {
	return e.state.Snapshot()
}

// IsGameOver reports whether the state is frozen
func (e *GameEngine) IsGameOver() bool {
	return e.state.Status == StatusGameOver
}

// GetConfig returns the ruleset the game was created with
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// Move advances the game by one tick. The next body, apple and score are
// computed on copies and committed together, so an error leaves the state as it was.
func (e *GameEngine) Move(direction string) (MoveOutcome, error) {
	s := e.state

	if s.Status == StatusGameOver {
		return MoveOutcome{Snapshot: s.Snapshot(), NoOp: true}, nil
	}

	requested, err := ParseDirection(direction)
	if err != nil {
		return MoveOutcome{}, err
	}

	dir := ResolveDirection(s.Direction, requested)
	head := ComputeNewHead(s.Head(), dir)

	if DetectCollision(head, s.Snake, e.config.GridSize) {
		s.Direction = dir
		s.Status = StatusGameOver
		return MoveOutcome{Snapshot: s.Snapshot(), Collided: true}, nil
	}

	ate := head == s.Apple
	next := make([]Coord, 0, len(s.Snake)+1)
	next = append(next, head)
	if ate {
		next = append(next, s.Snake...)
	} else {
		next = append(next, s.Snake[:len(s.Snake)-1]...)
	}

	apple, score, status := s.Apple, s.Score, s.Status
	if ate {
		score++
		var free bool
		apple, free = PlaceApple(e.rng, next, e.config.GridSize)
		if !free {
			// Board is full: every further move collides, so freeze here.
			apple = NoApple
			status = StatusGameOver
		}
	}

	won := false
	if status != StatusGameOver && score >= e.config.WinThreshold && status != StatusSuccess {
		status = StatusSuccess
		won = true
	}

	s.Direction = dir
	s.Snake = next
	s.Apple = apple
	s.Score = score
	s.Status = status

	return MoveOutcome{
		Snapshot: s.Snapshot(),
		Ate:      ate,
		Won:      won,
		Collided: status == StatusGameOver,
	}, nil
}
