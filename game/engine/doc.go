// Package engine provides the core game logic for the Snake server.
//
// The engine package implements the game mechanics including:
//   - Direction handling, with instant reversals ignored
//   - Wall and self collision detection
//   - Apple placement by rejection sampling over the grid
//   - Scoring and the ongoing → success → game_over state machine
//   - Ruleset validation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState is the live record of one game,
// Snapshot is a detached copy handed to transports, and GameConfig is a
// named ruleset (grid size, win threshold, start cell and heading).
//
// Usage:
//
//	eng, err := engine.NewEngine(gameID, engine.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	outcome, err := eng.Move("LEFT")
//	if errors.Is(err, engine.ErrInvalidDirection) {
//		// reject the request
//	}
//
// Game Rules:
//
// The snake starts as a single cell heading up. Each accepted move adds a
// new head; the tail is dropped unless the apple was eaten, in which case
// the snake grows, the score goes up by one and a new apple is placed.
// Leaving the board or running into the body ends the game and freezes
// the state. Reaching the win threshold flips the status to success once;
// play continues until a collision.
package engine
