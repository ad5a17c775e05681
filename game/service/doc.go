// Package service provides the business logic layer for the Snake server.
//
// The service package implements:
//   - Game creation against a named or default ruleset
//   - Move resolution with per-game serialization
//   - Win-key disclosure on the tick that crosses the threshold
//   - Game lookup, listing and removal
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager is the game registry (id → Session).
// ConfigManager loads rulesets.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Every Session owns a mutex; Move holds it for the whole
// tick, so two requests against the same game never interleave while moves on
// different games proceed independently.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.StartGame(ctx, "")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, service.MoveRequest{
//		GameID:     info.ID,
//		Direction:  "LEFT",
//		SessionKey: key,
//	})
//
// Errors:
//
// Unknown games wrap ErrGameNotFound, bad directions wrap
// engine.ErrInvalidDirection. A move against a finished game is not an
// error: it returns the frozen snapshot.
package service
