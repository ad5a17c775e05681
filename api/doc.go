// Package api provides the HTTP interface of the Snake server.
//
// Endpoints:
//
// Session key:
//   - GET /snake?count=N - derive the key for N and store it in the signed session cookie
//
// Game Operations:
//   - POST /snake/start - start a game, optional body {"config_id": "small"}
//   - POST /snake/move - body {"game_id": "...", "direction": "UP"}
//   - GET /snake/games - list games
//   - GET /snake/games/{id} - current snapshot
//   - DELETE /snake/games/{id} - remove a game
//
// Configuration:
//   - GET /snake/configs - list rulesets
//
// Other:
//   - GET /ws?game_id=... - WebSocket stream of state updates and the win event
//   - GET /health - liveness
//
// Snapshots are JSON objects with game_id, snake, direction, apple, score
// and status; coordinates are [row, col] pairs with the head first. The
// move that first reaches the win threshold also carries "key": the value
// stored by GET /snake, or "No key available" when the caller never
// requested one.
//
// Errors are {"error": "...", "code": N}: 400 for a malformed body, 404 for
// an unknown game or ruleset, 405 for a wrong method, 422 for an invalid
// direction or count or a field of the wrong JSON type, 500 otherwise.
// A panicking handler answers a bare 500.
//
// Session Cookie:
//
// The snake_session cookie is an HS256 JWT holding the derived key, signed
// with SESSION_KEY. A missing, expired or forged cookie is treated as no key.
package api
