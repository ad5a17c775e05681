// Package websocket pushes live game updates to browser and tool clients.
//
// Clients connect to /ws?game_id=<id> and receive a JSON frame after every
// move on that game, plus a "win" event on the tick that crosses the
// win threshold:
//
//	{"game_id": "...", "event": "state_update", "state": {...snapshot...}}
//
// A single Hub goroutine owns the client set. Request handlers hand
// updates to it through a buffered channel, so a move never waits on a
// slow socket; clients whose send buffer is full are disconnected.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	hub.PublishMove(snapshot, won)
package websocket
