// Package mcp exposes the Snake game to AI agents over the Model Context Protocol.
//
// Tools:
//   - snake_start: start a game, optional config_id
//   - snake_move: advance one cell; optional count binds the disclosure key
//   - snake_state: render the board of a game
//   - snake_list_games: list running games
//   - snake_list_configs: list rulesets
//
// Tools call the game service directly, so moves made over MCP are
// serialized with moves made over HTTP on the same game.
//
// Transport Modes:
//   - Stdio: server.ServeStdio(s.GetMCPServer())
//   - HTTP: mount s as the handler of POST /mcp
//
// MCP clients carry no cookies. The key that HTTP clients store with
// GET /snake?count=N is instead derived from the count argument of
// snake_move; without it the winning move reports "No key available".
package mcp
