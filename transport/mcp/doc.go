// Package mcp exposes the arcade to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool calls the REST API and renders the
// JSON reply as text an agent can read, including a drawn board for each
// game (tetris well, puzzle grid, memory table, snake and bird summaries).
//
// MCP Tools:
//
//   - game_instructions, list_games: rules and action vocabulary
//   - create_session, get_session, list_sessions: session management
//   - ready_game, start_game: lobby to ready to playing
//   - lobby_game: back to the lobby
//   - act, bulk_act: send input tokens (both require an intent)
//   - game_state: render the current board
//   - list_configs: tuning in effect per game
//   - leaderboard, player_stats: recorded results
//
// Transport Modes:
//
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: mount client.Handler() at /mcp; each POST body is one JSON-RPC
//     message and the reply is written back as JSON
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	router.Handle("/mcp", client.Handler())
package mcp
