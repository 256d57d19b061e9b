// Package api provides HTTP REST API handlers for the arcade.
//
// The api package implements:
//   - Game catalog and configuration endpoints
//   - Session lifecycle endpoints
//   - Leaderboard and player statistics
//   - WebSocket upgrade handling
//   - An optional MCP JSON-RPC mount
//
// Endpoints:
//
// Catalog:
//   - GET /api/games - Games with their action vocabulary
//   - GET /api/configs - Tuning in effect for every game
//   - GET /api/configs/{game} - Tuning for one game
//
// Sessions:
//   - POST /api/sessions - Create a session: {"game": "snake", "player_id": "alice"}
//   - GET /api/sessions - List sessions (?game=, ?limit=)
//   - GET /api/sessions/{id} - Session details with a state snapshot
//   - DELETE /api/sessions/{id} - Stop and remove a session
//
// Play:
//   - POST /api/sessions/{id}/lobby - Back to the lobby, abandoning any round
//   - POST /api/sessions/{id}/ready - Reset, loading the stored high score
//   - POST /api/sessions/{id}/start - Start the clock (409 unless ready)
//   - POST /api/sessions/{id}/action - Apply a raw input: {"action": "ArrowUp"}
//   - GET /api/sessions/{id}/state - State snapshot
//
// Stats:
//   - GET /api/leaderboard/{game} - Top players by high score (?limit=, default 10)
//   - GET /api/players/{id}/stats - Per-game aggregates for a player
//
// Live:
//   - GET /ws?session={id} - State stream and input frames
//   - POST /mcp - MCP JSON-RPC, when mounted with WithMCP
//
// Errors are returned as {"error": "..."}: 404 for unknown sessions, 400 for
// unknown games or actions, 409 when starting a game that is not ready.
// Actions the game cannot apply right now are not errors; they come back with
// "accepted": false.
//
// Usage:
//
//	server := api.NewServer(gameService, hub,
//		api.WithMCP(mcpHandler),
//		api.WithLogger(logger))
//	http.ListenAndServe(":8080", server)
package api
