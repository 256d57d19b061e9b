// Package service provides the business logic layer for the arcade.
//
// The service package implements:
//   - Multi-session game management
//   - Runner construction with per-player stats sinks
//   - Raw input normalization and dispatch
//   - Configuration and leaderboard lookups
//
// Core Interfaces:
//
// GameService is the main service interface used by every transport.
// SessionManager stores sessions and their runners.
// ConfigManager loads per-game tuning.
// StatsStore records finished games and answers high score queries.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and
// the game engines. Each session owns one engine.Runner; the runner owns the
// session clock while the game is playing and reports the final result to
// the StatsStore sink for the session's player exactly once.
//
// Lifecycle:
//
//	info, err := svc.CreateSession(ctx, "snake", "alice") // lobby
//	info, err = svc.Ready(ctx, info.ID)                    // loads high score
//	info, err = svc.Start(ctx, info.ID)                    // clock starts
//	res, err := svc.Act(ctx, info.ID, "ArrowUp")
//
// Ready may be called again from any status to restart; a restart never
// records a result. Start outside Ready fails with ErrNotReady. Unknown
// input tokens fail with ErrInvalidAction, while well-formed actions the
// game cannot apply are returned with Accepted set to false.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr := config.NewManager("configs")
//	gameService := service.NewGameService(ctx, sessionMgr, configMgr, store,
//		service.WithNotifier(hub.BroadcastUpdate))
package service
