// Package session provides in-memory session management for the arcade.
//
// A session binds one player to one game Runner. The manager implements
// service.SessionManager:
//   - Thread-safe session storage and retrieval
//   - Short random session IDs
//   - Case-insensitive lookups
//   - Idle expiry that stops the session clock
//
// Session Identifiers:
//
// Generated IDs are 4 hex characters drawn from crypto/rand. Callers may
// also pass their own ID; duplicates (in any letter case) are rejected with
// ErrSessionAlreadyExists.
//
// Runners:
//
// Create takes a service.RunnerFactory instead of a config so the runner can
// be labelled with the final session ID. The factory runs under the manager
// lock and must not call back into the manager.
//
// Usage:
//
//	manager := session.NewManager(session.WithLogger(logger))
//
//	sess, err := manager.Create("", engine.Snake, "alice", build)
//	if err != nil {
//		return err
//	}
//
//	// Periodically drop idle sessions
//	removed := manager.CleanupExpiredSessions(30 * time.Minute)
//
// Sessions are not persisted. Finished games are recorded by the stats
// store; a session in progress is lost on restart.
package session
