package service

import (
	"time"

	"github.com/wricardo/mcp-training/arcade/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string        `json:"id"`
	Game           engine.GameID `json:"game"`
	PlayerID       string        `json:"player_id"`
	Status         engine.Status `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	LastAccessedAt time.Time     `json:"last_accessed_at"`
	State          any           `json:"state"`
}

// ActionResult contains the outcome of a player action
type ActionResult struct {
	Accepted bool          `json:"accepted"`
	Action   engine.Action `json:"action"`
	Status   engine.Status `json:"status"`
	State    any           `json:"state"`
	Message  string        `json:"message,omitempty"`
}

// ConfigInfo describes the tuning in effect for one game
type ConfigInfo struct {
	Game     engine.GameID `json:"game"`
	Filename string        `json:"filename"`
	Source   string        `json:"source"` // "file" or "default"
	Config   any           `json:"config"`
}

// StateUpdate is pushed to observers after every accepted transition
type StateUpdate struct {
	SessionID string        `json:"session_id"`
	Game      engine.GameID `json:"game"`
	State     any           `json:"state"`
}
