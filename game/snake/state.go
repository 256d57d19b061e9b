package snake

import (
	"slices"
	"time"

	"github.com/wricardo/mcp-training/arcade/game/engine"
)

// End reasons
const (
	EndCollision = "collision"
	EndTimeout   = "timeout"
	EndBoardFull = "board_full"
)

// State is the Snake world. Body[0] is the head.
type State struct {
	Status     engine.Status     `json:"status"`
	Body       []engine.Position `json:"body"`
	Food       engine.Position   `json:"food"`
	Steering   engine.Steering   `json:"steering"`
	Score      int               `json:"score"`
	FoodEaten  int               `json:"food_eaten"`
	IntervalMs int               `json:"interval_ms"`
	HighScore  int               `json:"high_score"`
	StartedAt  time.Time         `json:"started_at"`
	Elapsed    time.Duration     `json:"elapsed"`
	EndReason  string            `json:"end_reason,omitempty"`
	Result     engine.ResultSlot `json:"result"`
}

// Head returns the head segment
func (s *State) Head() engine.Position { return s.Body[0] }

// Occupies reports whether p is part of the body
func (s *State) Occupies(p engine.Position) bool {
	return slices.Contains(s.Body, p)
}

// Clone returns a deep copy
func (s *State) Clone() *State {
	c := *s
	c.Body = slices.Clone(s.Body)
	return &c
}
