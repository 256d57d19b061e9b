package puzzle

import (
	"slices"
	"time"

	"github.com/wricardo/mcp-training/arcade/game/engine"
)

// State is the sliding puzzle board
type State struct {
	Status    engine.Status     `json:"status"`
	Size      int               `json:"size"`
	Tiles     Tiles             `json:"tiles"`
	Moves     int               `json:"moves"`
	Won       bool              `json:"won"`
	Score     int               `json:"score"`
	HighScore int               `json:"high_score"`
	StartedAt time.Time         `json:"started_at"`
	Elapsed   time.Duration     `json:"elapsed"`
	Result    engine.ResultSlot `json:"result"`
}

// Blank returns the grid position of the empty cell
func (s *State) Blank() engine.Position {
	e := EmptyIndex(s.Tiles)
	return engine.Position{X: e % s.Size, Y: e / s.Size}
}

// Clone returns a deep copy
func (s *State) Clone() *State {
	c := *s
	c.Tiles = slices.Clone(s.Tiles)
	return &c
}
