package flippy

import (
	"slices"
	"time"

	"github.com/wricardo/mcp-training/arcade/game/engine"
)

// Bird is the player. Y is the top edge; positive VY falls.
type Bird struct {
	Y  float64 `json:"y"`
	VY float64 `json:"vy"`
}

// Obstacle is a pipe pair with a vertical gap starting at GapTop
type Obstacle struct {
	X      float64 `json:"x"`
	GapTop float64 `json:"gap_top"`
	Passed bool    `json:"passed"`
}

// State is the complete Flippy Bird world
type State struct {
	Status       engine.Status     `json:"status"`
	Bird         Bird              `json:"bird"`
	Obstacles    []Obstacle        `json:"obstacles"`
	Score        int               `json:"score"`
	HighScore    int               `json:"high_score"`
	NewHighScore bool              `json:"new_high_score"`
	StartedAt    time.Time         `json:"started_at"`
	LastSpawn    time.Time         `json:"last_spawn"`
	Elapsed      time.Duration     `json:"elapsed"`
	Frames       int               `json:"frames"`
	Result       engine.ResultSlot `json:"result"`
}

// NewState returns a lobby state
func NewState(cfg *Config) *State {
	return &State{
		Status:    engine.StatusLobby,
		Bird:      Bird{Y: cfg.BoardHeight / 2},
		Obstacles: []Obstacle{},
	}
}

// Clone returns a deep copy
func (s *State) Clone() *State {
	c := *s
	c.Obstacles = slices.Clone(s.Obstacles)
	if c.Obstacles == nil {
		c.Obstacles = []Obstacle{}
	}
	return &c
}
