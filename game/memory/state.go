package memory

import (
	"slices"
	"time"

	"github.com/wricardo/mcp-training/arcade/game/engine"
)

// Card is one tile of the deck
type Card struct {
	ID      int  `json:"id"`
	Symbol  int  `json:"symbol"`
	FaceUp  bool `json:"face_up"`
	Matched bool `json:"matched"`
}

// State is the Memory table
type State struct {
	Status    engine.Status     `json:"status"`
	Cards     []Card            `json:"cards"`
	Columns   int               `json:"columns"`
	Selected  []int             `json:"selected"`
	HideAt    time.Time         `json:"hide_at,omitempty"`
	Moves     int               `json:"moves"`
	Matched   int               `json:"matched"`
	Won       bool              `json:"won"`
	Score     int               `json:"score"`
	HighScore int               `json:"high_score"`
	StartedAt time.Time         `json:"started_at"`
	Elapsed   time.Duration     `json:"elapsed"`
	Result    engine.ResultSlot `json:"result"`
}

// Pending reports whether a mismatched pair is waiting to be hidden
func (s *State) Pending() bool { return !s.HideAt.IsZero() }

// Clone returns a deep copy
func (s *State) Clone() *State {
	c := *s
	c.Cards = slices.Clone(s.Cards)
	c.Selected = slices.Clone(s.Selected)
	return &c
}
