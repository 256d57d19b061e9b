package engine

import (
	"fmt"
	"strings"
)

// GameID identifies one of the arcade games
type GameID string

const (
	Tetris     GameID = "Tetris"
	Snake      GameID = "Snake"
	FlippyBird GameID = "FlippyBird"
	Memory     GameID = "Memory"
	Puzzle     GameID = "Puzzle"
)

// AllGames lists every game in display order
var AllGames = []GameID{Tetris, Snake, FlippyBird, Memory, Puzzle}

// Slug returns the lowercase file-friendly name of the game
func (g GameID) Slug() string {
	switch g {
	case FlippyBird:
		return "flippy"
	default:
		return strings.ToLower(string(g))
	}
}

// ParseGameID resolves a user supplied game name. Matching ignores case,
// spaces, dashes and underscores, and accepts the slug form.
func ParseGameID(s string) (GameID, error) {
	key := strings.ToLower(s)
	key = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)
	for _, g := range AllGames {
		if key == strings.ToLower(string(g)) || key == g.Slug() {
			return g, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGame, s)
}

// Status is the lifecycle status shared by every engine
type Status string

const (
	StatusLobby   Status = "lobby"
	StatusReady   Status = "ready"
	StatusPlaying Status = "playing"
	StatusOver    Status = "over"
)

// String returns the display form, e.g. "Over"
func (s Status) String() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Position represents x,y coordinates on a grid. Y grows downward.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p translated by d
func (p Position) Add(d Position) Position {
	return Position{X: p.X + d.X, Y: p.Y + d.Y}
}

// Direction is a cardinal direction for grid games
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Opposite returns the reverse direction
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	return d
}

// Delta returns the unit step for the direction
func (d Direction) Delta() Position {
	switch d {
	case Up:
		return Position{X: 0, Y: -1}
	case Down:
		return Position{X: 0, Y: 1}
	case Left:
		return Position{X: -1, Y: 0}
	case Right:
		return Position{X: 1, Y: 0}
	}
	return Position{}
}

// Steering buffers a direction change until the next tick. Exact
// reversals of the current heading are rejected and the latest accepted
// turn wins.
type Steering struct {
	Current Direction `json:"current"`
	Next    Direction `json:"next"`
}

// NewSteering starts heading in d
func NewSteering(d Direction) Steering {
	return Steering{Current: d, Next: d}
}

// Turn queues d for the next tick
func (s *Steering) Turn(d Direction) bool {
	if d == s.Current.Opposite() {
		return false
	}
	s.Next = d
	return true
}

// Advance applies the queued turn and returns the new heading
func (s *Steering) Advance() Direction {
	s.Current = s.Next
	return s.Current
}
