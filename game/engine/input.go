package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// ActionKind is a canonical engine input
type ActionKind string

const (
	ActJump     ActionKind = "JUMP"
	ActUp       ActionKind = "UP"
	ActDown     ActionKind = "DOWN"
	ActLeft     ActionKind = "LEFT"
	ActRight    ActionKind = "RIGHT"
	ActSoftDrop ActionKind = "SOFT_DROP"
	ActRotate   ActionKind = "ROTATE"
	ActHardDrop ActionKind = "HARD_DROP"
	ActSelect   ActionKind = "SELECT"
)

// Action is a normalized player input. SELECT addresses a cell either by
// row-major index (Cell) or by grid coordinates (At).
type Action struct {
	Kind ActionKind `json:"kind"`
	Cell int        `json:"cell,omitempty"`
	At   *Position  `json:"at,omitempty"`
}

// Direction maps a directional action to a grid direction
func (a Action) Direction() (Direction, bool) {
	switch a.Kind {
	case ActUp:
		return Up, true
	case ActDown:
		return Down, true
	case ActLeft:
		return Left, true
	case ActRight:
		return Right, true
	}
	return "", false
}

// CellIndex resolves the selected cell for a grid with the given column count
func (a Action) CellIndex(columns int) int {
	if a.At != nil {
		if a.At.X < 0 || a.At.X >= columns || a.At.Y < 0 {
			return -1
		}
		return a.At.Y*columns + a.At.X
	}
	return a.Cell
}

// Vocabulary returns the canonical actions a game accepts
func Vocabulary(game GameID) []ActionKind {
	switch game {
	case FlippyBird:
		return []ActionKind{ActJump}
	case Snake:
		return []ActionKind{ActUp, ActDown, ActLeft, ActRight}
	case Tetris:
		return []ActionKind{ActLeft, ActRight, ActSoftDrop, ActRotate, ActHardDrop}
	case Memory, Puzzle:
		return []ActionKind{ActSelect}
	}
	return nil
}

var keyAliases = map[GameID]map[string]ActionKind{
	FlippyBird: {
		"jump": ActJump, "space": ActJump, " ": ActJump, "tap": ActJump,
		"click": ActJump, "arrowup": ActJump, "up": ActJump, "w": ActJump,
	},
	Snake: {
		"up": ActUp, "arrowup": ActUp, "w": ActUp,
		"down": ActDown, "arrowdown": ActDown, "s": ActDown,
		"left": ActLeft, "arrowleft": ActLeft, "a": ActLeft,
		"right": ActRight, "arrowright": ActRight, "d": ActRight,
	},
	Tetris: {
		"left": ActLeft, "arrowleft": ActLeft, "a": ActLeft,
		"right": ActRight, "arrowright": ActRight, "d": ActRight,
		"down": ActSoftDrop, "arrowdown": ActSoftDrop, "s": ActSoftDrop, "soft_drop": ActSoftDrop, "softdrop": ActSoftDrop,
		"up": ActRotate, "arrowup": ActRotate, "w": ActRotate, "rotate": ActRotate,
		"space": ActHardDrop, " ": ActHardDrop, "hard_drop": ActHardDrop, "harddrop": ActHardDrop, "drop": ActHardDrop,
	},
}

// Normalize maps a raw device token (key name, pointer gesture or
// "select:<n>" / "select:<row>,<col>") to a canonical action for game.
func Normalize(game GameID, raw string) (Action, error) {
	token := strings.ToLower(raw)
	if strings.TrimSpace(token) != "" {
		token = strings.TrimSpace(token)
	}

	switch game {
	case Memory, Puzzle:
		return parseSelect(raw, token)
	}

	aliases, ok := keyAliases[game]
	if !ok {
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownGame, game)
	}
	kind, ok := aliases[token]
	if !ok {
		return Action{}, fmt.Errorf("%w %q for %s", ErrUnknownAction, raw, game)
	}
	return Action{Kind: kind}, nil
}

func parseSelect(raw, token string) (Action, error) {
	for _, prefix := range []string{"select:", "flip:", "click:", "tap:"} {
		if strings.HasPrefix(token, prefix) {
			token = strings.TrimPrefix(token, prefix)
			break
		}
	}
	token = strings.TrimSpace(token)

	if row, col, found := strings.Cut(token, ","); found {
		r, err1 := strconv.Atoi(strings.TrimSpace(row))
		c, err2 := strconv.Atoi(strings.TrimSpace(col))
		if err1 != nil || err2 != nil || r < 0 || c < 0 {
			return Action{}, fmt.Errorf("%w %q: expected select:<row>,<col>", ErrUnknownAction, raw)
		}
		return Action{Kind: ActSelect, At: &Position{X: c, Y: r}}, nil
	}

	n, err := strconv.Atoi(token)
	if err != nil || n < 0 {
		return Action{}, fmt.Errorf("%w %q: expected select:<cell>", ErrUnknownAction, raw)
	}
	return Action{Kind: ActSelect, Cell: n}, nil
}
