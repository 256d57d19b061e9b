// Package tetris implements the falling block engine: seven tetrominoes,
// clockwise rotation without wall kicks, line clears scored per level.
package tetris

import (
	"math/rand"
	"time"

	"github.com/wricardo/mcp-training/arcade/game/engine"
)

// Transition applies ev to st and returns the next state without
// modifying st.
func Transition(cfg *Config, st *State, ev engine.Event, rng *rand.Rand) (*State, bool) {
	switch ev.Kind {
	case engine.EventLobby:
		next := reset(cfg, rng)
		next.HighScore = st.HighScore
		return next, true

	case engine.EventReady:
		next := reset(cfg, rng)
		next.Status = engine.StatusReady
		next.HighScore = ev.HighScore
		return next, true

	case engine.EventStart:
		if st.Status != engine.StatusReady || st.Piece == nil {
			return st, false
		}
		next := st.Clone()
		next.Status = engine.StatusPlaying
		next.StartedAt = ev.Now
		return next, true

	case engine.EventTick:
		if st.Status != engine.StatusPlaying || st.Piece == nil {
			return st, false
		}
		next := st.Clone()
		next.Elapsed = engine.Elapsed(next.StartedAt, ev.Now)
		drop(cfg, next, rng)
		return next, true

	case engine.EventAction:
		if st.Status != engine.StatusPlaying || st.Piece == nil {
			return st, false
		}
		return act(cfg, st, ev, rng)
	}
	return st, false
}

func act(cfg *Config, st *State, ev engine.Event, rng *rand.Rand) (*State, bool) {
	p := st.Piece
	switch ev.Action.Kind {
	case engine.ActLeft, engine.ActRight:
		dx := -1
		if ev.Action.Kind == engine.ActRight {
			dx = 1
		}
		origin := engine.Position{X: p.Origin.X + dx, Y: p.Origin.Y}
		if !st.Board.Fits(p.Shape, origin) {
			return st, false
		}
		next := st.Clone()
		next.Piece.Origin = origin
		return next, true

	case engine.ActRotate:
		rotated := p.Shape.Rotate()
		if !st.Board.Fits(rotated, p.Origin) {
			return st, false
		}
		next := st.Clone()
		next.Piece.Shape = rotated
		return next, true

	case engine.ActSoftDrop:
		next := st.Clone()
		next.Elapsed = engine.Elapsed(next.StartedAt, ev.Now)
		drop(cfg, next, rng)
		return next, true

	case engine.ActHardDrop:
		next := st.Clone()
		next.Elapsed = engine.Elapsed(next.StartedAt, ev.Now)
		for next.Board.Fits(next.Piece.Shape, below(next.Piece.Origin)) {
			next.Piece.Origin = below(next.Piece.Origin)
		}
		lock(cfg, next, rng)
		return next, true
	}
	return st, false
}

func below(p engine.Position) engine.Position {
	return engine.Position{X: p.X, Y: p.Y + 1}
}

func reset(cfg *Config, rng *rand.Rand) *State {
	st := &State{
		Status: engine.StatusLobby,
		Board:  NewBoard(cfg.Rows, cfg.Cols),
		Level:  1,
	}
	st.Piece = spawn(cfg, st.Board, rng)
	return st
}

// spawn draws the next piece at the spawn origin. It returns nil when the
// piece does not fit there.
func spawn(cfg *Config, b Board, rng *rand.Rand) *Piece {
	k := Kinds[rng.Intn(len(Kinds))]
	p := Piece{Kind: k, Shape: ShapeOf(k), Origin: cfg.SpawnOrigin()}
	if !b.Fits(p.Shape, p.Origin) {
		return nil
	}
	return &p
}

// drop moves the piece down one row, locking it when it cannot move
func drop(cfg *Config, st *State, rng *rand.Rand) {
	origin := below(st.Piece.Origin)
	if st.Board.Fits(st.Piece.Shape, origin) {
		st.Piece.Origin = origin
		return
	}
	lock(cfg, st, rng)
}

// lock merges the piece into the board, clears full rows, scores them at
// the current level and spawns the next piece. A blocked spawn ends the game.
func lock(cfg *Config, st *State, rng *rand.Rand) {
	for _, c := range st.Piece.Shape.Cells(st.Piece.Origin) {
		st.Board[c.Y][c.X] = st.Piece.Kind
	}
	st.PiecesLocked++

	cleared := ClearLines(st.Board)
	if cleared > 0 {
		st.Score += cfg.LineScore(cleared) * st.Level
		st.Lines += cleared
		st.Level = cfg.LevelFor(st.Lines)
	}

	st.Piece = spawn(cfg, st.Board, rng)
	if st.Piece == nil {
		finish(st)
	}
}

// ClearLines removes every full row, shifting the rows above down, and
// returns how many were removed.
func ClearLines(b Board) int {
	cols := 0
	if len(b) > 0 {
		cols = len(b[0])
	}
	kept := make(Board, 0, len(b))
	for _, row := range b {
		full := true
		for _, k := range row {
			if k == "" {
				full = false
				break
			}
		}
		if !full {
			kept = append(kept, row)
		}
	}
	cleared := len(b) - len(kept)
	for r := 0; r < cleared; r++ {
		b[r] = make([]Kind, cols)
	}
	copy(b[cleared:], kept)
	return cleared
}

func finish(st *State) {
	st.Status = engine.StatusOver
	if st.Score > st.HighScore {
		st.HighScore = st.Score
	}
	st.Result.Settle(engine.NewResult(st.Score, engine.Seconds(st.Elapsed), map[string]int{
		"lines_cleared": st.Lines,
		"level":         st.Level,
		"pieces_locked": st.PiecesLocked,
	}))
}

// interval is the gravity period for the current level
func interval(cfg *Config, st *State) time.Duration {
	return cfg.Interval(st.Level)
}
