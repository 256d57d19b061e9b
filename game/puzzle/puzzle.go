// Package puzzle implements the N x N sliding tile puzzle. Boards are
// shuffled uniformly and resampled until solvable.
package puzzle

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
		next := newBoard(cfg, rng)
		next.HighScore = st.HighScore
		return next, true

	case engine.EventReady:
		next := newBoard(cfg, rng)
		next.Status = engine.StatusReady
		next.HighScore = ev.HighScore
		return next, true

	case engine.EventStart:
		if st.Status != engine.StatusReady {
			return st, false
		}
		next := st.Clone()
		next.Status = engine.StatusPlaying
		next.StartedAt = ev.Now
		return next, true

	case engine.EventTick:
		if st.Status != engine.StatusPlaying {
			return st, false
		}
		next := st.Clone()
		next.Elapsed = engine.Elapsed(next.StartedAt, ev.Now)
		return next, true

	case engine.EventAction:
		if st.Status != engine.StatusPlaying || ev.Action.Kind != engine.ActSelect {
			return st, false
		}
		return slide(cfg, st, ev.Action, ev.Now)
	}
	return st, false
}

func newBoard(cfg *Config, rng *rand.Rand) *State {
	return &State{
		Status: engine.StatusLobby,
		Size:   cfg.Size,
		Tiles:  Shuffle(cfg.Size, rng),
	}
}

// slide moves the selected tile into the blank when they share an edge
func slide(cfg *Config, st *State, a engine.Action, now time.Time) (*State, bool) {
	var target engine.Position
	if a.At != nil {
		target = *a.At
	} else {
		target = engine.Position{X: a.Cell % st.Size, Y: a.Cell / st.Size}
		if a.Cell < 0 {
			return st, false
		}
	}
	if target.X < 0 || target.X >= st.Size || target.Y < 0 || target.Y >= st.Size {
		return st, false
	}
	blank := st.Blank()
	if !engine.Adjacent(target, blank) {
		return st, false
	}

	next := st.Clone()
	next.Elapsed = engine.Elapsed(next.StartedAt, now)
	ti := target.Y*st.Size + target.X
	bi := blank.Y*st.Size + blank.X
	next.Tiles[bi], next.Tiles[ti] = next.Tiles[ti], next.Tiles[bi]
	next.Moves++

	if Solved(next.Tiles) {
		next.Status = engine.StatusOver
		next.Won = true
		secs := engine.Seconds(next.Elapsed)
		next.Score = cfg.Score(next.Moves, secs)
		if next.Score > next.HighScore {
			next.HighScore = next.Score
		}
		next.Result.Settle(engine.NewResult(next.Score, secs, map[string]int{
			"moves": next.Moves,
			"won":   1,
		}))
	}
	return next, true
}
