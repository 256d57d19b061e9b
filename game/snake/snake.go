// Package snake implements the Snake engine on a bounded grid with a
// per-session time budget.
package snake

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
		if st.Status != engine.StatusReady {
			return st, false
		}
		next := st.Clone()
		next.Status = engine.StatusPlaying
		next.StartedAt = ev.Now
		return next, true

	case engine.EventAction:
		if st.Status != engine.StatusPlaying {
			return st, false
		}
		dir, ok := ev.Action.Direction()
		if !ok {
			return st, false
		}
		next := st.Clone()
		if !next.Steering.Turn(dir) {
			return st, false
		}
		return next, true

	case engine.EventTick:
		if st.Status != engine.StatusPlaying {
			return st, false
		}
		return step(cfg, st, ev.Now, rng), true
	}
	return st, false
}

// reset places a single segment snake at the start cell and the first food
func reset(cfg *Config, rng *rand.Rand) *State {
	st := &State{
		Status:     engine.StatusLobby,
		Body:       []engine.Position{cfg.Start},
		Steering:   engine.NewSteering(cfg.StartDirection),
		IntervalMs: cfg.InitialIntervalMs,
	}
	st.Food, _ = PlaceFood(cfg, st.Body, rng)
	return st
}

func step(cfg *Config, st *State, now time.Time, rng *rand.Rand) *State {
	next := st.Clone()
	next.Elapsed = engine.Elapsed(next.StartedAt, now)

	if limit := cfg.TimeLimit(); limit > 0 && next.Elapsed >= limit {
		next.Elapsed = limit
		finish(next, EndTimeout)
		return next
	}

	dir := next.Steering.Advance()
	head := next.Head().Add(dir.Delta())
	// The tail has not moved yet, so entering the cell it is leaving
	// counts as a collision.
	if !cfg.InBounds(head) || next.Occupies(head) {
		finish(next, EndCollision)
		return next
	}

	next.Body = append([]engine.Position{head}, next.Body...)
	if head != next.Food {
		next.Body = next.Body[:len(next.Body)-1]
		return next
	}

	next.Score += cfg.PointsPerFood
	next.FoodEaten++
	next.IntervalMs = max(cfg.MinIntervalMs, next.IntervalMs-cfg.IntervalStepMs)

	food, ok := PlaceFood(cfg, next.Body, rng)
	if !ok {
		finish(next, EndBoardFull)
		return next
	}
	next.Food = food
	return next
}

// PlaceFood picks a uniformly random cell not covered by body
func PlaceFood(cfg *Config, body []engine.Position, rng *rand.Rand) (engine.Position, bool) {
	occupied := make(map[engine.Position]bool, len(body))
	for _, p := range body {
		occupied[p] = true
	}

	free := make([]engine.Position, 0, cfg.Width*cfg.Height-len(body))
	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			p := engine.Position{X: x, Y: y}
			if !occupied[p] {
				free = append(free, p)
			}
		}
	}
	if len(free) == 0 {
		return engine.Position{}, false
	}
	return free[rng.Intn(len(free))], true
}

func finish(st *State, reason string) {
	st.Status = engine.StatusOver
	st.EndReason = reason
	if st.Score > st.HighScore {
		st.HighScore = st.Score
	}
	st.Result.Settle(engine.NewResult(st.Score, engine.Seconds(st.Elapsed), map[string]int{
		"apples_eaten": st.FoodEaten,
		"length":       len(st.Body),
	}))
}
