// Package flippy implements the Flippy Bird engine: a bird under constant
// gravity that jumps through gaps in scrolling pipes.
package flippy

import (
	"math/rand"
	"time"

	"github.com/wricardo/mcp-training/arcade/game/engine"
)

// Transition applies ev to st and returns the next state. st is never
// modified. The bool reports whether anything changed.
func Transition(cfg *Config, st *State, ev engine.Event, rng *rand.Rand) (*State, bool) {
	switch ev.Kind {
	case engine.EventLobby:
		next := NewState(cfg)
		next.HighScore = st.HighScore
		return next, true

	case engine.EventReady:
		next := NewState(cfg)
		next.Status = engine.StatusReady
		next.HighScore = ev.HighScore
		return next, true

	case engine.EventStart:
		if st.Status != engine.StatusReady {
			return st, false
		}
		return start(cfg, st, ev.Now), true

	case engine.EventAction:
		if ev.Action.Kind != engine.ActJump {
			return st, false
		}
		switch st.Status {
		case engine.StatusReady:
			// the first flap starts the round
			return start(cfg, st, ev.Now), true
		case engine.StatusPlaying:
			next := st.Clone()
			next.Bird.VY = cfg.JumpVelocity
			return next, true
		}
		return st, false

	case engine.EventTick:
		if st.Status != engine.StatusPlaying {
			return st, false
		}
		return step(cfg, st, ev.Now, rng), true
	}
	return st, false
}

func start(cfg *Config, st *State, now time.Time) *State {
	next := st.Clone()
	next.Status = engine.StatusPlaying
	next.Bird.VY = cfg.JumpVelocity
	next.StartedAt = now
	next.LastSpawn = now
	return next
}

// step advances one physics frame: integrate the bird, scroll and prune
// obstacles, spawn, score, then check collisions.
func step(cfg *Config, st *State, now time.Time, rng *rand.Rand) *State {
	next := st.Clone()
	next.Frames++
	next.Elapsed = engine.Elapsed(next.StartedAt, now)

	next.Bird.VY += cfg.Gravity
	next.Bird.Y += next.Bird.VY

	kept := next.Obstacles[:0]
	for _, o := range next.Obstacles {
		o.X -= cfg.PipeSpeed
		if o.X < -cfg.PipeWidth {
			continue
		}
		kept = append(kept, o)
	}
	next.Obstacles = kept

	if now.Sub(next.LastSpawn) > cfg.SpawnInterval() {
		next.Obstacles = append(next.Obstacles, Obstacle{
			X:      cfg.BoardWidth,
			GapTop: cfg.MinGap + rng.Float64()*(cfg.MaxGapTop()-cfg.MinGap),
		})
		next.LastSpawn = now
	}

	center := cfg.BirdCenterX()
	for i := range next.Obstacles {
		o := &next.Obstacles[i]
		if !o.Passed && o.X+cfg.PipeWidth < center {
			o.Passed = true
			next.Score++
		}
	}

	if collides(cfg, next) {
		finish(next)
	}
	return next
}

func collides(cfg *Config, st *State) bool {
	top := st.Bird.Y
	bottom := st.Bird.Y + cfg.BirdSize
	if top < 0 || bottom > cfg.BoardHeight {
		return true
	}

	left := cfg.BirdCenterX() - cfg.BirdSize/2
	right := cfg.BirdCenterX() + cfg.BirdSize/2
	for _, o := range st.Obstacles {
		if right <= o.X || left >= o.X+cfg.PipeWidth {
			continue
		}
		if top < o.GapTop || bottom > o.GapTop+cfg.GapSize {
			return true
		}
	}
	return false
}

func finish(st *State) {
	st.Status = engine.StatusOver
	st.NewHighScore = st.Score > st.HighScore
	if st.NewHighScore {
		st.HighScore = st.Score
	}
	newHigh := 0
	if st.NewHighScore {
		newHigh = 1
	}
	st.Result.Settle(engine.NewResult(st.Score, engine.Seconds(st.Elapsed), map[string]int{
		"pipes_passed":   st.Score,
		"new_high_score": newHigh,
	}))
}
