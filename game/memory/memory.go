// Package memory implements the card matching engine. Two face up cards
// that differ stay visible for a short delay, resolved by the clock.
package memory

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
		next := Deal(cfg, rng)
		next.HighScore = st.HighScore
		return next, true

	case engine.EventReady:
		next := Deal(cfg, rng)
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
		if next.Pending() && !ev.Now.Before(next.HideAt) {
			for _, id := range next.Selected {
				next.Cards[id].FaceUp = false
			}
			next.Selected = nil
			next.HideAt = time.Time{}
		}
		return next, true

	case engine.EventAction:
		if ev.Action.Kind != engine.ActSelect {
			return st, false
		}
		return flip(cfg, st, ev.Action.CellIndex(st.Columns), ev.Now)
	}
	return st, false
}

// Deal shuffles a fresh deck into a lobby state
func Deal(cfg *Config, rng *rand.Rand) *State {
	cards := make([]Card, 0, 2*cfg.Pairs)
	for sym := 0; sym < cfg.Pairs; sym++ {
		cards = append(cards, Card{Symbol: sym}, Card{Symbol: sym})
	}
	rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	for i := range cards {
		cards[i].ID = i
	}
	return &State{
		Status:  engine.StatusLobby,
		Cards:   cards,
		Columns: cfg.Columns,
	}
}

func flip(cfg *Config, st *State, id int, now time.Time) (*State, bool) {
	if st.Status != engine.StatusPlaying || st.Pending() || len(st.Selected) >= 2 {
		return st, false
	}
	if id < 0 || id >= len(st.Cards) || st.Cards[id].FaceUp || st.Cards[id].Matched {
		return st, false
	}

	next := st.Clone()
	next.Elapsed = engine.Elapsed(next.StartedAt, now)
	next.Cards[id].FaceUp = true
	next.Selected = append(next.Selected, id)
	if len(next.Selected) < 2 {
		return next, true
	}

	next.Moves++
	a, b := next.Selected[0], next.Selected[1]
	if next.Cards[a].Symbol != next.Cards[b].Symbol {
		next.HideAt = now.Add(cfg.MismatchDelay())
		return next, true
	}

	next.Cards[a].Matched = true
	next.Cards[b].Matched = true
	next.Selected = nil
	next.Matched++
	if next.Matched == len(next.Cards)/2 {
		finish(cfg, next)
	}
	return next, true
}

func finish(cfg *Config, st *State) {
	st.Status = engine.StatusOver
	st.Won = true
	secs := engine.Seconds(st.Elapsed)
	st.Score = cfg.Score(st.Moves, secs)
	if st.Score > st.HighScore {
		st.HighScore = st.Score
	}
	st.Result.Settle(engine.NewResult(st.Score, secs, map[string]int{
		"moves": st.Moves,
		"won":   1,
		"pairs": st.Matched,
	}))
}
