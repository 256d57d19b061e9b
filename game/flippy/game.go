package flippy

import (
	"math/rand"
	"time"

	"github.com/wricardo/mcp-training/arcade/game/engine"
)

// Game adapts Transition to engine.Game
type Game struct {
	cfg   *Config
	state *State
	rng   *rand.Rand
}

// New creates a Flippy Bird game in the lobby
func New(cfg *Config, rng *rand.Rand) (*Game, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Game{cfg: cfg, state: NewState(cfg), rng: rng}, nil
}

func (g *Game) ID() engine.GameID { return engine.FlippyBird }

func (g *Game) Dispatch(ev engine.Event) bool {
	next, changed := Transition(g.cfg, g.state, ev, g.rng)
	g.state = next
	return changed
}

func (g *Game) Status() engine.Status { return g.state.Status }

func (g *Game) TickInterval() time.Duration { return g.cfg.FrameInterval() }

func (g *Game) TakeResult() (engine.GameResult, bool) { return g.state.Result.Take() }

func (g *Game) Snapshot() any { return g.state.Clone() }

// State returns the current state. Callers must not modify it.
func (g *Game) State() *State { return g.state }

// Config returns the game configuration
func (g *Game) Config() *Config { return g.cfg }
