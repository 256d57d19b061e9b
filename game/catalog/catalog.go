// Package catalog maps game ids to their configs and constructors.
package catalog

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/wricardo/mcp-training/arcade/game/engine"
	"github.com/wricardo/mcp-training/arcade/game/flippy"
	"github.com/wricardo/mcp-training/arcade/game/memory"
	"github.com/wricardo/mcp-training/arcade/game/puzzle"
	"github.com/wricardo/mcp-training/arcade/game/snake"
	"github.com/wricardo/mcp-training/arcade/game/tetris"
)

// Config is implemented by every game configuration
type Config interface {
	Validate() error
}

// Info describes a game for listings
type Info struct {
	ID          engine.GameID       `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Actions     []engine.ActionKind `json:"actions"`
}

type entry struct {
	info     Info
	defaults func() Config
	build    func(cfg Config, rng *rand.Rand) (engine.Game, error)
}

var entries = map[engine.GameID]entry{
	engine.Tetris: {
		info: Info{Name: "Tetris", Description: "Stack falling tetrominoes and clear full rows"},
		defaults: func() Config { return tetris.DefaultConfig() },
		build: func(cfg Config, rng *rand.Rand) (engine.Game, error) {
			return tetris.New(cfg.(*tetris.Config), rng)
		},
	},
	engine.Snake: {
		info: Info{Name: "Snake", Description: "Eat food and grow without hitting walls or yourself"},
		defaults: func() Config { return snake.DefaultConfig() },
		build: func(cfg Config, rng *rand.Rand) (engine.Game, error) {
			return snake.New(cfg.(*snake.Config), rng)
		},
	},
	engine.FlippyBird: {
		info: Info{Name: "Flippy Bird", Description: "Flap through the gaps between pipes"},
		defaults: func() Config { return flippy.DefaultConfig() },
		build: func(cfg Config, rng *rand.Rand) (engine.Game, error) {
			return flippy.New(cfg.(*flippy.Config), rng)
		},
	},
	engine.Memory: {
		info: Info{Name: "Memory", Description: "Find all matching pairs of cards"},
		defaults: func() Config { return memory.DefaultConfig() },
		build: func(cfg Config, rng *rand.Rand) (engine.Game, error) {
			return memory.New(cfg.(*memory.Config), rng)
		},
	},
	engine.Puzzle: {
		info: Info{Name: "Sliding Puzzle", Description: "Slide the tiles back into order"},
		defaults: func() Config { return puzzle.DefaultConfig() },
		build: func(cfg Config, rng *rand.Rand) (engine.Game, error) {
			return puzzle.New(cfg.(*puzzle.Config), rng)
		},
	},
}

func lookup(id engine.GameID) (entry, error) {
	e, ok := entries[id]
	if !ok {
		return entry{}, fmt.Errorf("%w: %q", engine.ErrUnknownGame, id)
	}
	return e, nil
}

// Games lists every game in display order
func Games() []Info {
	out := make([]Info, 0, len(engine.AllGames))
	for _, id := range engine.AllGames {
		e := entries[id]
		info := e.info
		info.ID = id
		info.Actions = engine.Vocabulary(id)
		out = append(out, info)
	}
	return out
}

// Describe returns the listing for one game
func Describe(id engine.GameID) (Info, error) {
	e, err := lookup(id)
	if err != nil {
		return Info{}, err
	}
	info := e.info
	info.ID = id
	info.Actions = engine.Vocabulary(id)
	return info, nil
}

// DefaultConfig returns a fresh copy of the built-in tuning for id
func DefaultConfig(id engine.GameID) (Config, error) {
	e, err := lookup(id)
	if err != nil {
		return nil, err
	}
	return e.defaults(), nil
}

// DecodeConfig overlays JSON onto the defaults for id and validates the
// result, so files only need the fields they change.
func DecodeConfig(id engine.GameID, data []byte) (Config, error) {
	cfg, err := DefaultConfig(id)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s config: %w", id, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewGame builds a lobby game for id. A nil cfg uses the defaults.
func NewGame(id engine.GameID, cfg Config, rng *rand.Rand) (engine.Game, error) {
	e, err := lookup(id)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = e.defaults()
	}
	g, err := e.build(cfg, rng)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", id, err)
	}
	return g, nil
}
