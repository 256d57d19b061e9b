package memory

import (
	"fmt"
	"time"

	"github.com/wricardo/mcp-training/arcade/game/engine"
)

// Symbols names the card faces, indexed by symbol id
var Symbols = []string{"bird", "brain", "puzzle", "blocks", "bot", "gamepad", "star", "trophy", "rocket", "heart"}

// Config holds the deck layout and scoring
type Config struct {
	Pairs           int `json:"pairs"`
	Columns         int `json:"columns"`
	MismatchDelayMs int `json:"mismatch_delay_ms"`
	TickIntervalMs  int `json:"tick_interval_ms"`
	BaseScore       int `json:"base_score"`
	MovePenalty     int `json:"move_penalty"`
	SecondPenalty   int `json:"second_penalty"`
}

// DefaultConfig returns 8 pairs on a 4x4 grid
func DefaultConfig() *Config {
	return &Config{
		Pairs:           8,
		Columns:         4,
		MismatchDelayMs: 1000,
		TickIntervalMs:  100,
		BaseScore:       10000,
		MovePenalty:     10,
		SecondPenalty:   1,
	}
}

// Validate checks the configuration is playable
func (c *Config) Validate() error {
	if c.Pairs < 1 || c.Pairs > len(Symbols) {
		return fmt.Errorf("%w: pairs must be in [1, %d], got %d", engine.ErrInvalidConfig, len(Symbols), c.Pairs)
	}
	if c.Columns < 1 || (2*c.Pairs)%c.Columns != 0 {
		return fmt.Errorf("%w: %d cards do not fill %d columns", engine.ErrInvalidConfig, 2*c.Pairs, c.Columns)
	}
	if c.MismatchDelayMs < 0 || c.TickIntervalMs <= 0 {
		return fmt.Errorf("%w: invalid delays", engine.ErrInvalidConfig)
	}
	if c.BaseScore < 0 || c.MovePenalty < 0 || c.SecondPenalty < 0 {
		return fmt.Errorf("%w: scoring values must be non-negative", engine.ErrInvalidConfig)
	}
	return nil
}

// MismatchDelay is how long an unmatched pair stays face up
func (c *Config) MismatchDelay() time.Duration {
	return time.Duration(c.MismatchDelayMs) * time.Millisecond
}

// Score applies the timed score formula
func (c *Config) Score(moves, seconds int) int {
	return engine.TimedScore(c.BaseScore, moves, c.MovePenalty, seconds, c.SecondPenalty)
}
