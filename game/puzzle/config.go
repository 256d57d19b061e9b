package puzzle

import (
	"fmt"
	"time"

	"github.com/wricardo/mcp-training/arcade/game/engine"
)

// Config holds the board size and scoring
type Config struct {
	Size           int `json:"size"`
	TickIntervalMs int `json:"tick_interval_ms"`
	BaseScore      int `json:"base_score"`
	MovePenalty    int `json:"move_penalty"`
	SecondPenalty  int `json:"second_penalty"`
}

// DefaultConfig returns the 4x4 fifteen puzzle
func DefaultConfig() *Config {
	return &Config{
		Size:           4,
		TickIntervalMs: 1000,
		BaseScore:      10000,
		MovePenalty:    10,
		SecondPenalty:  1,
	}
}

// Validate checks the configuration is playable
func (c *Config) Validate() error {
	if c.Size < 2 || c.Size > 8 {
		return fmt.Errorf("%w: size must be in [2, 8], got %d", engine.ErrInvalidConfig, c.Size)
	}
	if c.TickIntervalMs <= 0 {
		return fmt.Errorf("%w: tick_interval_ms must be positive", engine.ErrInvalidConfig)
	}
	if c.BaseScore < 0 || c.MovePenalty < 0 || c.SecondPenalty < 0 {
		return fmt.Errorf("%w: scoring values must be non-negative", engine.ErrInvalidConfig)
	}
	return nil
}

// TickInterval is the elapsed time clock period
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// Score applies the timed score formula
func (c *Config) Score(moves, seconds int) int {
	return engine.TimedScore(c.BaseScore, moves, c.MovePenalty, seconds, c.SecondPenalty)
}
