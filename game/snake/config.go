package snake

import (
	"fmt"
	"time"

	"github.com/wricardo/mcp-training/arcade/game/engine"
)

// Config holds the Snake grid and pacing parameters
type Config struct {
	Width             int              `json:"width"`
	Height            int              `json:"height"`
	Start             engine.Position  `json:"start"`
	StartDirection    engine.Direction `json:"start_direction"`
	PointsPerFood     int              `json:"points_per_food"`
	InitialIntervalMs int              `json:"initial_interval_ms"`
	IntervalStepMs    int              `json:"interval_step_ms"`
	MinIntervalMs     int              `json:"min_interval_ms"`
	// TimeLimitSeconds of zero disables the session budget.
	TimeLimitSeconds int `json:"time_limit_seconds"`
}

// DefaultConfig returns the classic 20x20 board with a 90 second budget
func DefaultConfig() *Config {
	return &Config{
		Width:             20,
		Height:            20,
		Start:             engine.Position{X: 10, Y: 10},
		StartDirection:    engine.Right,
		PointsPerFood:     10,
		InitialIntervalMs: 200,
		IntervalStepMs:    2,
		MinIntervalMs:     50,
		TimeLimitSeconds:  90,
	}
}

// Validate checks the configuration is playable
func (c *Config) Validate() error {
	if c.Width < 2 || c.Height < 2 {
		return fmt.Errorf("%w: grid must be at least 2x2, got %dx%d", engine.ErrInvalidConfig, c.Width, c.Height)
	}
	if !c.InBounds(c.Start) {
		return fmt.Errorf("%w: start %v outside the grid", engine.ErrInvalidConfig, c.Start)
	}
	if c.StartDirection.Delta() == (engine.Position{}) {
		return fmt.Errorf("%w: unknown start_direction %q", engine.ErrInvalidConfig, c.StartDirection)
	}
	if c.MinIntervalMs <= 0 || c.InitialIntervalMs < c.MinIntervalMs {
		return fmt.Errorf("%w: need 0 < min_interval_ms <= initial_interval_ms", engine.ErrInvalidConfig)
	}
	if c.IntervalStepMs < 0 || c.PointsPerFood < 0 || c.TimeLimitSeconds < 0 {
		return fmt.Errorf("%w: negative step, points or time limit", engine.ErrInvalidConfig)
	}
	return nil
}

// InBounds reports whether p lies on the grid
func (c *Config) InBounds(p engine.Position) bool {
	return p.X >= 0 && p.X < c.Width && p.Y >= 0 && p.Y < c.Height
}

// TimeLimit returns the session budget, zero when unlimited
func (c *Config) TimeLimit() time.Duration {
	return time.Duration(c.TimeLimitSeconds) * time.Second
}
