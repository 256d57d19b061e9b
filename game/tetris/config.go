package tetris

import (
	"fmt"
	"time"

	"github.com/wricardo/mcp-training/arcade/game/engine"
)

// Config holds the Tetris board size and pacing
type Config struct {
	Rows           int   `json:"rows"`
	Cols           int   `json:"cols"`
	BaseIntervalMs int   `json:"base_interval_ms"`
	IntervalStepMs int   `json:"interval_step_ms"`
	MinIntervalMs  int   `json:"min_interval_ms"`
	LinesPerLevel  int   `json:"lines_per_level"`
	LineScores     []int `json:"line_scores"`
}

// DefaultConfig returns the standard 10x20 well
func DefaultConfig() *Config {
	return &Config{
		Rows:           20,
		Cols:           10,
		BaseIntervalMs: 1000,
		IntervalStepMs: 50,
		MinIntervalMs:  100,
		LinesPerLevel:  10,
		LineScores:     []int{0, 100, 300, 500, 800},
	}
}

// Validate checks the configuration is playable
func (c *Config) Validate() error {
	if c.Cols < 4 || c.Rows < 4 {
		return fmt.Errorf("%w: board must be at least 4x4, got %dx%d", engine.ErrInvalidConfig, c.Cols, c.Rows)
	}
	empty := NewBoard(c.Rows, c.Cols)
	for _, k := range Kinds {
		if !empty.Fits(ShapeOf(k), c.SpawnOrigin()) {
			return fmt.Errorf("%w: %dx%d board cannot spawn the %s piece", engine.ErrInvalidConfig, c.Cols, c.Rows, k)
		}
	}
	if c.MinIntervalMs <= 0 || c.BaseIntervalMs < c.MinIntervalMs || c.IntervalStepMs < 0 {
		return fmt.Errorf("%w: need 0 < min_interval_ms <= base_interval_ms", engine.ErrInvalidConfig)
	}
	if c.LinesPerLevel <= 0 {
		return fmt.Errorf("%w: lines_per_level must be positive", engine.ErrInvalidConfig)
	}
	if len(c.LineScores) != 5 {
		return fmt.Errorf("%w: line_scores needs 5 entries, got %d", engine.ErrInvalidConfig, len(c.LineScores))
	}
	for i := 1; i < len(c.LineScores); i++ {
		if c.LineScores[i] < c.LineScores[i-1] || c.LineScores[i] < 0 {
			return fmt.Errorf("%w: line_scores must be non-negative and non-decreasing", engine.ErrInvalidConfig)
		}
	}
	return nil
}

// SpawnOrigin is where new pieces enter the well
func (c *Config) SpawnOrigin() engine.Position {
	return engine.Position{X: c.Cols/2 - 1, Y: 0}
}

// Interval returns the gravity period for a level
func (c *Config) Interval(level int) time.Duration {
	ms := max(c.MinIntervalMs, c.BaseIntervalMs-(level-1)*c.IntervalStepMs)
	return time.Duration(ms) * time.Millisecond
}

// LevelFor returns the level reached after clearing lines
func (c *Config) LevelFor(lines int) int {
	return 1 + lines/c.LinesPerLevel
}

// LineScore returns the base score for clearing n lines at once
func (c *Config) LineScore(n int) int {
	if n < 0 {
		return 0
	}
	if n >= len(c.LineScores) {
		n = len(c.LineScores) - 1
	}
	return c.LineScores[n]
}
