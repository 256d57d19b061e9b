package flippy

import (
	"fmt"
	"time"

	"github.com/wricardo/mcp-training/arcade/game/engine"
)

// Config holds the physics and layout tuning for Flippy Bird
type Config struct {
	BoardWidth      float64 `json:"board_width"`
	BoardHeight     float64 `json:"board_height"`
	BirdSize        float64 `json:"bird_size"`
	Gravity         float64 `json:"gravity"`
	JumpVelocity    float64 `json:"jump_velocity"`
	PipeWidth       float64 `json:"pipe_width"`
	GapSize         float64 `json:"gap_size"`
	PipeSpeed       float64 `json:"pipe_speed"`
	MinGap          float64 `json:"min_gap"`
	SpawnIntervalMs int     `json:"spawn_interval_ms"`
	FrameIntervalMs int     `json:"frame_interval_ms"`
}

// DefaultConfig returns the standard 400x600 board
func DefaultConfig() *Config {
	return &Config{
		BoardWidth:      400,
		BoardHeight:     600,
		BirdSize:        30,
		Gravity:         0.5,
		JumpVelocity:    -7,
		PipeWidth:       60,
		GapSize:         240,
		PipeSpeed:       3,
		MinGap:          80,
		SpawnIntervalMs: 1500,
		FrameIntervalMs: 16,
	}
}

// Validate checks the configuration is playable
func (c *Config) Validate() error {
	switch {
	case c.BoardWidth <= 0 || c.BoardHeight <= 0:
		return fmt.Errorf("%w: board must be positive, got %vx%v", engine.ErrInvalidConfig, c.BoardWidth, c.BoardHeight)
	case c.BirdSize <= 0 || c.BirdSize >= c.BoardHeight:
		return fmt.Errorf("%w: bird_size %v out of range", engine.ErrInvalidConfig, c.BirdSize)
	case c.PipeWidth <= 0 || c.PipeSpeed <= 0:
		return fmt.Errorf("%w: pipe_width and pipe_speed must be positive", engine.ErrInvalidConfig)
	case c.GapSize <= c.BirdSize:
		return fmt.Errorf("%w: gap_size %v must exceed bird_size %v", engine.ErrInvalidConfig, c.GapSize, c.BirdSize)
	case c.MinGap < 0 || c.MaxGapTop() < c.MinGap:
		return fmt.Errorf("%w: no room for a gap with min_gap %v", engine.ErrInvalidConfig, c.MinGap)
	case c.SpawnIntervalMs <= 0 || c.FrameIntervalMs <= 0:
		return fmt.Errorf("%w: intervals must be positive", engine.ErrInvalidConfig)
	}
	return nil
}

// BirdCenterX is the fixed horizontal center of the bird
func (c *Config) BirdCenterX() float64 { return c.BoardWidth / 2 }

// MaxGapTop is the lowest allowed top edge of a gap
func (c *Config) MaxGapTop() float64 { return c.BoardHeight - c.GapSize - c.MinGap }

// SpawnInterval returns the obstacle spawn period
func (c *Config) SpawnInterval() time.Duration {
	return time.Duration(c.SpawnIntervalMs) * time.Millisecond
}

// FrameInterval returns the physics step period
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMs) * time.Millisecond
}
