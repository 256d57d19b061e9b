package engine

import (
	"math"
	"time"
)

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Adjacent reports whether a and b share an edge
func Adjacent(a, b Position) bool {
	return ManhattanDistance(a, b) == 1
}

// Seconds converts an elapsed duration into whole seconds, rounded
func Seconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds()))
}

// Elapsed returns now-start, never negative
func Elapsed(start, now time.Time) time.Duration {
	if start.IsZero() || now.Before(start) {
		return 0
	}
	return now.Sub(start)
}

// TimedScore is the score used by the timed puzzle games:
// max(0, base - moves*movePenalty - seconds*secondPenalty).
func TimedScore(base, moves, movePenalty, seconds, secondPenalty int) int {
	s := base - moves*movePenalty - seconds*secondPenalty
	if s < 0 {
		return 0
	}
	return s
}
