package engine

import (
	"context"
	"encoding/json"
	"maps"
	"sort"
)

// GameResult is the final outcome of a completed session. It is immutable
// once created; Counters returns a copy.
type GameResult struct {
	score    int
	duration int
	counters map[string]int
}

// NewResult builds a result, clamping negative values to zero
func NewResult(score, durationSeconds int, counters map[string]int) GameResult {
	if score < 0 {
		score = 0
	}
	if durationSeconds < 0 {
		durationSeconds = 0
	}
	c := make(map[string]int, len(counters))
	maps.Copy(c, counters)
	return GameResult{score: score, duration: durationSeconds, counters: c}
}

// Score returns the final score
func (r GameResult) Score() int { return r.score }

// DurationSeconds returns the play time in seconds
func (r GameResult) DurationSeconds() int { return r.duration }

// Counter returns a named counter, zero when absent
func (r GameResult) Counter(name string) int { return r.counters[name] }

// Counters returns a copy of the game specific counters
func (r GameResult) Counters() map[string]int {
	c := make(map[string]int, len(r.counters))
	maps.Copy(c, r.counters)
	return c
}

// CounterNames returns the counter keys in sorted order
func (r GameResult) CounterNames() []string {
	names := make([]string, 0, len(r.counters))
	for k := range r.counters {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

type resultJSON struct {
	Score           int            `json:"score"`
	DurationSeconds int            `json:"duration_seconds"`
	Counters        map[string]int `json:"counters"`
}

func (r GameResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{Score: r.score, DurationSeconds: r.duration, Counters: r.counters})
}

func (r *GameResult) UnmarshalJSON(data []byte) error {
	var v resultJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = NewResult(v.Score, v.DurationSeconds, v.Counters)
	return nil
}

// ReportPhase tracks result emission for one session
type ReportPhase string

const (
	ReportNone      ReportPhase = "none"
	ReportReporting ReportPhase = "reporting"
	ReportReported  ReportPhase = "reported"
)

// ResultSlot holds the result of a session and guarantees it is handed
// out at most once: None -> Reporting on Settle, Reporting -> Reported on
// Take. Both transitions are one-way.
type ResultSlot struct {
	Phase  ReportPhase `json:"phase"`
	Result *GameResult `json:"result,omitempty"`
}

// Settle records the final result. Only the first call has an effect.
func (s *ResultSlot) Settle(r GameResult) bool {
	if s.Phase != "" && s.Phase != ReportNone {
		return false
	}
	s.Phase = ReportReporting
	s.Result = &r
	return true
}

// Take hands out the settled result exactly once
func (s *ResultSlot) Take() (GameResult, bool) {
	if s.Phase != ReportReporting || s.Result == nil {
		return GameResult{}, false
	}
	s.Phase = ReportReported
	return *s.Result, true
}

// Settled reports whether a result has been recorded
func (s ResultSlot) Settled() bool {
	return s.Phase == ReportReporting || s.Phase == ReportReported
}

// StatsSink receives completed game results. Implementations must
// tolerate concurrent calls from different sessions.
type StatsSink interface {
	ReportResult(ctx context.Context, game GameID, result GameResult) error
}

// SinkFunc adapts a function to StatsSink
type SinkFunc func(ctx context.Context, game GameID, result GameResult) error

func (f SinkFunc) ReportResult(ctx context.Context, game GameID, result GameResult) error {
	return f(ctx, game, result)
}
