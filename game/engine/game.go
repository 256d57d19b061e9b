package engine

import "time"

// EventKind enumerates what can drive a transition
type EventKind string

const (
	EventLobby  EventKind = "lobby"
	EventReady  EventKind = "ready"
	EventStart  EventKind = "start"
	EventTick   EventKind = "tick"
	EventAction EventKind = "action"
)

// Event is the single input to an engine transition. Now carries the
// clock reading so engines never consult wall time themselves.
type Event struct {
	Kind      EventKind
	Now       time.Time
	Action    Action
	HighScore int
}

// Game is a running engine: a pure transition function over a private
// state value. Implementations are not safe for concurrent use; Runner
// serializes access.
type Game interface {
	ID() GameID
	// Dispatch applies ev and reports whether it changed the state.
	Dispatch(ev Event) bool
	Status() Status
	// TickInterval is the clock period while Playing; zero means no clock.
	TickInterval() time.Duration
	// TakeResult returns the final result the first time it is called
	// after the game reaches Over.
	TakeResult() (GameResult, bool)
	// Snapshot returns a deep copy of the current state.
	Snapshot() any
}
