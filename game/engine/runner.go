package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Runner owns a Game and the single tick timer it needs while Playing.
// Ticks and player actions are applied under one mutex, results are
// reported to the sink outside of it.
type Runner struct {
	mu       sync.Mutex
	game     Game
	sched    Scheduler
	sink     StatsSink
	timer    *Timer
	interval time.Duration
	gen      uint64
	clock    func() time.Time
	onChange func(snapshot any)
	ctx      context.Context
	log      zerolog.Logger
}

// RunnerOption customizes a Runner
type RunnerOption func(*Runner)

// WithClock overrides the time source used for inputs
func WithClock(clock func() time.Time) RunnerOption {
	return func(r *Runner) { r.clock = clock }
}

// WithLogger sets the runner logger
func WithLogger(l zerolog.Logger) RunnerOption {
	return func(r *Runner) { r.log = l }
}

// WithOnChange registers a callback invoked with a snapshot after every
// accepted transition
func WithOnChange(fn func(snapshot any)) RunnerOption {
	return func(r *Runner) { r.onChange = fn }
}

// WithContext sets the context passed to the stats sink
func WithContext(ctx context.Context) RunnerOption {
	return func(r *Runner) { r.ctx = ctx }
}

// NewRunner wraps game. sink may be nil.
func NewRunner(game Game, sched Scheduler, sink StatsSink, opts ...RunnerOption) *Runner {
	r := &Runner{
		game:  game,
		sched: sched,
		sink:  sink,
		clock: time.Now,
		ctx:   context.Background(),
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With().Str("game", string(game.ID())).Logger()
	return r
}

// Game returns the wrapped game
func (r *Runner) Game() Game { return r.game }

// Status returns the current lifecycle status
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.Status()
}

// Snapshot returns a copy of the current state
func (r *Runner) Snapshot() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.Snapshot()
}

// Lobby returns the game to the lobby
func (r *Runner) Lobby() bool {
	return r.dispatch(Event{Kind: EventLobby})
}

// Ready resets the game with the player's stored high score
func (r *Runner) Ready(highScore int) bool {
	return r.dispatch(Event{Kind: EventReady, HighScore: highScore})
}

// Start begins play from Ready
func (r *Runner) Start() bool {
	return r.dispatch(Event{Kind: EventStart})
}

// Act applies a normalized player action
func (r *Runner) Act(a Action) bool {
	return r.dispatch(Event{Kind: EventAction, Action: a})
}

// Close cancels the timer. The game state is left as is.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelLocked()
}

// Ticking reports whether a timer is currently owned
func (r *Runner) Ticking() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timer != nil
}

func (r *Runner) dispatch(ev Event) bool {
	return r.apply(ev, 0)
}

// tick applies a clock tick unless the timer that produced it has been
// replaced or cancelled since.
func (r *Runner) tick(gen uint64, now time.Time) {
	r.apply(Event{Kind: EventTick, Now: now}, gen)
}

func (r *Runner) apply(ev Event, gen uint64) bool {
	r.mu.Lock()
	if gen != 0 && (gen != r.gen || r.timer == nil) {
		r.mu.Unlock()
		return false
	}
	if ev.Now.IsZero() {
		ev.Now = r.clock()
	}
	changed := r.game.Dispatch(ev)
	r.syncTimerLocked()
	result, done := r.game.TakeResult()
	var snap any
	if changed && r.onChange != nil {
		snap = r.game.Snapshot()
	}
	r.mu.Unlock()

	if done {
		r.report(result)
	}
	if snap != nil {
		r.onChange(snap)
	}
	return changed
}

// syncTimerLocked keeps exactly one timer alive while Playing at the
// interval the game currently asks for.
func (r *Runner) syncTimerLocked() {
	if r.game.Status() != StatusPlaying {
		r.cancelLocked()
		return
	}
	iv := r.game.TickInterval()
	if iv <= 0 {
		r.cancelLocked()
		return
	}
	if r.timer != nil && iv == r.interval {
		return
	}
	r.cancelLocked()
	r.gen++
	gen := r.gen
	r.interval = iv
	r.timer = r.sched.Start(iv, func(now time.Time) { r.tick(gen, now) })
	r.log.Debug().Dur("interval", iv).Msg("clock started")
}

func (r *Runner) cancelLocked() {
	if r.timer == nil {
		return
	}
	r.sched.Cancel(r.timer)
	r.timer = nil
	r.interval = 0
	r.gen++
}

func (r *Runner) report(result GameResult) {
	r.log.Info().Int("score", result.Score()).Int("duration", result.DurationSeconds()).Msg("game over")
	if r.sink == nil {
		return
	}
	if err := r.sink.ReportResult(r.ctx, r.game.ID(), result); err != nil {
		r.log.Error().Err(err).Msg("failed to report result")
	}
}
