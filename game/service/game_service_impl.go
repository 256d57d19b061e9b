package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wricardo/mcp-training/arcade/game/catalog"
	"github.com/wricardo/mcp-training/arcade/game/engine"
	"github.com/wricardo/mcp-training/arcade/stats"
)

// Notifier receives state updates for broadcasting
type Notifier func(update StateUpdate)

// Option customizes the game service
type Option func(*gameServiceImpl)

// WithScheduler replaces the wall clock scheduler
func WithScheduler(s engine.Scheduler, clock func() time.Time) Option {
	return func(g *gameServiceImpl) {
		g.sched = s
		if clock != nil {
			g.clock = clock
		}
	}
}

// WithNotifier registers a state update observer
func WithNotifier(n Notifier) Option {
	return func(g *gameServiceImpl) { g.notify = n }
}

// WithLogger sets the service logger
func WithLogger(l zerolog.Logger) Option {
	return func(g *gameServiceImpl) { g.log = l }
}

// WithSeed makes every new game's randomness derive from seed
func WithSeed(seed int64) Option {
	return func(g *gameServiceImpl) { g.seeds = rand.New(rand.NewSource(seed)) }
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	store    StatsStore
	sched    engine.Scheduler
	clock    func() time.Time
	notify   Notifier
	seeds    *rand.Rand
	log      zerolog.Logger
	ctx      context.Context
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance. store may be nil,
// in which case results are only logged.
func NewGameService(ctx context.Context, sessions SessionManager, configs ConfigManager, store StatsStore, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		store:    store,
		sched:    engine.NewTickerScheduler(),
		clock:    time.Now,
		seeds:    rand.New(rand.NewSource(time.Now().UnixNano())),
		log:      zerolog.Nop(),
		ctx:      ctx,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *gameServiceImpl) ListGames(ctx context.Context) []catalog.Info {
	return catalog.Games()
}

// CreateSession creates a session with a game in the lobby
func (s *gameServiceImpl) CreateSession(ctx context.Context, game, playerID string) (*SessionInfo, error) {
	id, err := engine.ParseGameID(game)
	if err != nil {
		return nil, err
	}
	if playerID == "" {
		playerID = "guest"
	}

	cfg, err := s.configs.LoadConfig(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s config: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seed := s.seeds.Int63()
	sess, err := s.sessions.Create("", id, playerID, func(sessionID string) (*engine.Runner, error) {
		g, err := catalog.NewGame(id, cfg, rand.New(rand.NewSource(seed)))
		if err != nil {
			return nil, err
		}
		return s.newRunner(sessionID, playerID, g), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.log.Info().Str("session", sess.ID).Str("game", string(id)).Str("player", playerID).Msg("session created")
	return s.info(sess), nil
}

func (s *gameServiceImpl) newRunner(sessionID, playerID string, g engine.Game) *engine.Runner {
	opts := []engine.RunnerOption{
		engine.WithClock(s.clock),
		engine.WithContext(s.ctx),
		engine.WithLogger(s.log.With().Str("session", sessionID).Str("player", playerID).Logger()),
	}
	if s.notify != nil {
		gameID := g.ID()
		opts = append(opts, engine.WithOnChange(func(snapshot any) {
			s.notify(StateUpdate{SessionID: sessionID, Game: gameID, State: snapshot})
		}))
	}

	var sink engine.StatsSink
	if s.store != nil {
		sink = s.store.SinkFor(playerID)
	}
	return engine.NewRunner(g, s.sched, sink, opts...)
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	return s.info(sess), nil
}

// ListSessions returns all active sessions, oldest first
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.info(sess))
	}
	return result, nil
}

// DeleteSession stops the session clock and removes it
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return err
	}
	sess.Runner.Close()
	return s.sessions.Delete(sessionID)
}

// Lobby abandons the current round and returns the session to the lobby.
// A result already reported stays reported.
func (s *gameServiceImpl) Lobby(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Runner.Lobby()
	return s.info(sess), nil
}

// Ready resets the game with the player's stored high score
func (s *gameServiceImpl) Ready(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	highScore := 0
	if s.store != nil {
		highScore, err = s.store.HighScore(ctx, sess.PlayerID, sess.Game)
		if err != nil {
			s.log.Warn().Err(err).Str("session", sess.ID).Msg("failed to load high score")
			highScore = 0
		}
	}

	sess.Runner.Ready(highScore)
	return s.info(sess), nil
}

// Start begins play; the game must be Ready
func (s *gameServiceImpl) Start(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Runner.Start() {
		return nil, fmt.Errorf("%w: session %s is %s", ErrNotReady, sess.ID, sess.Runner.Status())
	}
	return s.info(sess), nil
}

// Act normalizes a raw input token and applies it
func (s *gameServiceImpl) Act(ctx context.Context, sessionID, raw string) (*ActionResult, error) {
	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	action, err := engine.Normalize(sess.Game, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}

	accepted := sess.Runner.Act(action)
	result := &ActionResult{
		Accepted: accepted,
		Action:   action,
		Status:   sess.Runner.Status(),
		State:    sess.Runner.Snapshot(),
	}
	if !accepted {
		result.Message = fmt.Sprintf("%s ignored while %s", action.Kind, result.Status)
	}
	return result, nil
}

// GetGameState returns a snapshot of the session's game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (any, error) {
	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Runner.Snapshot(), nil
}

func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

func (s *gameServiceImpl) LoadConfig(ctx context.Context, game string) (catalog.Config, error) {
	id, err := engine.ParseGameID(game)
	if err != nil {
		return nil, err
	}
	return s.configs.LoadConfig(id)
}

func (s *gameServiceImpl) Leaderboard(ctx context.Context, game string, limit int) ([]stats.LeaderboardEntry, error) {
	id, err := engine.ParseGameID(game)
	if err != nil {
		return nil, err
	}
	if s.store == nil {
		return []stats.LeaderboardEntry{}, nil
	}
	return s.store.Leaderboard(ctx, id, limit)
}

func (s *gameServiceImpl) PlayerStats(ctx context.Context, playerID string) (*stats.PlayerStats, error) {
	if s.store == nil {
		return &stats.PlayerStats{PlayerID: playerID, Games: []stats.GameStats{}}, nil
	}
	return s.store.PlayerStats(ctx, playerID)
}

// touch looks up a session and marks it as used
func (s *gameServiceImpl) touch(sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func (s *gameServiceImpl) info(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		Game:           sess.Game,
		PlayerID:       sess.PlayerID,
		Status:         sess.Runner.Status(),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessed(),
		State:          sess.Runner.Snapshot(),
	}
}
