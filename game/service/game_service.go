package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/arcade/game/catalog"
	"github.com/wricardo/mcp-training/arcade/game/engine"
	"github.com/wricardo/mcp-training/arcade/stats"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNotReady        = errors.New("game is not ready")
	ErrInvalidAction   = errors.New("invalid action")
)

// GameService defines all game-related operations
type GameService interface {
	// Catalog
	ListGames(ctx context.Context) []catalog.Info

	// Session Management
	CreateSession(ctx context.Context, game, playerID string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Lobby(ctx context.Context, sessionID string) (*SessionInfo, error)
	Ready(ctx context.Context, sessionID string) (*SessionInfo, error)
	Start(ctx context.Context, sessionID string) (*SessionInfo, error)
	Act(ctx context.Context, sessionID, action string) (*ActionResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (any, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, game string) (catalog.Config, error)

	// Stats
	Leaderboard(ctx context.Context, game string, limit int) ([]stats.LeaderboardEntry, error)
	PlayerStats(ctx context.Context, playerID string) (*stats.PlayerStats, error)
}

// RunnerFactory builds the runner for a session once its id is known
type RunnerFactory func(sessionID string) (*engine.Runner, error)

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, game engine.GameID, playerID string, build RunnerFactory) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(game engine.GameID) (catalog.Config, error)
	ListConfigs() ([]*ConfigInfo, error)
}

// StatsStore is the durable side of result reporting
type StatsStore interface {
	SinkFor(playerID string) engine.StatsSink
	HighScore(ctx context.Context, playerID string, game engine.GameID) (int, error)
	Leaderboard(ctx context.Context, game engine.GameID, limit int) ([]stats.LeaderboardEntry, error)
	PlayerStats(ctx context.Context, playerID string) (*stats.PlayerStats, error)
}

// Session represents an active game session
type Session struct {
	ID        string
	Game      engine.GameID
	PlayerID  string
	Runner    *engine.Runner
	CreatedAt time.Time

	mu           sync.Mutex
	lastAccessed time.Time
}

// NewSession creates a session last accessed at its creation time
func NewSession(id string, game engine.GameID, playerID string, runner *engine.Runner, now time.Time) *Session {
	return &Session{
		ID:           id,
		Game:         game,
		PlayerID:     playerID,
		Runner:       runner,
		CreatedAt:    now,
		lastAccessed: now,
	}
}

// Touch records an access at t
func (s *Session) Touch(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccessed = t
}

// LastAccessed returns the time of the most recent access
func (s *Session) LastAccessed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccessed
}
