package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/arcade/game/catalog"
	"github.com/wricardo/mcp-training/arcade/game/engine"
	"github.com/wricardo/mcp-training/arcade/game/snake"
	"github.com/wricardo/mcp-training/arcade/stats"
)

// mockSessionManager is a minimal map-backed SessionManager
type mockSessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	next     int
}

func newMockSessionManager() *mockSessionManager {
	return &mockSessionManager{sessions: make(map[string]*Session)}
}

func (m *mockSessionManager) Create(id string, game engine.GameID, playerID string, build RunnerFactory) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == "" {
		m.next++
		id = "s" + strings.Repeat("x", m.next)
	}
	runner, err := build(id)
	if err != nil {
		return nil, err
	}
	s := NewSession(id, game, playerID, runner, time.Unix(int64(m.next), 0))
	m.sessions[id] = s
	return s, nil
}

func (m *mockSessionManager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *mockSessionManager) List() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

func (m *mockSessionManager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *mockSessionManager) UpdateLastAccessed(id string) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	s.Touch(time.Now())
	return nil
}

// mockConfigManager serves catalog defaults unless LoadConfigFunc is set
type mockConfigManager struct {
	LoadConfigFunc func(game engine.GameID) (catalog.Config, error)
}

func (m *mockConfigManager) LoadConfig(game engine.GameID) (catalog.Config, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(game)
	}
	return catalog.DefaultConfig(game)
}

func (m *mockConfigManager) ListConfigs() ([]*ConfigInfo, error) { return nil, nil }

type reported struct {
	player string
	game   engine.GameID
	result engine.GameResult
}

// mockStatsStore records every reported result
type mockStatsStore struct {
	mu        sync.Mutex
	highScore int
	results   []reported
}

func (m *mockStatsStore) SinkFor(playerID string) engine.StatsSink {
	return engine.SinkFunc(func(ctx context.Context, game engine.GameID, r engine.GameResult) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.results = append(m.results, reported{player: playerID, game: game, result: r})
		return nil
	})
}

func (m *mockStatsStore) HighScore(ctx context.Context, playerID string, game engine.GameID) (int, error) {
	return m.highScore, nil
}

func (m *mockStatsStore) Leaderboard(ctx context.Context, game engine.GameID, limit int) ([]stats.LeaderboardEntry, error) {
	return []stats.LeaderboardEntry{{PlayerID: "alice", HighScore: m.highScore}}, nil
}

func (m *mockStatsStore) PlayerStats(ctx context.Context, playerID string) (*stats.PlayerStats, error) {
	return &stats.PlayerStats{PlayerID: playerID}, nil
}

func (m *mockStatsStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.results)
}

func newTestService(t *testing.T) (GameService, *engine.ManualScheduler, *mockStatsStore) {
	t.Helper()
	sched := engine.NewManualScheduler(time.Unix(1_700_000_000, 0))
	store := &mockStatsStore{highScore: 42}
	svc := NewGameService(context.Background(), newMockSessionManager(), &mockConfigManager{}, store,
		WithScheduler(sched, sched.Now),
		WithSeed(7),
	)
	return svc, sched, store
}

func TestGameService_CreateSession(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	t.Run("known game in any spelling", func(t *testing.T) {
		for _, name := range []string{"snake", "Tetris", "flippy-bird", "MEMORY", "puzzle"} {
			info, err := svc.CreateSession(ctx, name, "alice")
			if err != nil {
				t.Fatalf("CreateSession(%q) failed: %v", name, err)
			}
			if info.Status != engine.StatusLobby {
				t.Errorf("%s: expected lobby, got %s", name, info.Status)
			}
			if info.State == nil {
				t.Errorf("%s: expected state snapshot", name)
			}
		}
	})

	t.Run("unknown game", func(t *testing.T) {
		_, err := svc.CreateSession(ctx, "pong", "alice")
		if !errors.Is(err, engine.ErrUnknownGame) {
			t.Errorf("Expected ErrUnknownGame, got %v", err)
		}
	})

	t.Run("guest player", func(t *testing.T) {
		info, err := svc.CreateSession(ctx, "snake", "")
		if err != nil {
			t.Fatal(err)
		}
		if info.PlayerID != "guest" {
			t.Errorf("Expected guest player, got %q", info.PlayerID)
		}
	})

	t.Run("config failure", func(t *testing.T) {
		boom := errors.New("boom")
		svc := NewGameService(context.Background(), newMockSessionManager(), &mockConfigManager{
			LoadConfigFunc: func(engine.GameID) (catalog.Config, error) { return nil, boom },
		}, nil)
		if _, err := svc.CreateSession(ctx, "snake", "alice"); !errors.Is(err, boom) {
			t.Errorf("Expected wrapped config error, got %v", err)
		}
	})
}

func TestGameService_Lifecycle(t *testing.T) {
	svc, sched, store := newTestService(t)
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "snake", "alice")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Start(ctx, info.ID); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Expected ErrNotReady from lobby, got %v", err)
	}

	ready, err := svc.Ready(ctx, info.ID)
	if err != nil {
		t.Fatal(err)
	}
	if ready.Status != engine.StatusReady {
		t.Fatalf("Expected ready, got %s", ready.Status)
	}

	started, err := svc.Start(ctx, info.ID)
	if err != nil {
		t.Fatal(err)
	}
	if started.Status != engine.StatusPlaying {
		t.Fatalf("Expected playing, got %s", started.Status)
	}
	if sched.Active() != 1 {
		t.Fatalf("Expected one session clock, got %d", sched.Active())
	}

	res, err := svc.Act(ctx, info.ID, "ArrowUp")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Accepted || res.Action.Kind != engine.ActUp {
		t.Errorf("Expected accepted UP, got %+v", res)
	}

	// Reversal into the body is rejected without error.
	res, err = svc.Act(ctx, info.ID, "ArrowLeft")
	if err != nil {
		t.Fatal(err)
	}
	if res.Accepted || res.Message == "" {
		t.Errorf("Expected rejected reversal with message, got %+v", res)
	}

	if _, err := svc.Act(ctx, info.ID, "jump"); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("Expected ErrInvalidAction for JUMP in snake, got %v", err)
	}

	// Heading up from the middle of a 20x20 board hits the wall well
	// within ten seconds.
	sched.Advance(10 * time.Second)

	got, err := svc.GetSession(ctx, info.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != engine.StatusOver {
		t.Fatalf("Expected over, got %s", got.Status)
	}
	if sched.Active() != 0 {
		t.Errorf("Expected clock cancelled after game over, got %d", sched.Active())
	}
	if store.count() != 1 {
		t.Fatalf("Expected one reported result, got %d", store.count())
	}
	if store.results[0].player != "alice" || store.results[0].game != engine.Snake {
		t.Errorf("Unexpected report: %+v", store.results[0])
	}

	// Further ticks and inputs never report again.
	sched.Advance(10 * time.Second)
	svc.Act(ctx, info.ID, "ArrowLeft")
	if store.count() != 1 {
		t.Errorf("Expected result to be reported once, got %d", store.count())
	}

	// Play again resets without reporting.
	if _, err := svc.Ready(ctx, info.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Start(ctx, info.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Ready(ctx, info.ID); err != nil {
		t.Fatal(err)
	}
	if store.count() != 1 {
		t.Errorf("Restart must not report, got %d results", store.count())
	}
	if sched.Active() != 0 {
		t.Errorf("Expected no clock after restart, got %d", sched.Active())
	}
}

func TestGameService_Lobby(t *testing.T) {
	svc, sched, store := newTestService(t)
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "snake", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Ready(ctx, info.ID); err != nil {
		t.Fatal(err)
	}

	lobby, err := svc.Lobby(ctx, info.ID)
	if err != nil {
		t.Fatal(err)
	}
	if lobby.Status != engine.StatusLobby {
		t.Fatalf("Expected lobby, got %s", lobby.Status)
	}
	if st := lobby.State.(*snake.State); st.HighScore != 42 {
		t.Errorf("Expected high score 42 kept in the lobby, got %d", st.HighScore)
	}
	if _, err := svc.Start(ctx, info.ID); !errors.Is(err, ErrNotReady) {
		t.Errorf("Expected ErrNotReady starting from the lobby, got %v", err)
	}

	// Abandoning a running round stops its clock and reports nothing
	svc.Ready(ctx, info.ID)
	if _, err := svc.Start(ctx, info.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Lobby(ctx, info.ID); err != nil {
		t.Fatal(err)
	}
	if sched.Active() != 0 {
		t.Errorf("Expected no clock in the lobby, got %d", sched.Active())
	}
	sched.Advance(time.Minute)
	if store.count() != 0 {
		t.Errorf("Expected no reported results, got %d", store.count())
	}

	if _, err := svc.Lobby(ctx, "nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestGameService_Notifier(t *testing.T) {
	sched := engine.NewManualScheduler(time.Unix(0, 0))
	var mu sync.Mutex
	var updates []StateUpdate
	svc := NewGameService(context.Background(), newMockSessionManager(), &mockConfigManager{}, nil,
		WithScheduler(sched, sched.Now),
		WithNotifier(func(u StateUpdate) {
			mu.Lock()
			updates = append(updates, u)
			mu.Unlock()
		}),
	)
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "tetris", "bob")
	if err != nil {
		t.Fatal(err)
	}
	svc.Ready(ctx, info.ID)
	svc.Start(ctx, info.ID)
	svc.Act(ctx, info.ID, "ArrowLeft")

	mu.Lock()
	defer mu.Unlock()
	if len(updates) < 3 {
		t.Fatalf("Expected at least 3 updates, got %d", len(updates))
	}
	for _, u := range updates {
		if u.SessionID != info.ID || u.Game != engine.Tetris || u.State == nil {
			t.Errorf("Unexpected update %+v", u)
		}
	}
}

func TestGameService_SessionNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	calls := map[string]func() error{
		"GetSession": func() error { _, err := svc.GetSession(ctx, "nope"); return err },
		"Ready":      func() error { _, err := svc.Ready(ctx, "nope"); return err },
		"Start":      func() error { _, err := svc.Start(ctx, "nope"); return err },
		"Act":        func() error { _, err := svc.Act(ctx, "nope", "up"); return err },
		"State":      func() error { _, err := svc.GetGameState(ctx, "nope"); return err },
		"Delete":     func() error { return svc.DeleteSession(ctx, "nope") },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			if err := call(); !errors.Is(err, ErrSessionNotFound) {
				t.Errorf("Expected ErrSessionNotFound, got %v", err)
			}
		})
	}
}

func TestGameService_DeleteSessionStopsClock(t *testing.T) {
	svc, sched, store := newTestService(t)
	ctx := context.Background()

	info, _ := svc.CreateSession(ctx, "flippy", "carol")
	svc.Ready(ctx, info.ID)
	svc.Start(ctx, info.ID)
	if sched.Active() != 1 {
		t.Fatalf("Expected one clock, got %d", sched.Active())
	}

	if err := svc.DeleteSession(ctx, info.ID); err != nil {
		t.Fatal(err)
	}
	if sched.Active() != 0 {
		t.Errorf("Expected clock cancelled, got %d", sched.Active())
	}
	sched.Advance(time.Minute)
	if store.count() != 0 {
		t.Errorf("Deleted session must not report, got %d", store.count())
	}

	sessions, _ := svc.ListSessions(ctx)
	if len(sessions) != 0 {
		t.Errorf("Expected no sessions, got %d", len(sessions))
	}
}

func TestGameService_StatsPassthrough(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	board, err := svc.Leaderboard(ctx, "snake", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(board) != 1 || board[0].HighScore != 42 {
		t.Errorf("Unexpected leaderboard %+v", board)
	}
	if _, err := svc.Leaderboard(ctx, "pong", 5); !errors.Is(err, engine.ErrUnknownGame) {
		t.Errorf("Expected ErrUnknownGame, got %v", err)
	}

	ps, err := svc.PlayerStats(ctx, "alice")
	if err != nil || ps.PlayerID != "alice" {
		t.Errorf("Unexpected player stats %+v, %v", ps, err)
	}

	noStore := NewGameService(ctx, newMockSessionManager(), &mockConfigManager{}, nil)
	board, err = noStore.Leaderboard(ctx, "tetris", 5)
	if err != nil || len(board) != 0 {
		t.Errorf("Expected empty leaderboard without a store, got %+v, %v", board, err)
	}
}

func TestGameService_ListGames(t *testing.T) {
	svc, _, _ := newTestService(t)
	games := svc.ListGames(context.Background())
	if len(games) != len(engine.AllGames) {
		t.Fatalf("Expected %d games, got %d", len(engine.AllGames), len(games))
	}
}

func TestGameService_ConcurrentSessionReads(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "memory", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Ready(ctx, info.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Start(ctx, info.ID); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8*50*3)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if _, err := svc.GetSession(ctx, info.ID); err != nil {
					errs <- err
				}
				if _, err := svc.ListSessions(ctx); err != nil {
					errs <- err
				}
				if _, err := svc.Act(ctx, info.ID, fmt.Sprintf("select:%d", (g+i)%16)); err != nil {
					errs <- err
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error: %v", err)
	}
	got, err := svc.GetSession(ctx, info.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.LastAccessedAt.Before(got.CreatedAt) {
		t.Errorf("Last access %v before creation %v", got.LastAccessedAt, got.CreatedAt)
	}
}
