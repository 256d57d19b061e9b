package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/wricardo/mcp-training/arcade/api"
	"github.com/wricardo/mcp-training/arcade/game/config"
	"github.com/wricardo/mcp-training/arcade/game/engine"
	"github.com/wricardo/mcp-training/arcade/game/memory"
	"github.com/wricardo/mcp-training/arcade/game/puzzle"
	"github.com/wricardo/mcp-training/arcade/game/service"
	"github.com/wricardo/mcp-training/arcade/game/session"
	"github.com/wricardo/mcp-training/arcade/stats"
)

func newArcade(t *testing.T) (*httptest.Server, *engine.ManualScheduler, *stats.Store) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "puzzle.json"), []byte(`{"size": 3}`), 0644); err != nil {
		t.Fatal(err)
	}

	configs, err := config.NewManager(dir, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	store, err := stats.Open(filepath.Join(dir, "stats.db"), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	sched := engine.NewManualScheduler(time.Unix(1_700_000_000, 0))
	svc := service.NewGameService(context.Background(), session.NewManager(), configs, store,
		service.WithScheduler(sched, sched.Now), service.WithSeed(5))

	server := httptest.NewServer(api.NewServer(svc, nil))
	t.Cleanup(server.Close)
	return server, sched, store
}

func TestPlayMemory(t *testing.T) {
	server, sched, store := newArcade(t)
	client := NewClient(server.URL + "/")
	pauses := 0
	client.pause = func() {
		pauses++
		sched.Advance(1100 * time.Millisecond)
	}

	out, err := client.Play(context.Background(), engine.Memory, "robo")
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	pairs := memory.DefaultConfig().Pairs
	if out.Moves < pairs || out.Moves > 2*pairs {
		t.Errorf("Expected between %d and %d moves, got %d", pairs, 2*pairs, out.Moves)
	}
	if out.Score <= 0 {
		t.Errorf("Expected a positive score, got %d", out.Score)
	}
	if out.Moves > pairs && pauses == 0 {
		t.Error("Expected the bot to wait out at least one mismatch")
	}

	best, err := store.HighScore(context.Background(), "robo", engine.Memory)
	if err != nil {
		t.Fatal(err)
	}
	if best != out.Score {
		t.Errorf("Expected recorded high score %d, got %d", out.Score, best)
	}
}

func TestPlayPuzzle(t *testing.T) {
	server, _, store := newArcade(t)
	client := NewClient(server.URL)

	out, err := client.Play(context.Background(), engine.Puzzle, "robo")
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if out.Moves == 0 || out.Score <= 0 {
		t.Errorf("Unexpected outcome: %+v", out)
	}

	best, err := store.HighScore(context.Background(), "robo", engine.Puzzle)
	if err != nil {
		t.Fatal(err)
	}
	if best != out.Score {
		t.Errorf("Expected recorded high score %d, got %d", out.Score, best)
	}
}

func TestPlayUnsupportedGame(t *testing.T) {
	server, _, _ := newArcade(t)
	client := NewClient(server.URL)

	_, err := client.Play(context.Background(), engine.Snake, "robo")
	if err == nil || !strings.Contains(err.Error(), "cannot play Snake") {
		t.Errorf("Expected unsupported game error, got %v", err)
	}
}

func TestPlayServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Play(context.Background(), engine.Memory, "robo")
	if err == nil || !strings.Contains(err.Error(), "create session") || !strings.Contains(err.Error(), "boom") {
		t.Errorf("Expected create session error, got %v", err)
	}
}

func TestSolve(t *testing.T) {
	tests := []struct {
		name  string
		tiles puzzle.Tiles
		size  int
		want  int
	}{
		{"solved", puzzle.Tiles{1, 2, 3, 4, 5, 6, 7, 8, 0}, 3, 0},
		{"one slide", puzzle.Tiles{1, 2, 3, 4, 5, 6, 7, 0, 8}, 3, 1},
		{"two slides", puzzle.Tiles{1, 2, 3, 4, 5, 6, 0, 7, 8}, 3, 2},
		{"2x2", puzzle.Tiles{0, 1, 3, 2}, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := solve(tt.tiles, tt.size, searchLimit)
			if err != nil {
				t.Fatalf("solve failed: %v", err)
			}
			if len(path) != tt.want {
				t.Fatalf("Expected %d slides, got %d: %v", tt.want, len(path), path)
			}

			// Replaying the clicks must reach the goal
			board := append(puzzle.Tiles(nil), tt.tiles...)
			for _, p := range path {
				e := puzzle.EmptyIndex(board)
				i := p.Y*tt.size + p.X
				if !engine.Adjacent(p, engine.Position{X: e % tt.size, Y: e / tt.size}) {
					t.Fatalf("Click %v is not next to the blank", p)
				}
				board[e], board[i] = board[i], board[e]
			}
			if !puzzle.Solved(board) {
				t.Errorf("Board not solved after replay: %v", board)
			}
		})
	}
}

func TestSolveUnsolvable(t *testing.T) {
	// Two tiles swapped, odd parity
	if _, err := solve(puzzle.Tiles{2, 1, 3, 4, 5, 6, 7, 8, 0}, 3, searchLimit); err != errUnsolved {
		t.Errorf("Expected errUnsolved, got %v", err)
	}
	if _, err := solve(puzzle.Tiles{8, 6, 7, 2, 5, 4, 3, 0, 1}, 3, 100); err != errUnsolved {
		t.Errorf("Expected errUnsolved with a tiny limit, got %v", err)
	}
}

func TestNextPair(t *testing.T) {
	cards := []memory.Card{
		{ID: 0}, {ID: 1}, {ID: 2}, {ID: 3},
	}
	seen := map[int]int{0: 4, 2: 7}

	first, second := nextPair(cards, seen)
	if first != 1 || second != -1 {
		t.Errorf("Expected unseen card 1, got %d,%d", first, second)
	}
	if got := partner(cards, seen, 0); got != 1 {
		t.Errorf("Expected fallback to unseen card 1, got %d", got)
	}

	seen[3] = 4
	first, second = nextPair(cards, seen)
	if first != 0 || second != 3 {
		t.Errorf("Expected known pair 0,3, got %d,%d", first, second)
	}
	if got := partner(cards, seen, 3); got != 0 {
		t.Errorf("Expected twin 0, got %d", got)
	}

	cards[0].Matched, cards[3].Matched = true, true
	seen[1] = 7
	first, second = nextPair(cards, seen)
	if first != 1 || second != 2 {
		t.Errorf("Expected known pair 1,2, got %d,%d", first, second)
	}
}
