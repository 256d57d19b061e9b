package stats

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"

	"github.com/wricardo/mcp-training/arcade/game/engine"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "stats.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAggregates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	results := []engine.GameResult{
		engine.NewResult(300, 60, map[string]int{"lines_cleared": 2, "level": 1}),
		engine.NewResult(900, 120, map[string]int{"lines_cleared": 5, "level": 3}),
		engine.NewResult(100, 30, map[string]int{"lines_cleared": 1, "level": 1}),
	}
	for _, r := range results {
		if _, err := s.Record(ctx, "ana", engine.Tetris, r); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	hs, err := s.HighScore(ctx, "ana", engine.Tetris)
	if err != nil || hs != 900 {
		t.Fatalf("Expected high score 900, got %d (%v)", hs, err)
	}

	ps, err := s.PlayerStats(ctx, "ana")
	if err != nil {
		t.Fatalf("PlayerStats failed: %v", err)
	}
	if ps.TotalGames != 3 || ps.TotalPlaytime != 210 {
		t.Errorf("Expected 3 games and 210s, got %d and %d", ps.TotalGames, ps.TotalPlaytime)
	}
	if len(ps.Games) != 1 || ps.Games[0].Counters["lines_cleared"] != 8 {
		t.Errorf("Expected 8 lines cleared in total, got %+v", ps.Games)
	}
	if ps.Games[0].BestTime != nil {
		t.Error("Best time only applies to won sessions")
	}
}

func TestHighScoreUnplayed(t *testing.T) {
	s := openTestStore(t)
	hs, err := s.HighScore(context.Background(), "nobody", engine.Snake)
	if err != nil || hs != 0 {
		t.Errorf("Expected 0, nil; got %d, %v", hs, err)
	}
}

func TestBestTimeAndFavorite(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sink := s.SinkFor("bo")

	sink.ReportResult(ctx, engine.Memory, engine.NewResult(9800, 90, map[string]int{"won": 1, "moves": 11}))
	sink.ReportResult(ctx, engine.Memory, engine.NewResult(9850, 60, map[string]int{"won": 1, "moves": 9}))
	sink.ReportResult(ctx, engine.Memory, engine.NewResult(9700, 200, map[string]int{"won": 1, "moves": 10}))
	sink.ReportResult(ctx, engine.Snake, engine.NewResult(50, 20, map[string]int{"apples_eaten": 5}))

	ps, err := s.PlayerStats(ctx, "bo")
	if err != nil {
		t.Fatalf("PlayerStats failed: %v", err)
	}
	if ps.FavoriteGame != engine.Memory {
		t.Errorf("Expected favorite Memory, got %s", ps.FavoriteGame)
	}
	for _, g := range ps.Games {
		if g.Game == engine.Memory {
			if g.BestTime == nil || *g.BestTime != 60 {
				t.Errorf("Expected best time 60, got %v", g.BestTime)
			}
			if g.HighScore != 9850 {
				t.Errorf("Expected high score 9850, got %d", g.HighScore)
			}
		}
	}
}

func TestLeaderboard(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	scores := map[string]int{"a": 10, "b": 40, "c": 30, "d": 20}
	for player, score := range scores {
		if _, err := s.Record(ctx, player, engine.FlippyBird, engine.NewResult(score, 5, nil)); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	s.Record(ctx, "z", engine.Snake, engine.NewResult(1000, 5, nil))

	top, err := s.Leaderboard(ctx, engine.FlippyBird, 3)
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}
	want := []string{"b", "c", "d"}
	if len(top) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(top))
	}
	for i, e := range top {
		if e.PlayerID != want[i] || e.Rank != i+1 {
			t.Errorf("Position %d: expected %s, got %+v", i+1, want[i], e)
		}
	}
}

func TestConcurrentSinks(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.SinkFor("p").ReportResult(ctx, engine.Puzzle, engine.NewResult(1, 1, nil)); err != nil {
				t.Errorf("ReportResult failed: %v", err)
			}
		}()
	}
	wg.Wait()

	ps, err := s.PlayerStats(ctx, "p")
	if err != nil {
		t.Fatalf("PlayerStats failed: %v", err)
	}
	if ps.TotalGames != 20 {
		t.Errorf("Expected 20 games, got %d", ps.TotalGames)
	}
}

func TestExportParquet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	s.Record(ctx, "a", engine.Snake, engine.NewResult(30, 12, map[string]int{"apples_eaten": 3}))
	s.Record(ctx, "b", engine.Tetris, engine.NewResult(100, 50, nil))

	out := filepath.Join(t.TempDir(), "export", "results.parquet")
	n, err := s.ExportParquet(ctx, out, engine.Snake, time.Time{})
	if err != nil {
		t.Fatalf("ExportParquet failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("Expected 1 exported row, got %d", n)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("Open export failed: %v", err)
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		t.Fatal(err)
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	reader := parquet.NewGenericReader[ResultRow](pf)
	defer reader.Close()

	rows := make([]ResultRow, 2)
	got, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		t.Fatalf("Read failed: %v", err)
	}
	if got != 1 || rows[0].PlayerID != "a" || rows[0].Score != 30 || rows[0].Game != "Snake" {
		t.Errorf("Unexpected rows %+v", rows[:got])
	}
}
