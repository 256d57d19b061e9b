package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/arcade/game/engine"
	"github.com/wricardo/mcp-training/arcade/game/snake"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func contains(errs []string, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func TestValidateConfig_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "snake.json", `{"width": 15, "height": 15, "start": {"x": 5, "y": 5}}`)

	result := validateConfig(path)
	if !result.Valid {
		t.Fatalf("Expected valid config, but got errors: %v", result.Errors)
	}
	if result.File != "snake.json" {
		t.Errorf("Expected file name snake.json, got %s", result.File)
	}
	if !contains(result.Errors, "✓ Settings: 3 of") {
		t.Errorf("Expected settings summary, got %v", result.Errors)
	}
	// No input runs the snake into the wall
	if !contains(result.Errors, "ends Over") {
		t.Errorf("Expected simulation to end the game, got %v", result.Errors)
	}
}

func TestValidateConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"invalid json", "tetris.json", `{"rows": 20, invalid json}`, "Invalid JSON"},
		{"unknown field", "memory.json", `{"pairs": 8, "colums": 4}`, `Unknown field "colums"`},
		{"invalid settings", "puzzle.json", `{"size": 1}`, "Invalid settings"},
		{"gap too small", "flippy.json", `{"gap_size": 20}`, "Invalid settings"},
		{"unknown game", "pong.json", `{}`, "Unknown game file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.file, tt.content)

			result := validateConfig(path)
			if result.Valid {
				t.Fatal("Expected invalid result")
			}
			if !contains(result.Errors, tt.wantErr) {
				t.Errorf("Expected %q in %v", tt.wantErr, result.Errors)
			}
		})
	}
}

func TestValidateConfig_MissingFile(t *testing.T) {
	result := validateConfig(filepath.Join(t.TempDir(), "snake.json"))
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
	if !contains(result.Errors, "Failed to read file") {
		t.Errorf("Expected 'Failed to read file' error, got %v", result.Errors)
	}
}

func TestSimulateDefaults(t *testing.T) {
	tests := []struct {
		game engine.GameID
		want engine.Status
	}{
		{engine.Tetris, engine.StatusPlaying},
		{engine.Snake, engine.StatusOver},
		{engine.FlippyBird, engine.StatusOver},
		{engine.Memory, engine.StatusPlaying},
		{engine.Puzzle, engine.StatusPlaying},
	}

	for _, tt := range tests {
		t.Run(string(tt.game), func(t *testing.T) {
			status, err := simulate(tt.game, nil)
			if err != nil {
				t.Fatalf("simulate failed: %v", err)
			}
			if status != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, status)
			}
		})
	}
}

func TestSimulateLongBudget(t *testing.T) {
	cfg := snake.DefaultConfig()
	cfg.Start = engine.Position{X: 0, Y: 10}
	cfg.StartDirection = engine.Right
	cfg.Width = 400

	// The wall is 80s away at 200ms per move
	status, err := simulate(engine.Snake, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if status != engine.StatusPlaying {
		t.Errorf("Expected Playing, got %s", status)
	}
}

func TestValidateDirAndReport(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "tetris.json", `{"rows": 22}`)
	writeConfig(t, dir, "memory.json", `{"pairs": 99}`)

	results, err := validateDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}

	var out bytes.Buffer
	if report(&out, results) {
		t.Error("Expected report to fail with an invalid file")
	}
	text := out.String()
	for _, want := range []string{"✅ VALID", "❌ INVALID", "Some configurations have errors"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in report:\n%s", want, text)
		}
	}
}

func TestRepositoryConfigsAreValid(t *testing.T) {
	if _, err := os.Stat("../configs"); os.IsNotExist(err) {
		t.Skip("configs directory not found")
	}

	results, err := validateDir("../configs")
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if !r.Valid {
			t.Errorf("%s: %v", r.File, r.Errors)
		}
	}
}
