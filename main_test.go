package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/wricardo/mcp-training/arcade/game/engine"
	"github.com/wricardo/mcp-training/arcade/stats"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Arcade" {
		t.Errorf("Expected app name Arcade, got %s", AppName)
	}
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(context.Background(), append([]string{"arcade"}, args...))
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runApp(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "Arcade v"+Version) {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestCommandsRegistered(t *testing.T) {
	app := newApp()
	for _, name := range []string{"serve", "mcp", "play", "export", "version"} {
		if app.Command(name) == nil {
			t.Errorf("Expected command %s", name)
		}
	}
	if app.Command("stdio-mcp") == nil {
		t.Error("Expected stdio-mcp alias")
	}
}

func TestPlayRequiresKnownGame(t *testing.T) {
	if _, err := runApp(t, "play"); err == nil {
		t.Error("Expected error without a game")
	}
	if _, err := runApp(t, "play", "pong"); err == nil {
		t.Error("Expected error for unknown game")
	}
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "stats.db")

	store, err := stats.Open(db, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	store.Record(ctx, "ann", engine.Memory, engine.NewResult(9000, 40, map[string]int{"won": 1}))
	store.Record(ctx, "ann", engine.Snake, engine.NewResult(20, 15, nil))
	store.Close()

	out := filepath.Join(dir, "memory.parquet")
	stdout, err := runApp(t, "export", "--game", "memory", "--db", db, "--out", out)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(stdout, "Exported 1 Memory results") {
		t.Errorf("Unexpected output %q", stdout)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("Expected parquet file: %v", err)
	}

	if _, err := runApp(t, "export", "--game", "pong", "--db", db); err == nil {
		t.Error("Expected error for unknown game")
	}
}

func TestStackServesAPIAndMCP(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := newStack(ctx, dir, filepath.Join(dir, "data", "stats.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("newStack failed: %v", err)
	}
	defer st.Close()
	go st.hub.Run(ctx)

	srv := httptest.NewUnstartedServer(nil)
	srv.Config.Handler = st.handler("http://"+srv.Listener.Addr().String(), zerolog.Nop())
	srv.Start()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 from health, got %d", resp.StatusCode)
	}

	body := `{"jsonrpc":"2.0","id":1,"method":"ping"}`
	resp, err = http.Post(srv.URL+"/mcp", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 from /mcp, got %d", resp.StatusCode)
	}

	if !apiReachable(ctx, srv.URL) {
		t.Error("Expected API to be reachable")
	}
}

func TestAPIReachableDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if apiReachable(context.Background(), url) {
		t.Error("Expected closed server to be unreachable")
	}
}
