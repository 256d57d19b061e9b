package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/wricardo/mcp-training/arcade/game/engine"
	"github.com/wricardo/mcp-training/arcade/game/service"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 256)}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if len(hub.sessions["test-session"]) != 1 {
		t.Errorf("Expected 1 client in session, got %d", len(hub.sessions["test-session"]))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("Expected send channel to be closed")
	}

	// A second unregister is a no-op.
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	client1 := newTestClient(hub, "multi")
	client2 := newTestClient(hub, "multi")

	hub.registerClient(client1)
	hub.registerClient(client2)
	hub.unregisterClient(client1)

	if len(hub.sessions["multi"]) != 1 || !hub.sessions["multi"][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastUpdate(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	watcher := newTestClient(hub, "s1")
	other := newTestClient(hub, "s2")
	hub.registerClient(watcher)
	hub.registerClient(other)

	hub.BroadcastUpdate(service.StateUpdate{
		SessionID: "s1",
		Game:      engine.Snake,
		State:     map[string]int{"score": 30},
	})
	hub.broadcastMessage(<-hub.broadcast)

	select {
	case data := <-watcher.send:
		var message struct {
			SessionID string         `json:"session_id"`
			Event     string         `json:"event"`
			State     map[string]int `json:"state"`
		}
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.SessionID != "s1" || message.Event != EventState {
			t.Errorf("Unexpected message %+v", message)
		}
		if message.State["score"] != 30 {
			t.Errorf("State not correctly transmitted: %v", message.State)
		}
	default:
		t.Fatal("No message queued for watcher")
	}

	if len(other.send) != 0 {
		t.Error("Clients of other sessions must not receive the update")
	}
}

func TestHubBroadcastDropsWhenFull(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	for i := 0; i < broadcastBuffer+10; i++ {
		hub.BroadcastEvent("s", "tick", i)
	}
	if len(hub.broadcast) != broadcastBuffer {
		t.Errorf("Expected %d queued messages, got %d", broadcastBuffer, len(hub.broadcast))
	}
}

func TestHubReplyAddressedToSender(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	sender := newTestClient(hub, "s")
	peer := newTestClient(hub, "s")
	hub.registerClient(sender)
	hub.registerClient(peer)

	hub.SetInputHandler(func(ctx context.Context, sessionID, action string) (any, error) {
		return nil, errors.New("nope")
	})
	sender.handleInput([]byte(`{"action": "up"}`))
	hub.broadcastMessage(<-hub.broadcast)

	if len(peer.send) != 0 {
		t.Error("Reply must only reach the sender")
	}
	var reply Message
	if err := json.Unmarshal(<-sender.send, &reply); err != nil {
		t.Fatal(err)
	}
	if reply.Event != EventError || reply.Error != "nope" {
		t.Errorf("Unexpected reply %+v", reply)
	}
}

func startTestServer(t *testing.T, hub *Hub) string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	t.Cleanup(server.Close)

	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func waitForClients(t *testing.T, hub *Hub, sessionID string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount(sessionID) != want {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %d clients in %s, got %d", want, sessionID, hub.ClientCount(sessionID))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebSocketStateStream(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	wsURL := startTestServer(t, hub)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?session=ab12", nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()
	waitForClients(t, hub, "ab12", 1)

	hub.BroadcastUpdate(service.StateUpdate{SessionID: "ab12", Game: engine.Tetris, State: "board"})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var message Message
	if err := conn.ReadJSON(&message); err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}
	if message.Event != EventState || message.State != "board" {
		t.Errorf("Unexpected message %+v", message)
	}

	conn.Close()
	waitForClients(t, hub, "ab12", 0)
}

func TestWebSocketInputFrames(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	got := make(chan string, 1)
	hub.SetInputHandler(func(ctx context.Context, sessionID, action string) (any, error) {
		got <- sessionID + ":" + action
		return map[string]bool{"accepted": true}, nil
	})
	wsURL := startTestServer(t, hub)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?session=cd34", nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()
	waitForClients(t, hub, "cd34", 1)

	if err := conn.WriteJSON(Input{Action: "ArrowLeft"}); err != nil {
		t.Fatal(err)
	}

	select {
	case call := <-got:
		if call != "cd34:ArrowLeft" {
			t.Errorf("Unexpected handler call %q", call)
		}
	case <-time.After(time.Second):
		t.Fatal("Input handler was not called")
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var reply struct {
		Event string          `json:"event"`
		Data  map[string]bool `json:"data"`
	}
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatal(err)
	}
	if reply.Event != EventResult || !reply.Data["accepted"] {
		t.Errorf("Unexpected reply %+v", reply)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatal(err)
	}
	var bad Message
	if err := conn.ReadJSON(&bad); err != nil {
		t.Fatal(err)
	}
	if bad.Event != EventError {
		t.Errorf("Expected error event for malformed frame, got %+v", bad)
	}
}
