// Package websocket provides the live transport for arcade sessions.
//
// The websocket package implements:
//   - Session-scoped state streams
//   - Player input frames
//   - Connection lifecycle management
//
// Architecture:
//
// A central Hub owns every connection and is driven by one Run goroutine.
// Each client has a read pump and a write pump. Broadcasts are queued on a
// buffered channel and never block the caller, so game clocks can publish
// state without waiting on slow sockets; when the queue is full the update
// is dropped and the next one supersedes it.
//
// Message Protocol:
//
// Clients connect with ?session=<id>.
//   - Incoming: {"action": "ArrowLeft"}
//   - Outgoing: {"session_id": "ab12", "event": "state_update", "state": {...}}
//   - Replies to the sender: "action_result" with the result in data, or
//     "error" with a message
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	hub.SetInputHandler(func(ctx context.Context, id, action string) (any, error) {
//		return svc.Act(ctx, id, action)
//	})
//	go hub.Run(ctx)
//
//	svc := service.NewGameService(ctx, sessions, configs, store,
//		service.WithNotifier(hub.BroadcastUpdate))
package websocket
