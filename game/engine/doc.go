// Package engine provides the pieces shared by every arcade game engine.
//
// The engine package defines:
//   - The lifecycle Status (lobby, ready, playing, over) and GameID values
//   - GameResult, the immutable outcome of a finished session, and the
//     ResultSlot that hands it out exactly once
//   - The StatsSink contract results are reported through
//   - The Scheduler abstraction with a wall clock and a manual implementation
//   - The input normalizer that turns raw key and pointer tokens into
//     canonical Actions
//   - Runner, which owns a Game and its tick timer
//
// Core Types:
//
// Each game package (flippy, snake, tetris, memory, puzzle) exposes a pure
// Transition function over its own State and a small Game type implementing
// the Game interface here. Game implementations never start timers or read
// the wall clock: every Event carries Now. The Runner is the only owner of
// a Timer and it holds exactly one while the game is Playing.
//
// Usage:
//
//	game, err := snake.New(snake.DefaultConfig(), rand.New(rand.NewSource(1)))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	runner := engine.NewRunner(game, engine.NewTickerScheduler(), sink)
//	runner.Ready(highScore)
//	runner.Start()
//
//	action, err := engine.Normalize(engine.Snake, "ArrowUp")
//	if err == nil {
//		runner.Act(action)
//	}
//
// Results:
//
// When a game reaches Over it settles its result. The Runner takes it once
// and calls StatsSink.ReportResult outside its lock; later ticks or inputs
// are no-ops and never report again. Restarting with Ready begins a fresh
// session without emitting anything for the abandoned one.
package engine
