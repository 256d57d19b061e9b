// Package config provides per-game tuning for the arcade.
//
// The config package handles:
//   - Loading game configurations from JSON files
//   - Falling back to built-in defaults
//   - Validation through each game's Config.Validate
//   - Caching and saving
//
// Configuration Format:
//
// Each game reads one file named after its slug from the config directory:
//
//	configs/tetris.json
//	configs/snake.json
//	configs/flippy.json
//	configs/memory.json
//	configs/puzzle.json
//
// A file is overlaid on the game's defaults, so it only needs the fields it
// changes:
//
//	{"width": 12, "height": 12, "start": {"x": 6, "y": 6}}
//
// Usage:
//
//	manager, err := config.NewManager("configs", logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cfg, err := manager.LoadConfig(engine.Snake)
//
//	// Every game with where its config came from
//	configs, err := manager.ListConfigs()
//
// Loaded configs are shared between sessions and must be treated as read
// only. Call RefreshCache after editing files on disk.
package config
