// Command validate checks the per-game configuration files in a configs
// directory (default ../configs). For every <game>.json it checks:
//   - the file name maps to a known game
//   - JSON syntax, and that every key is a known setting
//   - the overlaid settings pass the engine's own validation
//   - a short simulated session on a manual clock runs without errors
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/arcade/game/catalog"
	"github.com/wricardo/mcp-training/arcade/game/config"
	"github.com/wricardo/mcp-training/arcade/game/engine"
)

// simulated is how long the smoke test lets each game run without input
const simulated = 30 * time.Second

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...any) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration JSON file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	game, err := engine.ParseGameID(strings.TrimSuffix(result.File, filepath.Ext(result.File)))
	if err != nil {
		result.fail("Unknown game file: %v", err)
		return result
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	known, err := knownFields(game)
	if err != nil {
		result.fail("%v", err)
		return result
	}
	for _, name := range sortedKeys(fields) {
		if !slices.Contains(known, name) {
			result.fail("Unknown field %q (known: %s)", name, strings.Join(known, ", "))
		}
	}
	if !result.Valid {
		return result
	}

	manager, err := config.NewManager(filepath.Dir(filePath), zerolog.Nop())
	if err != nil {
		result.fail("Failed to open config directory: %v", err)
		return result
	}
	cfg, err := manager.LoadFile(game)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidConfig) {
			result.fail("Invalid settings: %v", err)
		} else {
			result.fail("Failed to load: %v", err)
		}
		return result
	}
	result.info("Settings: %d of %d fields overridden, all valid", len(fields), len(known))

	status, err := simulate(game, cfg)
	if err != nil {
		result.fail("Simulation failed: %v", err)
		return result
	}
	result.info("Simulation: %v without input ends %s", simulated, status)

	return result
}

// knownFields lists the JSON keys of the game's settings
func knownFields(game engine.GameID) ([]string, error) {
	defaults, err := catalog.DefaultConfig(game)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(defaults)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return sortedKeys(fields), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// simulate plays a session with no input on a manual clock and returns the
// status it ends in
func simulate(game engine.GameID, cfg catalog.Config) (engine.Status, error) {
	g, err := catalog.NewGame(game, cfg, rand.New(rand.NewSource(1)))
	if err != nil {
		return "", err
	}

	sched := engine.NewManualScheduler(time.Unix(0, 0))
	reports := 0
	sink := engine.SinkFunc(func(context.Context, engine.GameID, engine.GameResult) error {
		reports++
		return nil
	})
	runner := engine.NewRunner(g, sched, sink, engine.WithClock(sched.Now))
	defer runner.Close()

	if !runner.Ready(0) || !runner.Start() {
		return "", fmt.Errorf("could not start from %s", runner.Status())
	}
	sched.Advance(simulated)

	if _, err := json.Marshal(runner.Snapshot()); err != nil {
		return "", fmt.Errorf("state does not serialize: %w", err)
	}

	status := runner.Status()
	switch {
	case status == engine.StatusOver && reports != 1:
		return "", fmt.Errorf("game ended with %d results reported", reports)
	case status == engine.StatusPlaying && !runner.Ticking():
		return "", errors.New("playing without a clock")
	}
	return status, nil
}

// validateDir validates every *.json file in dir
func validateDir(dir string) ([]ValidationResult, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("finding config files: %w", err)
	}
	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, validateConfig(file))
	}
	return results, nil
}

// report prints results and returns whether all of them are valid
func report(w io.Writer, results []ValidationResult) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Errors {
				fmt.Fprintln(w, "  "+info)
			}
			continue
		}

		fmt.Fprintln(w, "❌ INVALID")
		allValid = false
		for _, err := range result.Errors {
			if !strings.HasPrefix(err, "✓") {
				fmt.Fprintln(w, "  ❌ "+err)
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All configurations are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some configurations have errors")
	}
	return allValid
}

// main validates the configs directory given as the only argument and
// exits with non-zero status if any file is invalid.
func main() {
	cmd := &cli.Command{
		Name:      "validate",
		Usage:     "validate arcade game configuration files",
		ArgsUsage: "[config-dir]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := "../configs"
			if cmd.Args().Present() {
				dir = cmd.Args().First()
			}
			results, err := validateDir(dir)
			if err != nil {
				return err
			}
			if !report(cmd.Root().Writer, results) {
				return cli.Exit("", 1)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
