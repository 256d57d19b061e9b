// Command analyze prints quick, human-readable heuristics about the game
// configurations in the configs directory: board sizes, speed curves,
// score bounds and physics reach. For the sliding puzzle it samples shuffled
// boards and checks each one is solvable, by parity and, on boards up to
// 3x3, with a breadth-first solver.
package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/arcade/game/catalog"
	"github.com/wricardo/mcp-training/arcade/game/config"
	"github.com/wricardo/mcp-training/arcade/game/engine"
	"github.com/wricardo/mcp-training/arcade/game/flippy"
	"github.com/wricardo/mcp-training/arcade/game/memory"
	"github.com/wricardo/mcp-training/arcade/game/puzzle"
	"github.com/wricardo/mcp-training/arcade/game/snake"
	"github.com/wricardo/mcp-training/arcade/game/tetris"
)

// bfsLimit bounds the solver; a 3x3 board has 181440 reachable states
const bfsLimit = 200_000

// Report is the analysis of one game configuration
type Report struct {
	Game     engine.GameID
	Source   string
	Lines    []string
	Warnings []string
}

func (r *Report) addf(format string, args ...any) {
	r.Lines = append(r.Lines, fmt.Sprintf(format, args...))
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "summarize arcade game configurations",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "configuration directory"},
			&cli.IntFlag{Name: "samples", Value: 20, Usage: "puzzle boards to sample"},
			&cli.Int64Flag{Name: "seed", Value: 1, Usage: "random seed for sampling"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(cmd.Root().Writer, cmd.String("config-dir"), cmd.Int("samples"), cmd.Int64("seed"))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, configDir string, samples int, seed int64) error {
	manager, err := config.NewManager(configDir, zerolog.Nop())
	if err != nil {
		return err
	}
	configs, err := manager.ListConfigs()
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(seed))
	for _, info := range configs {
		cfg, ok := info.Config.(catalog.Config)
		if !ok {
			continue
		}
		printReport(w, analyze(info.Game, cfg, samples, rng), info.Filename)
	}
	return nil
}

func printReport(w io.Writer, r Report, filename string) {
	fmt.Fprintf(w, "\n=== %s (%s, %s) ===\n", r.Game, filename, r.Source)
	for _, line := range r.Lines {
		fmt.Fprintln(w, line)
	}
	if len(r.Warnings) == 0 {
		fmt.Fprintln(w, "✅ No issues found")
		return
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "⚠️  WARNING: %s\n", warn)
	}
}

// analyze dispatches on the concrete configuration type
func analyze(game engine.GameID, cfg catalog.Config, samples int, rng *rand.Rand) Report {
	r := Report{Game: game}
	switch c := cfg.(type) {
	case *tetris.Config:
		analyzeTetris(&r, c)
	case *snake.Config:
		analyzeSnake(&r, c)
	case *flippy.Config:
		analyzeFlippy(&r, c)
	case *memory.Config:
		analyzeMemory(&r, c)
	case *puzzle.Config:
		analyzePuzzle(&r, c, samples, rng)
	default:
		r.warnf("no analysis for %T", cfg)
	}
	return r
}

func analyzeTetris(r *Report, c *tetris.Config) {
	r.addf("Well: %d x %d", c.Cols, c.Rows)

	var speeds []string
	for _, level := range []int{1, 5, 10, 15, 20} {
		speeds = append(speeds, fmt.Sprintf("L%d=%v", level, c.Interval(level)))
	}
	r.addf("Fall interval: %s", strings.Join(speeds, " "))

	floorLevel := 1
	for c.Interval(floorLevel) > c.Interval(floorLevel+1) {
		floorLevel++
	}
	r.addf("Top speed reached at level %d (%d lines)", floorLevel, (floorLevel-1)*c.LinesPerLevel)
	r.addf("Line scores at level 1: %v", c.LineScores[1:])

	if c.LineScore(4) < 4*c.LineScore(1) {
		r.warnf("a four line clear scores less than four single clears")
	}
	if c.Cols < 4 {
		r.warnf("the I piece cannot lie flat")
	}
}

func analyzeSnake(r *Report, c *snake.Config) {
	cells := c.Width * c.Height
	r.addf("Grid: %d x %d (%d cells)", c.Width, c.Height, cells)
	r.addf("Start: (%d,%d) heading %s", c.Start.X, c.Start.Y, c.StartDirection)

	toFloor := 0
	if c.IntervalStepMs > 0 {
		toFloor = int(math.Ceil(float64(c.InitialIntervalMs-c.MinIntervalMs) / float64(c.IntervalStepMs)))
	}
	r.addf("Speed: %dms, -%dms per food, floor %dms after %d food",
		c.InitialIntervalMs, c.IntervalStepMs, c.MinIntervalMs, toFloor)
	r.addf("Max score: %d (board filled)", (cells-1)*c.PointsPerFood)

	if c.TimeLimitSeconds > 0 {
		// Upper bound on ticks if the snake ran at top speed the whole time
		maxTicks := c.TimeLimitSeconds * 1000 / c.MinIntervalMs
		r.addf("Time budget: %ds (at most %d moves)", c.TimeLimitSeconds, maxTicks)
		if maxTicks < cells-1 {
			r.addf("Board cannot be filled within the time budget")
		}
	} else {
		r.addf("Time budget: none")
	}

	if !c.InBounds(c.Start) {
		r.warnf("start (%d,%d) is outside the grid", c.Start.X, c.Start.Y)
	}
}

func analyzeFlippy(r *Report, c *flippy.Config) {
	r.addf("Board: %.0f x %.0f, bird %.0f at x=%.0f", c.BoardWidth, c.BoardHeight, c.BirdSize, c.BirdCenterX())

	// Height gained by one jump before gravity turns the bird around
	apex := c.JumpVelocity * c.JumpVelocity / (2 * c.Gravity)
	// Frames to fall from the middle of the board to the floor
	fall := math.Sqrt(2 * (c.BoardHeight/2 - c.BirdSize) / c.Gravity)
	r.addf("Physics: gravity %.2f, jump %.1f, apex %.1f px, %.0f frames to fall from center",
		c.Gravity, c.JumpVelocity, apex, fall)

	framesPerSpawn := float64(c.SpawnIntervalMs) / float64(c.FrameIntervalMs)
	spacing := framesPerSpawn * c.PipeSpeed
	r.addf("Pipes: width %.0f, gap %.0f, gap top in [%.0f, %.0f], spacing %.0f px",
		c.PipeWidth, c.GapSize, c.MinGap, c.MaxGapTop(), spacing)

	if apex >= c.GapSize-c.BirdSize {
		r.warnf("one jump (%.1f px) can carry the bird across the whole gap", apex)
	}
	if spacing <= c.PipeWidth {
		r.warnf("pipes overlap: spacing %.0f <= width %.0f", spacing, c.PipeWidth)
	}
}

func analyzeMemory(r *Report, c *memory.Config) {
	cards := 2 * c.Pairs
	rows := (cards + c.Columns - 1) / c.Columns
	r.addf("Table: %d pairs, %d columns x %d rows", c.Pairs, c.Columns, rows)
	r.addf("Mismatch shown for %dms", c.MismatchDelayMs)
	r.addf("Best score: %d (%d moves with no misses)", c.Score(c.Pairs, 0), c.Pairs)

	if cards%c.Columns != 0 {
		r.warnf("last row is incomplete (%d cards on %d columns)", cards, c.Columns)
	}
}

func analyzePuzzle(r *Report, c *puzzle.Config, samples int, rng *rand.Rand) {
	r.addf("Grid: %d x %d", c.Size, c.Size)
	r.addf("Score: %d - %d per move - %d per second", c.BaseScore, c.MovePenalty, c.SecondPenalty)

	if samples <= 0 {
		return
	}

	unsolvable := 0
	var depths []int
	for range samples {
		t := puzzle.Shuffle(c.Size, rng)
		if !puzzle.Solvable(t, c.Size) {
			unsolvable++
			continue
		}
		if c.Size > 3 {
			continue
		}
		if moves, ok := puzzle.Reachable(t, c.Size, bfsLimit); ok {
			depths = append(depths, moves)
		} else {
			unsolvable++
		}
	}

	r.addf("Sampled %d shuffled boards: %d solvable", samples, samples-unsolvable)
	if len(depths) > 0 {
		lo, hi, sum := depths[0], depths[0], 0
		for _, d := range depths {
			lo, hi, sum = min(lo, d), max(hi, d), sum+d
		}
		r.addf("Optimal solutions: min %d, avg %.1f, max %d moves", lo, float64(sum)/float64(len(depths)), hi)
		r.addf("Best expected score: %d", c.Score(lo, 0))
	} else if c.Size > 3 {
		r.addf("Solver skipped above 3x3; parity check only")
	}

	if unsolvable > 0 {
		r.warnf("%d sampled boards are not solvable", unsolvable)
	}
}
