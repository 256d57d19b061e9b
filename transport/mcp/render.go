package mcp

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/wricardo/mcp-training/arcade/game/engine"
	"github.com/wricardo/mcp-training/arcade/game/flippy"
	"github.com/wricardo/mcp-training/arcade/game/memory"
	"github.com/wricardo/mcp-training/arcade/game/puzzle"
	"github.com/wricardo/mcp-training/arcade/game/snake"
	"github.com/wricardo/mcp-training/arcade/game/tetris"
)

// renderState turns a state snapshot into text an agent can read
func renderState(game engine.GameID, raw json.RawMessage) (string, error) {
	switch game {
	case engine.Tetris:
		var st tetris.State
		if err := json.Unmarshal(raw, &st); err != nil {
			return "", err
		}
		return renderTetris(&st), nil
	case engine.Snake:
		var st snake.State
		if err := json.Unmarshal(raw, &st); err != nil {
			return "", err
		}
		return renderSnake(&st), nil
	case engine.FlippyBird:
		var st flippy.State
		if err := json.Unmarshal(raw, &st); err != nil {
			return "", err
		}
		return renderFlippy(&st), nil
	case engine.Memory:
		var st memory.State
		if err := json.Unmarshal(raw, &st); err != nil {
			return "", err
		}
		return renderMemory(&st), nil
	case engine.Puzzle:
		var st puzzle.State
		if err := json.Unmarshal(raw, &st); err != nil {
			return "", err
		}
		return renderPuzzle(&st), nil
	}
	return "", fmt.Errorf("%w: %q", engine.ErrUnknownGame, game)
}

func footer(b *strings.Builder, status engine.Status, score, highScore int, elapsed time.Duration) {
	fmt.Fprintf(b, "\nStatus: %s | Score: %d | High score: %d | Time: %ds\n",
		status, score, highScore, engine.Seconds(elapsed))
}

func renderTetris(st *tetris.State) string {
	var b strings.Builder
	piece := map[engine.Position]bool{}
	if st.Piece != nil {
		for _, p := range st.Piece.Shape.Cells(st.Piece.Origin) {
			piece[p] = true
		}
	}
	for y, row := range st.Board {
		b.WriteString("|")
		for x, k := range row {
			switch {
			case piece[engine.Position{X: x, Y: y}]:
				b.WriteString("@")
			case k != "":
				b.WriteString(string(k))
			default:
				b.WriteString(".")
			}
		}
		b.WriteString("|\n")
	}
	if st.Piece != nil {
		fmt.Fprintf(&b, "Falling: %s at (%d,%d)\n", st.Piece.Kind, st.Piece.Origin.X, st.Piece.Origin.Y)
	}
	fmt.Fprintf(&b, "Level: %d | Lines: %d | Pieces: %d", st.Level, st.Lines, st.PiecesLocked)
	footer(&b, st.Status, st.Score, st.HighScore, st.Elapsed)
	return b.String()
}

func renderSnake(st *snake.State) string {
	var b strings.Builder
	if len(st.Body) > 0 {
		head := st.Body[0]
		fmt.Fprintf(&b, "Head: (%d,%d) heading %s | Length: %d\n", head.X, head.Y, st.Steering.Current, len(st.Body))
	}
	fmt.Fprintf(&b, "Food: (%d,%d) | Eaten: %d | Tick: %dms\n", st.Food.X, st.Food.Y, st.FoodEaten, st.IntervalMs)
	if st.EndReason != "" {
		fmt.Fprintf(&b, "Ended by: %s\n", st.EndReason)
	}
	footer(&b, st.Status, st.Score, st.HighScore, st.Elapsed)
	return b.String()
}

func renderFlippy(st *flippy.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Bird: y=%.1f vy=%.1f\n", st.Bird.Y, st.Bird.VY)
	for _, o := range st.Obstacles {
		passed := ""
		if o.Passed {
			passed = " (passed)"
		}
		fmt.Fprintf(&b, "Pipe: x=%.1f gap from %.1f%s\n", o.X, o.GapTop, passed)
	}
	footer(&b, st.Status, st.Score, st.HighScore, st.Elapsed)
	return b.String()
}

func renderMemory(st *memory.State) string {
	var b strings.Builder
	cols := max(st.Columns, 1)
	for i, card := range st.Cards {
		var face string
		switch {
		case card.Matched:
			face = "=="
		case card.FaceUp && card.Symbol >= 0 && card.Symbol < len(memory.Symbols):
			face = memory.Symbols[card.Symbol]
		default:
			face = "??"
		}
		fmt.Fprintf(&b, "[%2d %-7s]", i, face)
		if (i+1)%cols == 0 {
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(&b, "Moves: %d | Pairs found: %d", st.Moves, st.Matched)
	footer(&b, st.Status, st.Score, st.HighScore, st.Elapsed)
	return b.String()
}

func renderPuzzle(st *puzzle.State) string {
	var b strings.Builder
	for i, t := range st.Tiles {
		if t == 0 {
			b.WriteString("  .")
		} else {
			fmt.Fprintf(&b, "%3d", t)
		}
		if st.Size > 0 && (i+1)%st.Size == 0 {
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(&b, "Moves: %d", st.Moves)
	footer(&b, st.Status, st.Score, st.HighScore, st.Elapsed)
	return b.String()
}
