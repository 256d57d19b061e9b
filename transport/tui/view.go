package tui

import (
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

// Flippy is drawn at one character per 10x30 board units
const (
	flippyCellW = 10.0
	flippyCellH = 30.0
)

func (m model) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", strings.ToUpper(m.info.Name), m.info.Description)

	switch st := m.snap.(type) {
	case *tetris.State:
		drawTetris(&b, st)
		fmt.Fprintf(&b, "\nLevel %d  Lines %d", st.Level, st.Lines)
		status(&b, st.Status, st.Score, st.HighScore, st.Elapsed)
	case *snake.State:
		if cfg, ok := m.cfg.(*snake.Config); ok {
			drawSnake(&b, st, cfg)
		}
		fmt.Fprintf(&b, "\nLength %d  Speed %dms", len(st.Body), st.IntervalMs)
		status(&b, st.Status, st.Score, st.HighScore, st.Elapsed)
	case *flippy.State:
		if cfg, ok := m.cfg.(*flippy.Config); ok {
			drawFlippy(&b, st, cfg)
		}
		status(&b, st.Status, st.Score, st.HighScore, st.Elapsed)
	case *memory.State:
		drawMemory(&b, st, m.cursor)
		fmt.Fprintf(&b, "\nMoves %d  Pairs %d", st.Moves, st.Matched)
		status(&b, st.Status, st.Score, st.HighScore, st.Elapsed)
	case *puzzle.State:
		drawPuzzle(&b, st, m.cursor)
		fmt.Fprintf(&b, "\nMoves %d", st.Moves)
		status(&b, st.Status, st.Score, st.HighScore, st.Elapsed)
	}

	if m.message != "" {
		fmt.Fprintf(&b, "\n%s\n", m.message)
	}
	b.WriteString("\n" + m.help())
	return b.String()
}

func status(b *strings.Builder, s engine.Status, score, high int, elapsed time.Duration) {
	fmt.Fprintf(b, "\nScore %d  Best %d  Time %ds\n", score, high, engine.Seconds(elapsed))
	if s == engine.StatusOver {
		b.WriteString("\nGAME OVER\n")
	}
}

func (m model) help() string {
	switch m.runner.Status() {
	case engine.StatusLobby:
		return "enter: get ready  q: quit\n"
	case engine.StatusReady:
		return "enter: start  b: lobby  q: quit\n"
	case engine.StatusOver:
		return "enter: play again  b: lobby  q: quit\n"
	}

	switch m.game {
	case engine.Tetris:
		return "left/right: move  up: rotate  down: soft drop  space: hard drop  r: restart  q: quit\n"
	case engine.Snake:
		return "arrows: steer  r: restart  q: quit\n"
	case engine.FlippyBird:
		return "space: jump  r: restart  q: quit\n"
	}
	return "arrows: move cursor  space: select  r: restart  q: quit\n"
}

func drawTetris(b *strings.Builder, st *tetris.State) {
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
				b.WriteString("[]")
			case k != "":
				b.WriteString("##")
			default:
				b.WriteString(" .")
			}
		}
		b.WriteString("|\n")
	}
	if len(st.Board) > 0 {
		b.WriteString("+" + strings.Repeat("--", len(st.Board[0])) + "+\n")
	}
}

func drawSnake(b *strings.Builder, st *snake.State, cfg *snake.Config) {
	cells := make(map[engine.Position]byte, len(st.Body)+1)
	cells[st.Food] = '*'
	for i, p := range st.Body {
		if i == 0 {
			cells[p] = '@'
		} else {
			cells[p] = 'o'
		}
	}

	border := "+" + strings.Repeat("-", cfg.Width) + "+\n"
	b.WriteString(border)
	for y := 0; y < cfg.Height; y++ {
		b.WriteString("|")
		for x := 0; x < cfg.Width; x++ {
			if c, ok := cells[engine.Position{X: x, Y: y}]; ok {
				b.WriteByte(c)
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString("|\n")
	}
	b.WriteString(border)
}

func drawFlippy(b *strings.Builder, st *flippy.State, cfg *flippy.Config) {
	cols := int(cfg.BoardWidth / flippyCellW)
	rows := int(cfg.BoardHeight / flippyCellH)
	birdCol := int(cfg.BirdCenterX() / flippyCellW)
	birdRow := int((st.Bird.Y + cfg.BirdSize/2) / flippyCellH)

	border := "+" + strings.Repeat("-", cols) + "+\n"
	b.WriteString(border)
	for r := 0; r < rows; r++ {
		y := (float64(r) + 0.5) * flippyCellH
		b.WriteString("|")
		for c := 0; c < cols; c++ {
			x := (float64(c) + 0.5) * flippyCellW
			ch := byte(' ')
			for _, o := range st.Obstacles {
				if x >= o.X && x < o.X+cfg.PipeWidth && (y < o.GapTop || y > o.GapTop+cfg.GapSize) {
					ch = '#'
					break
				}
			}
			if r == birdRow && c == birdCol {
				ch = '>'
			}
			b.WriteByte(ch)
		}
		b.WriteString("|\n")
	}
	b.WriteString(border)
}

func drawMemory(b *strings.Builder, st *memory.State, cursor int) {
	cols := max(st.Columns, 1)
	for i, card := range st.Cards {
		face := "  ?  "
		switch {
		case card.Matched:
			face = "  -  "
		case card.FaceUp && card.Symbol >= 0 && card.Symbol < len(memory.Symbols):
			face = fmt.Sprintf("%-5.5s", memory.Symbols[card.Symbol])
		}
		if i == cursor {
			fmt.Fprintf(b, ">%s<", face)
		} else {
			fmt.Fprintf(b, "[%s]", face)
		}
		if (i+1)%cols == 0 {
			b.WriteString("\n")
		}
	}
}

func drawPuzzle(b *strings.Builder, st *puzzle.State, cursor int) {
	for i, t := range st.Tiles {
		label := "  "
		if t != 0 {
			label = fmt.Sprintf("%2d", t)
		}
		if i == cursor {
			fmt.Fprintf(b, ">%s<", label)
		} else {
			fmt.Fprintf(b, " %s ", label)
		}
		if st.Size > 0 && (i+1)%st.Size == 0 {
			b.WriteString("\n")
		}
	}
}
