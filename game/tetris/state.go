package tetris

import (
	"slices"
	"time"

	"github.com/wricardo/mcp-training/arcade/game/engine"
)

// Board holds locked cells, Board[row][col]. An empty Kind is a free cell.
type Board [][]Kind

// NewBoard returns an empty rows x cols board
func NewBoard(rows, cols int) Board {
	b := make(Board, rows)
	for r := range b {
		b[r] = make([]Kind, cols)
	}
	return b
}

// Clone returns a deep copy
func (b Board) Clone() Board {
	out := make(Board, len(b))
	for r, row := range b {
		out[r] = slices.Clone(row)
	}
	return out
}

// Filled reports whether the cell at p is locked
func (b Board) Filled(p engine.Position) bool {
	return b[p.Y][p.X] != ""
}

// Fits reports whether shape at origin is inside the board and overlaps
// no locked cell
func (b Board) Fits(shape Shape, origin engine.Position) bool {
	for _, p := range shape.Cells(origin) {
		if p.Y < 0 || p.Y >= len(b) || p.X < 0 || p.X >= len(b[p.Y]) {
			return false
		}
		if b.Filled(p) {
			return false
		}
	}
	return true
}

// State is the Tetris world
type State struct {
	Status       engine.Status     `json:"status"`
	Board        Board             `json:"board"`
	Piece        *Piece            `json:"piece,omitempty"`
	Score        int               `json:"score"`
	Level        int               `json:"level"`
	Lines        int               `json:"lines"`
	PiecesLocked int               `json:"pieces_locked"`
	HighScore    int               `json:"high_score"`
	StartedAt    time.Time         `json:"started_at"`
	Elapsed      time.Duration     `json:"elapsed"`
	Result       engine.ResultSlot `json:"result"`
}

// Clone returns a deep copy
func (s *State) Clone() *State {
	c := *s
	c.Board = s.Board.Clone()
	if s.Piece != nil {
		p := s.Piece.Clone()
		c.Piece = &p
	}
	return &c
}
