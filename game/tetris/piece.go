package tetris

import (
	"slices"

	"github.com/wricardo/mcp-training/arcade/game/engine"
)

// Shape is a piece mask, Shape[row][col]
type Shape [][]bool

// Kind names a tetromino
type Kind string

const (
	KindI Kind = "I"
	KindJ Kind = "J"
	KindL Kind = "L"
	KindO Kind = "O"
	KindS Kind = "S"
	KindT Kind = "T"
	KindZ Kind = "Z"
)

// Kinds lists the seven tetrominoes in spawn table order
var Kinds = []Kind{KindI, KindJ, KindL, KindO, KindS, KindT, KindZ}

var shapes = map[Kind][]string{
	KindI: {"####"},
	KindJ: {".#.", ".#.", "##."},
	KindL: {".#.", ".#.", ".##"},
	KindO: {"##", "##"},
	KindS: {".##", "##."},
	KindT: {"###", ".#."},
	KindZ: {"##.", ".##"},
}

// ShapeOf returns a fresh copy of the spawn orientation of k
func ShapeOf(k Kind) Shape {
	rows := shapes[k]
	s := make(Shape, len(rows))
	for r, line := range rows {
		s[r] = make([]bool, len(line))
		for c, ch := range line {
			s[r][c] = ch == '#'
		}
	}
	return s
}

// Rotate returns the shape turned a quarter clockwise
func (s Shape) Rotate() Shape {
	if len(s) == 0 {
		return Shape{}
	}
	rows, cols := len(s), len(s[0])
	out := make(Shape, cols)
	for c := 0; c < cols; c++ {
		out[c] = make([]bool, rows)
		for r := 0; r < rows; r++ {
			out[c][r] = s[rows-1-r][c]
		}
	}
	return out
}

// Clone returns a deep copy
func (s Shape) Clone() Shape {
	out := make(Shape, len(s))
	for i, row := range s {
		out[i] = slices.Clone(row)
	}
	return out
}

// Cells returns the board cells covered when the shape sits at origin
func (s Shape) Cells(origin engine.Position) []engine.Position {
	var cells []engine.Position
	for r, row := range s {
		for c, filled := range row {
			if filled {
				cells = append(cells, engine.Position{X: origin.X + c, Y: origin.Y + r})
			}
		}
	}
	return cells
}

// Piece is the falling tetromino
type Piece struct {
	Kind   Kind            `json:"kind"`
	Shape  Shape           `json:"shape"`
	Origin engine.Position `json:"origin"`
}

// Clone returns a deep copy
func (p Piece) Clone() Piece {
	p.Shape = p.Shape.Clone()
	return p
}
