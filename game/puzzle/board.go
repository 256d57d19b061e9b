package puzzle

import (
	"math/rand"
	"slices"

	"github.com/wricardo/mcp-training/arcade/game/engine"
)

// Empty marks the blank cell
const Empty = 0

// Tiles is a row-major N x N board holding 1..N*N-1 and one Empty
type Tiles []int

// Inversions counts pairs of non-empty tiles that appear in the wrong order
func Inversions(t Tiles) int {
	n := 0
	for i := 0; i < len(t); i++ {
		if t[i] == Empty {
			continue
		}
		for j := i + 1; j < len(t); j++ {
			if t[j] != Empty && t[i] > t[j] {
				n++
			}
		}
	}
	return n
}

// EmptyIndex returns the position of the blank, -1 if absent
func EmptyIndex(t Tiles) int {
	return slices.Index(t, Empty)
}

// Solvable reports whether t can be slid into the solved order.
// For odd sizes the inversion count must be even. For even sizes it
// depends on the blank's row counted from the bottom (1 based): on an
// even row the inversions must be odd, on an odd row even.
func Solvable(t Tiles, size int) bool {
	inv := Inversions(t)
	if size%2 == 1 {
		return inv%2 == 0
	}
	rowFromBottom := size - EmptyIndex(t)/size
	if rowFromBottom%2 == 0 {
		return inv%2 == 1
	}
	return inv%2 == 0
}

// Solved reports whether t reads 1..N*N-1 followed by the blank
func Solved(t Tiles) bool {
	for i := 0; i < len(t)-1; i++ {
		if t[i] != i+1 {
			return false
		}
	}
	return t[len(t)-1] == Empty
}

// SolvedTiles returns the goal board
func SolvedTiles(size int) Tiles {
	t := make(Tiles, size*size)
	for i := range len(t) - 1 {
		t[i] = i + 1
	}
	return t
}

// Shuffle draws uniform permutations until one is solvable
func Shuffle(size int, rng *rand.Rand) Tiles {
	t := SolvedTiles(size)
	for {
		for i := len(t) - 1; i > 0; i-- {
			j := rng.Intn(i + 1)
			t[i], t[j] = t[j], t[i]
		}
		if Solvable(t, size) {
			return t
		}
	}
}

// Neighbors returns the boards reachable with one slide
func Neighbors(t Tiles, size int) []Tiles {
	e := EmptyIndex(t)
	blank := engine.Position{X: e % size, Y: e / size}
	var out []Tiles
	for _, d := range []engine.Direction{engine.Up, engine.Down, engine.Left, engine.Right} {
		p := blank.Add(d.Delta())
		if p.X < 0 || p.X >= size || p.Y < 0 || p.Y >= size {
			continue
		}
		next := slices.Clone(t)
		i := p.Y*size + p.X
		next[e], next[i] = next[i], next[e]
		out = append(out, next)
	}
	return out
}

// Reachable runs a breadth-first search from t to the solved board,
// exploring at most limit states. It returns the number of slides of the
// shortest solution. Only practical for size 3 and below.
func Reachable(t Tiles, size, limit int) (int, bool) {
	goal := string(encode(SolvedTiles(size)))
	start := string(encode(t))
	if start == goal {
		return 0, true
	}

	seen := map[string]bool{start: true}
	frontier := []Tiles{slices.Clone(t)}
	for depth := 1; len(frontier) > 0; depth++ {
		var nextFrontier []Tiles
		for _, cur := range frontier {
			for _, nb := range Neighbors(cur, size) {
				key := string(encode(nb))
				if key == goal {
					return depth, true
				}
				if seen[key] {
					continue
				}
				if len(seen) >= limit {
					return 0, false
				}
				seen[key] = true
				nextFrontier = append(nextFrontier, nb)
			}
		}
		frontier = nextFrontier
	}
	return 0, false
}

func encode(t Tiles) []byte {
	b := make([]byte, len(t))
	for i, v := range t {
		b[i] = byte(v)
	}
	return b
}
