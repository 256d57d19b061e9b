package mcp

import (
	"slices"

	"github.com/wricardo/mcp-training/arcade/game/engine"
)

var instructions = map[engine.GameID]string{
	engine.Tetris: `TETRIS
Pieces fall one row per tick. A piece locks when it cannot fall further;
full rows are cleared and scored 100/300/500/800 for 1-4 rows, times the
level. The level rises every 10 lines and the fall speeds up.
The game ends when a new piece cannot spawn.
Actions: left, right, down (soft drop), up/rotate, space/hard_drop.
Board legend: @ falling piece, letters locked blocks, . empty.
`,
	engine.Snake: `SNAKE
The snake moves one cell per tick in its heading. Eating food scores 10,
grows the snake and speeds it up. Reversing direction is ignored.
The game ends on hitting a wall or your own body, or after 90 seconds.
Actions: up, down, left, right (or w/a/s/d, arrow keys).
`,
	engine.FlippyBird: `FLIPPY BIRD
Gravity pulls the bird down every frame; jump sets an upward velocity.
Pipes scroll from the right. Each pipe passed scores 1.
The game ends on touching a pipe, the floor or the ceiling.
Actions: jump (or space, tap, up).
`,
	engine.Memory: `MEMORY
Cards lie face down. Select two per move: a matching pair stays up,
otherwise both flip back after a short delay. The game ends when every
pair is found. Score: 10000 - 10 per move - 1 per second, never below 0.
Actions: select:<index> or select:<row>,<col> (row-major, from 0).
`,
	engine.Puzzle: `SLIDING PUZZLE
Tiles 1..N*N-1 and one empty cell. Select a tile next to the empty cell to
slide it. Order the tiles row by row with the empty cell last to win.
Score: 10000 - 10 per move - 1 per second, never below 0.
Actions: select:<index> or select:<row>,<col> (row-major, from 0).
`,
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
