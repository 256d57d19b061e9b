package puzzle

import (
	"math/rand"
	"slices"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/arcade/game/engine"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestSolvableRejectsOddParityBottomBlank(t *testing.T) {
	// 4 precedes 1, 2 and 3: three inversions, blank on the bottom row
	tiles := Tiles{4, 1, 2, 3, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 0}
	if Inversions(tiles) != 3 {
		t.Fatalf("Expected 3 inversions, got %d", Inversions(tiles))
	}
	if Solvable(tiles, 4) {
		t.Error("Board must be rejected")
	}

	// same tiles with the blank one row up flips the requirement
	tiles = Tiles{4, 1, 2, 3, 5, 6, 7, 8, 9, 10, 11, 0, 13, 14, 15, 12}
	if Inversions(tiles) != 6 {
		t.Fatalf("Expected 6 inversions, got %d", Inversions(tiles))
	}
	if Solvable(tiles, 4) {
		t.Error("Even inversions with the blank on an even row must be rejected")
	}
}

// permutationParity treats the blank as the largest tile
func permutationParity(t Tiles) int {
	p := make([]int, len(t))
	for i, v := range t {
		if v == Empty {
			v = len(t)
		}
		p[i] = v - 1
	}
	swaps := 0
	for i := range p {
		for p[i] != i {
			p[i], p[p[i]] = p[p[i]], p[i]
			swaps++
		}
	}
	return swaps % 2
}

// Solvable must agree with the classic invariant: permutation parity equals
// the parity of the blank's distance from the bottom-right corner.
func TestSolvableMatchesPermutationInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, size := range []int{3, 4, 5} {
		for i := 0; i < 500; i++ {
			tiles := SolvedTiles(size)
			rng.Shuffle(len(tiles), func(a, b int) { tiles[a], tiles[b] = tiles[b], tiles[a] })

			e := EmptyIndex(tiles)
			dist := (size - 1 - e%size) + (size - 1 - e/size)
			want := permutationParity(tiles) == dist%2
			if got := Solvable(tiles, size); got != want {
				t.Fatalf("size %d %v: Solvable=%v, invariant=%v", size, tiles, got, want)
			}
		}
	}
}

func TestSolvableMatchesSearch2x2(t *testing.T) {
	var permute func(k int, t Tiles, fn func(Tiles))
	permute = func(k int, t Tiles, fn func(Tiles)) {
		if k == len(t) {
			fn(slices.Clone(t))
			return
		}
		for i := k; i < len(t); i++ {
			t[k], t[i] = t[i], t[k]
			permute(k+1, t, fn)
			t[k], t[i] = t[i], t[k]
		}
	}

	count := 0
	permute(0, Tiles{0, 1, 2, 3}, func(tiles Tiles) {
		_, reachable := Reachable(tiles, 2, 100)
		if Solvable(tiles, 2) != reachable {
			t.Errorf("%v: Solvable=%v, reachable=%v", tiles, Solvable(tiles, 2), reachable)
		}
		if reachable {
			count++
		}
	})
	if count != 12 {
		t.Errorf("Expected 12 reachable 2x2 boards, got %d", count)
	}
}

func TestShuffledBoardsAreReachable3x3(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 3; i++ {
		tiles := Shuffle(3, rng)
		if _, ok := Reachable(tiles, 3, 200000); !ok {
			t.Errorf("Generated board %v is not solvable", tiles)
		}
	}

	// swapping two tiles breaks solvability
	tiles := Tiles{2, 1, 3, 4, 5, 6, 7, 8, 0}
	if Solvable(tiles, 3) {
		t.Fatal("Swapped board must be unsolvable")
	}
	if _, ok := Reachable(tiles, 3, 200000); ok {
		t.Error("Search found a solution for an unsolvable board")
	}
}

func startGame(t *testing.T, tiles Tiles) *Game {
	t.Helper()
	g, err := New(&Config{Size: 3, TickIntervalMs: 1000, BaseScore: 10000, MovePenalty: 10, SecondPenalty: 1}, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	g.Dispatch(engine.Event{Kind: engine.EventReady, Now: t0})
	g.Dispatch(engine.Event{Kind: engine.EventStart, Now: t0})
	st := g.State().Clone()
	st.Tiles = tiles
	g.state = st
	return g
}

func click(row, col int, now time.Time) engine.Event {
	return engine.Event{Kind: engine.EventAction, Action: engine.Action{Kind: engine.ActSelect, At: &engine.Position{X: col, Y: row}}, Now: now}
}

func TestSlideAdjacentOnly(t *testing.T) {
	g := startGame(t, Tiles{1, 2, 3, 4, 0, 5, 7, 8, 6})

	if g.Dispatch(click(0, 0, t0)) {
		t.Error("Diagonal tile must not slide")
	}
	if g.Dispatch(click(1, 1, t0)) {
		t.Error("Clicking the blank must be rejected")
	}
	if g.Dispatch(click(3, 0, t0)) {
		t.Error("Out of range click must be rejected")
	}
	if g.State().Moves != 0 {
		t.Errorf("Rejected clicks must not count, got %d moves", g.State().Moves)
	}

	if !g.Dispatch(click(1, 2, t0)) {
		t.Fatal("Adjacent tile should slide")
	}
	if !slices.Equal(g.State().Tiles, Tiles{1, 2, 3, 4, 5, 0, 7, 8, 6}) {
		t.Errorf("Unexpected board %v", g.State().Tiles)
	}
}

func TestSolveEndsGame(t *testing.T) {
	g := startGame(t, Tiles{1, 2, 3, 4, 0, 5, 7, 8, 6})

	g.Dispatch(engine.Event{Kind: engine.EventTick, Now: t0.Add(20 * time.Second)})
	g.Dispatch(click(1, 2, t0.Add(20*time.Second)))
	// select by cell index: bottom right
	g.Dispatch(engine.Event{Kind: engine.EventAction, Action: engine.Action{Kind: engine.ActSelect, Cell: 8}, Now: t0.Add(25 * time.Second)})

	st := g.State()
	if st.Status != engine.StatusOver || !st.Won {
		t.Fatalf("Expected solved board to end the game, got %s %v", st.Status, st.Tiles)
	}
	if want := 10000 - 2*10 - 25; st.Score != want {
		t.Errorf("Expected score %d, got %d", want, st.Score)
	}

	r, ok := g.TakeResult()
	if !ok || r.Counter("moves") != 2 || r.DurationSeconds() != 25 {
		t.Errorf("Unexpected result ok=%v %+v", ok, r.Counters())
	}
	if g.Dispatch(click(2, 1, t0.Add(30*time.Second))) {
		t.Error("Input after Over must be rejected")
	}
	if _, ok := g.TakeResult(); ok {
		t.Error("Result must be taken only once")
	}
}

func TestNewBoardIsSolvable(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 100; i++ {
		g, err := New(DefaultConfig(), rng)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		tiles := g.State().Tiles
		if !Solvable(tiles, 4) {
			t.Fatalf("Generated unsolvable board %v", tiles)
		}
		sorted := slices.Clone(tiles)
		slices.Sort(sorted)
		if !slices.Equal(sorted, Tiles{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}) {
			t.Fatalf("Board is not a permutation: %v", tiles)
		}
	}
}
